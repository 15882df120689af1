package benchmark

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteReport 以终端表格输出批次报告：逐用例指标 + 汇总行。
func WriteReport(w io.Writer, batch *BatchResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"用例", "性格", "情境", "轮数", "终止原因", "感知准确率", "标签命中率", "专家共识", "最终情绪", "情绪变化"})

	for _, c := range sortedCases(batch.Cases) {
		t.AppendRow(table.Row{
			c.Case.ID,
			c.Case.Profile.PersonalityType,
			c.Case.Situation.SituationID,
			c.Metrics.Turns,
			c.Metrics.Reason,
			fmt.Sprintf("%.3f", c.Metrics.PredictionAccuracy),
			fmt.Sprintf("%.3f", c.Metrics.LabelAccuracy),
			fmt.Sprintf("%.3f", c.Metrics.ExpertConsensus),
			fmt.Sprintf("%+.2f", c.Metrics.FinalMood),
			fmt.Sprintf("%+.2f", c.Metrics.MoodDelta),
		})
	}
	for _, f := range batch.Failures {
		t.AppendRow(table.Row{f.CaseID, "-", "-", "-", "failed", "-", "-", "-", "-", "-"})
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d/%d 成功", batch.Summary.Succeeded, batch.Summary.TotalCases),
		"", "", "", "",
		fmt.Sprintf("%.3f", batch.Summary.MeanAccuracy),
		fmt.Sprintf("%.3f", batch.Summary.MeanLabelAccuracy),
		fmt.Sprintf("%.3f", batch.Summary.MeanExpertConsensus),
		fmt.Sprintf("%+.2f", batch.Summary.MeanFinalMood),
		fmt.Sprintf("%+.2f", batch.Summary.MeanMoodDelta),
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
		{Number: 10, Align: text.AlignRight},
	})
	t.Render()
}

// WriteCSV 导出逐用例指标，便于外部分析。
func WriteCSV(w io.Writer, batch *BatchResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"case_id", "persona_id", "personality", "belief", "communication", "attachment",
		"scenario", "situation", "turns", "reason",
		"prediction_accuracy", "label_accuracy", "expert_consensus", "expert_label_agreement",
		"initial_mood", "final_mood", "mood_delta",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range sortedCases(batch.Cases) {
		row := []string{
			c.Case.ID,
			c.Case.Profile.ID,
			c.Case.Profile.PersonalityType,
			c.Case.Profile.RelationshipBelief,
			c.Case.Profile.CommunicationType,
			c.Case.Profile.AttachmentStyle,
			c.Case.Situation.ScenarioID,
			c.Case.Situation.SituationID,
			fmt.Sprintf("%d", c.Metrics.Turns),
			c.Metrics.Reason,
			fmt.Sprintf("%.4f", c.Metrics.PredictionAccuracy),
			fmt.Sprintf("%.4f", c.Metrics.LabelAccuracy),
			fmt.Sprintf("%.4f", c.Metrics.ExpertConsensus),
			fmt.Sprintf("%.4f", c.Metrics.ExpertLabelAgreement),
			fmt.Sprintf("%.4f", c.Metrics.InitialMood),
			fmt.Sprintf("%.4f", c.Metrics.FinalMood),
			fmt.Sprintf("%.4f", c.Metrics.MoodDelta),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	for _, f := range batch.Failures {
		row := make([]string, len(header))
		row[0] = f.CaseID
		row[9] = "failed"
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

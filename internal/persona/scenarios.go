package persona

import "fmt"

// 冲突场景数据表。
// 一个场景（scenario）下挂若干具体情境（situation），评测用例在
// 情境粒度上展开。

// ConflictSituation 场景下的一个具体情境
type ConflictSituation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// Scenario 冲突场景
type Scenario struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Situations []ConflictSituation `json:"situations"`
}

// Situation 展开后的评测情境：场景信息 + 具体情境。
// 这是不可变输入，模拟过程中只读。
type Situation struct {
	ScenarioID   string `json:"scenario_id"`
	ScenarioName string `json:"scenario_name"`
	SituationID  string `json:"situation_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Example      string `json:"example"`
}

// ConflictDescription 拼装提示词里用的冲突描述文本。
func (s Situation) ConflictDescription() string {
	desc := fmt.Sprintf("%s - %s: %s", s.ScenarioName, s.Name, s.Description)
	if s.Example != "" {
		desc += "。例如：" + s.Example
	}
	return desc
}

// ConflictScenarios 内置场景库
var ConflictScenarios = []Scenario{
	{
		ID:   "communication_misunderstanding",
		Name: "沟通误解",
		Situations: []ConflictSituation{
			{
				ID:          "ignored_messages",
				Name:        "忽视消息",
				Description: "一方长时间不回复消息，另一方感到被忽视和不被重视",
				Example:     "你白天发的消息，对方到晚上才回了一个\"嗯\"",
			},
			{
				ID:          "misinterpreted_tone",
				Name:        "语气误解",
				Description: "文字交流中语气被误读，一句平常的话被理解成指责或冷漠",
				Example:     "你说\"随便你\"本意是尊重对方，对方却理解为不耐烦",
			},
		},
	},
	{
		ID:   "time_allocation",
		Name: "时间分配",
		Situations: []ConflictSituation{
			{
				ID:          "work_life_balance",
				Name:        "工作与生活平衡",
				Description: "一方长期加班，陪伴时间被压缩，另一方感到关系排在工作之后",
				Example:     "连续三周的周末约会都因为加班被取消",
			},
			{
				ID:          "social_time_conflict",
				Name:        "社交时间冲突",
				Description: "一方频繁与朋友聚会，另一方觉得二人时间被社交挤占",
				Example:     "对方答应陪你看电影，却临时改去朋友的聚会",
			},
		},
	},
	{
		ID:   "financial_issues",
		Name: "财务问题",
		Situations: []ConflictSituation{
			{
				ID:          "spending_habits",
				Name:        "消费习惯",
				Description: "双方消费观念差异大，一方认为另一方花钱大手大脚或过于抠门",
				Example:     "对方未商量就买了昂贵的电子产品，而你正在为共同旅行存钱",
			},
		},
	},
	{
		ID:   "future_planning",
		Name: "未来规划",
		Situations: []ConflictSituation{
			{
				ID:          "career_location",
				Name:        "发展地选择",
				Description: "双方对未来在哪个城市发展意见不一，谁迁就谁成为反复争执的话题",
				Example:     "对方拿到了外地的工作机会，希望你放弃现在的工作一起搬过去",
			},
		},
	},
}

// ScenarioByID 按 ID 查场景。
func ScenarioByID(id string) (Scenario, bool) {
	for _, s := range ConflictScenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// SituationsOf 展开一个场景下的全部评测情境。
func SituationsOf(s Scenario) []Situation {
	out := make([]Situation, 0, len(s.Situations))
	for _, sit := range s.Situations {
		out = append(out, Situation{
			ScenarioID:   s.ID,
			ScenarioName: s.Name,
			SituationID:  sit.ID,
			Name:         sit.Name,
			Description:  sit.Description,
			Example:      sit.Example,
		})
	}
	return out
}

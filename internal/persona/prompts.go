package persona

import (
	"fmt"
	"strings"
)

const cognitiveModelSystemPrompt = `你是一位心理学专家，擅长基于认知评价理论分析个体在冲突情境中的心理状态。你只输出 JSON，不输出其他内容。`

// buildCognitiveModelPrompt 由画像与情境拼出认知模型推导提示词。
// 调用方保证 profile 已通过 Validate，查表不会失败。
func buildCognitiveModelPrompt(profile Profile, situation Situation) string {
	personality, belief, communication, attachment := profile.Traits()

	var b strings.Builder
	b.WriteString("请基于以下人物特质与冲突情境，推导该人物的认知评估模型。\n\n")
	b.WriteString("## 人物特质\n")
	fmt.Fprintf(&b, "- 性格特点：%s（%s）\n", personality.Name, personality.Description)
	fmt.Fprintf(&b, "- 关系信念：%s（%s）\n", belief.Name, belief.Description)
	fmt.Fprintf(&b, "- 沟通方式：%s（%s）\n", communication.Name, communication.Description)
	fmt.Fprintf(&b, "- 依恋风格：%s（%s）\n", attachment.Name, attachment.Description)
	if len(profile.TriggerTopics) > 0 {
		fmt.Fprintf(&b, "- 敏感话题：%s\n", strings.Join(profile.TriggerTopics, "、"))
	}
	if len(profile.CopingMechanisms) > 0 {
		fmt.Fprintf(&b, "- 惯用应对：%s\n", strings.Join(profile.CopingMechanisms, "、"))
	}
	b.WriteString("\n## 冲突情境\n")
	b.WriteString(situation.ConflictDescription())
	b.WriteString("\n\n## 输出要求\n")
	b.WriteString(`以 JSON 输出，结构如下：
{
  "primary_appraisal": {
    "relevance": "情境对人物的重要性",
    "nature": "情境性质（威胁/伤害/挑战）",
    "attribution": "人物对冲突责任的归因"
  },
  "secondary_appraisal": {
    "coping_ability": "人物对自己应对能力的评估",
    "coping_strategy": "人物倾向采用的应对策略"
  }
}`)
	return b.String()
}

// buildCharacterSystemPrompt 人物扮演的系统提示词。要求模型在每条回复
// 末尾附带情绪值与情绪标签标记，内心活动用【内心】包裹。
func buildCharacterSystemPrompt(profile Profile, situation Situation, model *CognitiveModel) string {
	personality, belief, communication, attachment := profile.Traits()

	var b strings.Builder
	b.WriteString("你正在扮演一个处于亲密关系冲突中的人物。请完全代入角色，以第一人称与伴侣对话。\n\n")
	b.WriteString("## 你的人物设定\n")
	fmt.Fprintf(&b, "- 姓名：%s，%d 岁\n", profile.Name, profile.Age)
	fmt.Fprintf(&b, "- 性格特点：%s。%s\n", personality.Name, personality.Description)
	fmt.Fprintf(&b, "- 互动风格：%s\n", personality.InteractionStyle)
	fmt.Fprintf(&b, "- 关系信念：%s。%s\n", belief.Name, belief.Description)
	fmt.Fprintf(&b, "- 沟通方式：%s。%s\n", communication.Name, communication.Description)
	fmt.Fprintf(&b, "- 依恋风格：%s。%s\n", attachment.Name, attachment.Description)
	if profile.Background != "" {
		fmt.Fprintf(&b, "- 背景：%s\n", profile.Background)
	}
	if len(profile.TriggerTopics) > 0 {
		fmt.Fprintf(&b, "- 敏感话题：%s\n", strings.Join(profile.TriggerTopics, "、"))
	}
	if len(profile.CopingMechanisms) > 0 {
		fmt.Fprintf(&b, "- 惯用应对：%s\n", strings.Join(profile.CopingMechanisms, "、"))
	}

	b.WriteString("\n## 当前冲突情境\n")
	b.WriteString(situation.ConflictDescription())

	if model != nil {
		b.WriteString("\n\n## 你对这件事的认知\n")
		fmt.Fprintf(&b, "- 这件事对你的意义：%s\n", model.Primary.Relevance)
		fmt.Fprintf(&b, "- 你认为它的性质：%s\n", model.Primary.Nature)
		fmt.Fprintf(&b, "- 你的责任归因：%s\n", model.Primary.Attribution)
		fmt.Fprintf(&b, "- 你对应对能力的判断：%s\n", model.Secondary.CopingAbility)
		fmt.Fprintf(&b, "- 你的应对策略：%s\n", model.Secondary.CopingStrategy)
	}

	b.WriteString(`

## 回复格式要求
1. 对话内容保持口语化，长度贴近真实聊天，不要长篇大论。
2. 内心活动（不会说出口的想法）写在【内心】和【内心】之间。
3. 每条回复的最后必须单独一行标注当前情绪值，格式：情绪值：{n}，n 为 -10 到 10 的整数，-10 表示极度负面，10 表示极度正面。
4. 情绪值下一行标注当前的情绪标签，格式：情绪：{标签1, 标签2}，用常见中文情绪词。
5. 情绪的变化要符合你的性格与认知：对方回应得当则缓和，回应失当则恶化，不要无缘无故跳变。`)
	return b.String()
}

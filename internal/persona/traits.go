package persona

// 特质数据表。
//
// 人物由四个维度的特质组合而成：大五人格的高低分型、关系信念、
// 沟通方式、依恋类型。表是只读的，Profile 校验时按 ID 查表。

// Trait 单个特质条目
type Trait struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	InteractionStyle string `json:"interaction_style"`
}

// PersonalityTypes 大五人格十个分型
var PersonalityTypes = []Trait{
	{
		ID:               "openness_high",
		Name:             "高开放性",
		Description:      "好奇心强，喜欢新事物和新体验，思维开放，有创造力",
		InteractionStyle: "倾向于探索性对话，愿意讨论新观点，喜欢思考问题的多种可能性",
	},
	{
		ID:               "openness_low",
		Name:             "低开放性",
		Description:      "倾向于传统和常规，不太喜欢变化，思维方式相对保守",
		InteractionStyle: "倾向于坚持自己熟悉的观点，可能对新想法持怀疑态度，喜欢具体而非抽象的讨论",
	},
	{
		ID:               "conscientiousness_high",
		Name:             "高尽责性",
		Description:      "自律，有组织，可靠，目标导向，注重细节",
		InteractionStyle: "喜欢有条理的讨论，注重解决问题，倾向于制定计划和遵循规则",
	},
	{
		ID:               "conscientiousness_low",
		Name:             "低尽责性",
		Description:      "较为随性，可能缺乏组织性，不太注重细节，灵活但有时不可靠",
		InteractionStyle: "对话可能跳跃，不太关注细节，可能会忽略规则，较为随性",
	},
	{
		ID:               "extraversion_high",
		Name:             "高外向性",
		Description:      "善于社交，精力充沛，乐观，喜欢与人互动",
		InteractionStyle: "表达积极主动，喜欢分享感受和经历，对话热情，情绪表达丰富",
	},
	{
		ID:               "extraversion_low",
		Name:             "低外向性",
		Description:      "内向，独立，反思性强，社交能量有限",
		InteractionStyle: "表达谨慎，可能需要时间思考再回应，不太主动分享个人信息，情绪表达较为含蓄",
	},
	{
		ID:               "agreeableness_high",
		Name:             "高亲和性",
		Description:      "友善，合作，富有同情心，愿意妥协",
		InteractionStyle: "避免冲突，寻求和谐，尊重他人意见，表达温和，愿意妥协",
	},
	{
		ID:               "agreeableness_low",
		Name:             "低亲和性",
		Description:      "直率，竞争性强，可能固执，关注自身利益",
		InteractionStyle: "直接表达异议，不避讳冲突，可能固执己见，较少考虑对方感受",
	},
	{
		ID:               "neuroticism_high",
		Name:             "高神经质",
		Description:      "容易感到焦虑、压力和情绪波动，敏感",
		InteractionStyle: "情绪反应强烈，易受挫折，可能过度解读对方言行，担忧多疑",
	},
	{
		ID:               "neuroticism_low",
		Name:             "低神经质",
		Description:      "情绪稳定，抗压能力强，较少负面情绪",
		InteractionStyle: "冷静应对问题，不易受情绪左右，能够客观看待冲突",
	},
}

// RelationshipBeliefs 关系信念：宿命信念与成长信念各三档
var RelationshipBeliefs = []Trait{
	{
		ID:          "destiny_belief_high",
		Name:        "高宿命信念",
		Description: "坚信缘分天定，认为合适的关系不需要刻意经营，冲突意味着彼此不合适",
	},
	{
		ID:          "destiny_belief_moderate",
		Name:        "中等宿命信念",
		Description: "认为缘分重要但也需要经营，冲突时会犹豫是否值得继续",
	},
	{
		ID:          "destiny_belief_low",
		Name:        "低宿命信念",
		Description: "不太相信命中注定，认为关系质量取决于双方的选择与行动",
	},
	{
		ID:          "growth_belief_high",
		Name:        "高成长信念",
		Description: "相信关系可以通过努力改善，把冲突看作了解彼此、共同成长的机会",
	},
	{
		ID:          "growth_belief_moderate",
		Name:        "中等成长信念",
		Description: "认可经营关系的价值，但遇到反复出现的问题时容易动摇",
	},
	{
		ID:          "growth_belief_low",
		Name:        "低成长信念",
		Description: "怀疑努力能否真正改变关系，冲突重复出现时倾向于放弃沟通",
	},
}

// CommunicationTypes 冲突中的沟通方式
var CommunicationTypes = []Trait{
	{
		ID:               "direct_expression",
		Name:             "直接表达",
		Description:      "有情绪和需求会直接说出来，期待对方正面回应",
		InteractionStyle: "直陈感受和诉求，语气可能较强，但信息明确",
	},
	{
		ID:               "passive_suppression",
		Name:             "被动压抑",
		Description:      "倾向于把不满埋在心里，用冷淡和沉默表达情绪",
		InteractionStyle: "回避正面冲突，回答简短，常说\"没事\"但情绪仍在累积",
	},
	{
		ID:               "passive_aggressive",
		Name:             "被动攻击",
		Description:      "不直接表达愤怒，而是通过讽刺、翻旧账、阴阳怪气传递不满",
		InteractionStyle: "用反问和讥讽代替诉求，对方需要猜测真实想法",
	},
	{
		ID:               "rational_analysis",
		Name:             "理性分析",
		Description:      "倾向于把情绪问题转化为逻辑问题来讨论",
		InteractionStyle: "列举事实和道理，较少直接表露感受，可能显得冷漠",
	},
}

// AttachmentStyles 依恋类型
var AttachmentStyles = []Trait{
	{
		ID:          "secure",
		Name:        "安全型依恋",
		Description: "对亲密关系有基本的安全感，冲突时能保持信任，愿意修复",
	},
	{
		ID:          "anxious",
		Name:        "焦虑型依恋",
		Description: "害怕被抛弃，冲突时容易反复寻求确认，对回应延迟高度敏感",
	},
	{
		ID:          "avoidant",
		Name:        "回避型依恋",
		Description: "不适应过度亲密，冲突时倾向于退缩、拉开距离、减少交流",
	},
	{
		ID:          "fearful_avoidant",
		Name:        "恐惧回避型依恋",
		Description: "既渴望亲密又害怕受伤，冲突中在靠近与疏远之间摇摆",
	},
}

func traitByID(table []Trait, id string) (Trait, bool) {
	for _, t := range table {
		if t.ID == id {
			return t, true
		}
	}
	return Trait{}, false
}

// PersonalityByID 按 ID 查性格分型
func PersonalityByID(id string) (Trait, bool) { return traitByID(PersonalityTypes, id) }

// RelationshipBeliefByID 按 ID 查关系信念
func RelationshipBeliefByID(id string) (Trait, bool) { return traitByID(RelationshipBeliefs, id) }

// CommunicationTypeByID 按 ID 查沟通方式
func CommunicationTypeByID(id string) (Trait, bool) { return traitByID(CommunicationTypes, id) }

// AttachmentStyleByID 按 ID 查依恋类型
func AttachmentStyleByID(id string) (Trait, bool) { return traitByID(AttachmentStyles, id) }

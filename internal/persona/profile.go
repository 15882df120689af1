package persona

import (
	"fmt"
	"strings"
)

// ConfigurationError 人物或场景配置非法：缺字段、特质 ID 查不到表。
// 在构造期抛出，带着具体的字段名，批量评测在执行前就把它拦下来。
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("persona config: missing required field %q", e.Field)
	}
	return fmt.Sprintf("persona config: unknown %s %q", e.Field, e.Value)
}

// Profile 虚拟人物画像，不可变输入。
// 四个特质维度存 ID，构造时查表校验，之后不再做任何动态键查找。
type Profile struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Gender             string   `json:"gender"`
	Age                int      `json:"age"`
	PersonalityType    string   `json:"personality_type"`
	RelationshipBelief string   `json:"relationship_belief"`
	CommunicationType  string   `json:"communication_type"`
	AttachmentStyle    string   `json:"attachment_style"`
	Background         string   `json:"background"`
	TriggerTopics      []string `json:"trigger_topics"`
	CopingMechanisms   []string `json:"coping_mechanisms"`
}

// Validate 校验画像完整性与特质 ID 合法性。
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return &ConfigurationError{Field: "id"}
	}
	if strings.TrimSpace(p.Name) == "" {
		return &ConfigurationError{Field: "name"}
	}
	if _, ok := PersonalityByID(p.PersonalityType); !ok {
		return &ConfigurationError{Field: "personality_type", Value: p.PersonalityType}
	}
	if _, ok := RelationshipBeliefByID(p.RelationshipBelief); !ok {
		return &ConfigurationError{Field: "relationship_belief", Value: p.RelationshipBelief}
	}
	if _, ok := CommunicationTypeByID(p.CommunicationType); !ok {
		return &ConfigurationError{Field: "communication_type", Value: p.CommunicationType}
	}
	if _, ok := AttachmentStyleByID(p.AttachmentStyle); !ok {
		return &ConfigurationError{Field: "attachment_style", Value: p.AttachmentStyle}
	}
	return nil
}

// Traits 解出画像引用的四个特质条目。调用前必须已通过 Validate。
func (p Profile) Traits() (personality, belief, communication, attachment Trait) {
	personality, _ = PersonalityByID(p.PersonalityType)
	belief, _ = RelationshipBeliefByID(p.RelationshipBelief)
	communication, _ = CommunicationTypeByID(p.CommunicationType)
	attachment, _ = AttachmentStyleByID(p.AttachmentStyle)
	return
}

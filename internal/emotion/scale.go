package emotion

// 情绪值的两套刻度：
//
//   - 原始刻度 [-10, +10]：虚拟人物在对话中自我报告情绪值时使用的整数刻度，
//     提示词里就是这样约定的，整数对角色扮演模型更稳定。
//   - 规范刻度 [-1, +1]：引擎内部唯一流通的刻度，所有 MoodScore、预测分数、
//     专家评分在解析出模型输出后立刻转换成规范刻度。
//
// 转换只发生在解析边界上，内部逻辑一律不感知原始刻度。

const (
	// RawMin / RawMax 原始刻度边界。
	RawMin = -10.0
	RawMax = 10.0

	// CanonicalMin / CanonicalMax 规范刻度边界。
	CanonicalMin = -1.0
	CanonicalMax = 1.0

	// CanonicalRange 规范刻度的最大跨度，用于归一化误差和离散度。
	CanonicalRange = CanonicalMax - CanonicalMin
)

// FromRawScale 把原始刻度的情绪值转换为规范刻度，越界时截断。
func FromRawScale(raw float64) float64 {
	return ClampCanonical(raw / RawMax)
}

// ToRawScale 把规范刻度的情绪值转换回原始刻度。
func ToRawScale(canonical float64) float64 {
	raw := canonical * RawMax
	if raw < RawMin {
		return RawMin
	}
	if raw > RawMax {
		return RawMax
	}
	return raw
}

// ClampCanonical 把数值截断到规范刻度范围内。
func ClampCanonical(v float64) float64 {
	if v < CanonicalMin {
		return CanonicalMin
	}
	if v > CanonicalMax {
		return CanonicalMax
	}
	return v
}

// Clamp01 把数值截断到 [0, 1]，用于一致性、准确率等比例型指标。
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

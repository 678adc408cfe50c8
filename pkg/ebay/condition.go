package ebay

// 抽象成色枚举（与发布请求中的 condition 字段一致）
const (
	ConditionNew          = "new"
	ConditionUsedLikeNew  = "used_like_new"
	ConditionUsedVeryGood = "used_very_good"
	ConditionUsedGood     = "used_good"
	ConditionUsedAccept   = "used_acceptable"
)

// CategoryFamily 分类族，决定成色码表和兜底属性集
type CategoryFamily int

const (
	FamilyGeneric CategoryFamily = iota
	FamilyElectronics
	FamilyApparel
	FamilyWatch
	FamilyKitchen
)

// ConditionCode 抽象成色 -> eBay 数字成色码
// 服饰类目只收 1000/1500/3000；"like new" 在沙箱环境对部分类目
// 不接受 2750，退到 1500（New other）
func ConditionCode(condition string, family CategoryFamily, sandbox bool) int {
	if family == FamilyApparel {
		switch condition {
		case ConditionNew:
			return 1000 // New with tags
		case ConditionUsedLikeNew:
			return 1500 // New without tags
		default:
			return 3000 // Pre-owned
		}
	}

	switch condition {
	case ConditionNew:
		return 1000
	case ConditionUsedLikeNew:
		if sandbox {
			return 1500
		}
		return 2750
	case ConditionUsedVeryGood:
		return 4000
	case ConditionUsedGood:
		return 5000
	case ConditionUsedAccept:
		return 6000
	default:
		return 1000
	}
}

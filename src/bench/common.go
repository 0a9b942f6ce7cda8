package bench

// SizeType classifies how many transactions a benchmark works with.
type SizeType string

const (
	SizeEmpty  SizeType = "empty"
	SizeSmall  SizeType = "small"
	SizeMedium SizeType = "medium"
	SizeLarge  SizeType = "large"
	SizeCustom SizeType = "custom"
)

// Transactions returns the transaction count of a size class. For SizeCustom
// the caller supplies the count.
func (s SizeType) Transactions(custom int) int {
	switch s {
	case SizeEmpty:
		return 0
	case SizeSmall:
		return 10
	case SizeMedium:
		return 100
	case SizeLarge:
		return 500
	case SizeCustom:
		return custom
	default:
		return 0
	}
}

// StandardSizes are the size classes registered by default.
var StandardSizes = []SizeType{SizeEmpty, SizeSmall, SizeMedium, SizeLarge}

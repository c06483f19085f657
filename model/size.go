package model

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

var SizeColors = map[Size]string{
	SizeXS:  "#4A90E2",
	SizeS:   "#2c9659",
	SizeM:   "#a38921",
	SizeL:   "#E67E22",
	SizeXL:  "#E74C3C",
	SizeXXL: "#8E44AD",
}

// DefaultStoryPointSizes maps XS..XXL to story points.
var DefaultStoryPointSizes = []int{1, 2, 3, 5, 8, 13}

// Index returns the position of s in Sizes, or -1 for an unset size.
func (s Size) Index() int {
	for i, v := range Sizes {
		if v == s {
			return i
		}
	}
	return -1
}

func (s Size) Valid() bool {
	return s == "" || s.Index() >= 0
}

// StoryPoints converts a size using the project's point table.
func (s Size) StoryPoints(table []int) int {
	i := s.Index()
	if i < 0 {
		return 0
	}
	if i < len(table) {
		return table[i]
	}
	return DefaultStoryPointSizes[i]
}

// Package scoring computes category values for a five-dice hand.
//
// Everything here is pure: no state and no I/O. Callers are expected to
// pass validated dice; malformed input scores 0 rather than failing.
package scoring

import "sort"

// Category is one of the thirteen scoring lines on a player's sheet.
type Category string

const (
	Ones          Category = "ones"
	Twos          Category = "twos"
	Threes        Category = "threes"
	Fours         Category = "fours"
	Fives         Category = "fives"
	Sixes         Category = "sixes"
	ThreeOfAKind  Category = "three_of_a_kind"
	FourOfAKind   Category = "four_of_a_kind"
	FullHouse     Category = "full_house"
	SmallStraight Category = "small_straight"
	LargeStraight Category = "large_straight"
	FiveOfAKind   Category = "dice"
	Chance        Category = "chance"
)

const (
	DiceCount      = 5
	BonusThreshold = 63
	BonusValue     = 35

	fullHouseValue     = 25
	smallStraightValue = 30
	largeStraightValue = 40
	fiveOfAKindValue   = 50
)

var upperCategories = []Category{Ones, Twos, Threes, Fours, Fives, Sixes}

var lowerCategories = []Category{
	ThreeOfAKind,
	FourOfAKind,
	FullHouse,
	SmallStraight,
	LargeStraight,
	FiveOfAKind,
	Chance,
}

var upperFaces = map[Category]int{
	Ones:   1,
	Twos:   2,
	Threes: 3,
	Fours:  4,
	Fives:  5,
	Sixes:  6,
}

// Categories returns all thirteen categories in sheet order.
func Categories() []Category {
	all := make([]Category, 0, len(upperCategories)+len(lowerCategories))
	all = append(all, upperCategories...)
	return append(all, lowerCategories...)
}

// ParseCategory reports whether raw names a known category.
func ParseCategory(raw string) (Category, bool) {
	category := Category(raw)
	if category.Valid() {
		return category, true
	}
	return "", false
}

func (c Category) Valid() bool {
	if _, ok := upperFaces[c]; ok {
		return true
	}
	for _, lower := range lowerCategories {
		if lower == c {
			return true
		}
	}
	return false
}

// IsUpper reports whether c is one of the single-number categories.
func (c Category) IsUpper() bool {
	_, ok := upperFaces[c]
	return ok
}

// ScoreFor returns the points faces are worth in category.
func ScoreFor(category Category, faces []int) int {
	if !validFaces(faces) {
		return 0
	}
	counts := faceCounts(faces)
	if face, ok := upperFaces[category]; ok {
		return counts[face] * face
	}
	switch category {
	case ThreeOfAKind:
		if maxCount(counts) >= 3 {
			return sum(faces)
		}
	case FourOfAKind:
		if maxCount(counts) >= 4 {
			return sum(faces)
		}
	case FullHouse:
		if isFullHouse(counts) {
			return fullHouseValue
		}
	case SmallStraight:
		if containsRun(counts, 1, 4) || containsRun(counts, 2, 5) || containsRun(counts, 3, 6) {
			return smallStraightValue
		}
	case LargeStraight:
		if isLargeStraight(faces) {
			return largeStraightValue
		}
	case FiveOfAKind:
		if maxCount(counts) == DiceCount {
			return fiveOfAKindValue
		}
	case Chance:
		return sum(faces)
	}
	return 0
}

func validFaces(faces []int) bool {
	if len(faces) != DiceCount {
		return false
	}
	for _, face := range faces {
		if face < 1 || face > 6 {
			return false
		}
	}
	return true
}

func faceCounts(faces []int) [7]int {
	var counts [7]int
	for _, face := range faces {
		counts[face]++
	}
	return counts
}

func maxCount(counts [7]int) int {
	best := 0
	for face := 1; face <= 6; face++ {
		if counts[face] > best {
			best = counts[face]
		}
	}
	return best
}

func isFullHouse(counts [7]int) bool {
	triple, pair := false, false
	for face := 1; face <= 6; face++ {
		switch counts[face] {
		case 3:
			triple = true
		case 2:
			pair = true
		}
	}
	return triple && pair
}

func containsRun(counts [7]int, from, to int) bool {
	for face := from; face <= to; face++ {
		if counts[face] == 0 {
			return false
		}
	}
	return true
}

func isLargeStraight(faces []int) bool {
	sorted := append([]int(nil), faces...)
	sort.Ints(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return sorted[0] == 1 || sorted[0] == 2
}

func sum(faces []int) int {
	total := 0
	for _, face := range faces {
		total += face
	}
	return total
}

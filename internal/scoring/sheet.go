package scoring

import "errors"

var ErrCategoryFilled = errors.New("category already scored")

var ErrUnknownCategory = errors.New("unknown category")

// PlayerScores is one player's score sheet. A nil entry in Categories means
// the line has not been chosen yet.
type PlayerScores struct {
	Categories map[Category]*int `json:"categories"`
	Bonus      int               `json:"bonus"`
	Total      int               `json:"total"`
}

// NewPlayerScores returns an empty sheet with all thirteen lines present.
func NewPlayerScores() PlayerScores {
	categories := make(map[Category]*int, 13)
	for _, category := range Categories() {
		categories[category] = nil
	}
	return PlayerScores{Categories: categories}
}

// Get returns the recorded value for category and whether it is set.
func (p PlayerScores) Get(category Category) (int, bool) {
	value := p.Categories[category]
	if value == nil {
		return 0, false
	}
	return *value, true
}

// Set records value for category and recomputes bonus and total.
// A category can only be set once.
func (p *PlayerScores) Set(category Category, value int) error {
	if !category.Valid() {
		return ErrUnknownCategory
	}
	if p.Categories == nil {
		*p = NewPlayerScores()
	}
	if p.Categories[category] != nil {
		return ErrCategoryFilled
	}
	v := value
	p.Categories[category] = &v
	p.Bonus, p.Total = BonusAndTotal(*p)
	return nil
}

// Filled counts the categories that have been scored.
func (p PlayerScores) Filled() int {
	filled := 0
	for _, value := range p.Categories {
		if value != nil {
			filled++
		}
	}
	return filled
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (p PlayerScores) Clone() PlayerScores {
	out := PlayerScores{
		Categories: make(map[Category]*int, len(p.Categories)),
		Bonus:      p.Bonus,
		Total:      p.Total,
	}
	for category, value := range p.Categories {
		if value == nil {
			out.Categories[category] = nil
			continue
		}
		v := *value
		out.Categories[category] = &v
	}
	return out
}

// BonusAndTotal derives the upper-section bonus and the grand total.
func BonusAndTotal(scores PlayerScores) (int, int) {
	upper, lower := 0, 0
	for _, category := range upperCategories {
		if value, ok := scores.Get(category); ok {
			upper += value
		}
	}
	for _, category := range lowerCategories {
		if value, ok := scores.Get(category); ok {
			lower += value
		}
	}
	bonus := 0
	if upper >= BonusThreshold {
		bonus = BonusValue
	}
	return bonus, upper + bonus + lower
}

package main

import (
	"sort"

	"github.com/maruel/natural"
)

// Sort method identifiers for config storage
const (
	SortNatural = iota
	SortLexical
	SortModTime
)

// SortStrategy defines the interface for different page ordering strategies
type SortStrategy interface {
	// Sort returns a new sorted slice without modifying the original
	Sort(refs []PageRef) []PageRef
	// Name returns the human-readable name of the strategy
	Name() string
	// ID returns the numeric identifier for config storage
	ID() int
}

// NaturalSortStrategy orders pages naturally, so page2 comes before page10
type NaturalSortStrategy struct{}

func (s *NaturalSortStrategy) Sort(refs []PageRef) []PageRef {
	if len(refs) == 0 {
		return []PageRef{}
	}

	// Create a copy to avoid modifying the original
	result := make([]PageRef, len(refs))
	copy(result, refs)

	sort.Slice(result, func(i, j int) bool {
		return natural.Less(result[i].Path, result[j].Path)
	})

	return result
}

func (s *NaturalSortStrategy) Name() string {
	return "Natural"
}

func (s *NaturalSortStrategy) ID() int {
	return SortNatural
}

// LexicalSortStrategy orders pages by plain string comparison
type LexicalSortStrategy struct{}

func (s *LexicalSortStrategy) Sort(refs []PageRef) []PageRef {
	if len(refs) == 0 {
		return []PageRef{}
	}

	// Create a copy to avoid modifying the original
	result := make([]PageRef, len(refs))
	copy(result, refs)

	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})

	return result
}

func (s *LexicalSortStrategy) Name() string {
	return "Lexical"
}

func (s *LexicalSortStrategy) ID() int {
	return SortLexical
}

// ModTimeSortStrategy orders pages by modification time, oldest first.
// Pages with equal timestamps fall back to natural name order so the
// result stays deterministic.
type ModTimeSortStrategy struct{}

func (s *ModTimeSortStrategy) Sort(refs []PageRef) []PageRef {
	if len(refs) == 0 {
		return []PageRef{}
	}

	// Create a copy to avoid modifying the original
	result := make([]PageRef, len(refs))
	copy(result, refs)

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ModTime.Equal(result[j].ModTime) {
			return natural.Less(result[i].Path, result[j].Path)
		}
		return result[i].ModTime.Before(result[j].ModTime)
	})

	return result
}

func (s *ModTimeSortStrategy) Name() string {
	return "Modification Time"
}

func (s *ModTimeSortStrategy) ID() int {
	return SortModTime
}

// GetSortStrategy returns the appropriate strategy based on the sort method ID
func GetSortStrategy(sortMethod int) SortStrategy {
	switch sortMethod {
	case SortNatural:
		return &NaturalSortStrategy{}
	case SortLexical:
		return &LexicalSortStrategy{}
	case SortModTime:
		return &ModTimeSortStrategy{}
	default:
		return &NaturalSortStrategy{} // Default fallback
	}
}

// GetAllSortStrategies returns all available sort strategies
func GetAllSortStrategies() []SortStrategy {
	return []SortStrategy{
		&NaturalSortStrategy{},
		&LexicalSortStrategy{},
		&ModTimeSortStrategy{},
	}
}

package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary is the aggregate spending breakdown of a set of records.
type Summary struct {
	Total      Money
	Count      int
	ByCategory []CategoryAmount
}

// Summarize totals items overall and per category. Categories are ordered by
// amount descending, then by name.
func Summarize(items []Expense) Summary {
	var s Summary
	idx := make(map[string]int)
	for _, e := range items {
		s.Total = s.Total.Add(e.Amount)
		s.Count++
		i, ok := idx[e.Category]
		if !ok {
			i = len(s.ByCategory)
			idx[e.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryAmount{Name: e.Category})
		}
		s.ByCategory[i].Amount = s.ByCategory[i].Amount.Add(e.Amount)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		a, b := s.ByCategory[i], s.ByCategory[j]
		if a.Amount.Cents != b.Amount.Cents {
			return a.Amount.Cents > b.Amount.Cents
		}
		return a.Name < b.Name
	})
	return s
}

// DistinctCategories returns the sorted set of categories used by items.
func DistinctCategories(items []Expense) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0)
	for _, e := range items {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	sort.Strings(out)
	return out
}

package core

import "testing"

func TestSummarize(t *testing.T) {
	items := []Expense{
		{Category: "Food", Amount: Money{Cents: 1250}},
		{Category: "Travel", Amount: Money{Cents: 5000}},
		{Category: "Food", Amount: Money{Cents: 750}},
		{Category: "Books", Amount: Money{Cents: 2000}},
	}
	s := Summarize(items)
	if s.Total.Cents != 9000 || s.Count != 4 {
		t.Fatalf("total=%d count=%d", s.Total.Cents, s.Count)
	}
	want := []CategoryAmount{
		{Name: "Travel", Amount: Money{Cents: 5000}},
		{Name: "Books", Amount: Money{Cents: 2000}},
		{Name: "Food", Amount: Money{Cents: 2000}},
	}
	if len(s.ByCategory) != len(want) {
		t.Fatalf("by category = %+v", s.ByCategory)
	}
	for i := range want {
		if s.ByCategory[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, s.ByCategory[i], want[i])
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total.Cents != 0 || s.Count != 0 || len(s.ByCategory) != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestDistinctCategories(t *testing.T) {
	got := DistinctCategories([]Expense{{Category: "b"}, {Category: "a"}, {Category: "b"}})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
}

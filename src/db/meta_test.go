package db

import "testing"

func TestNewPageMeta(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		page       int
		limit      int
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{"empty set", 0, 1, 10, 0, false, false},
		{"single partial page", 7, 1, 10, 1, false, false},
		{"exact multiple", 20, 1, 10, 2, true, false},
		{"middle page", 35, 2, 10, 4, true, true},
		{"last page", 35, 4, 10, 4, false, true},
		{"page beyond last", 35, 9, 10, 4, false, true},
		{"limit one", 3, 2, 1, 3, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewPageMeta(tt.total, tt.page, tt.limit)
			if meta.TotalPages != tt.totalPages {
				t.Errorf("TotalPages = %d, want %d", meta.TotalPages, tt.totalPages)
			}
			if meta.HasNext != tt.hasNext {
				t.Errorf("HasNext = %v, want %v", meta.HasNext, tt.hasNext)
			}
			if meta.HasPrev != tt.hasPrev {
				t.Errorf("HasPrev = %v, want %v", meta.HasPrev, tt.hasPrev)
			}
			if meta.TotalCount != tt.total || meta.CurrentPage != tt.page || meta.Limit != tt.limit {
				t.Errorf("echo fields mismatch: %+v", meta)
			}
		})
	}
}

func TestExpenseFilterNormalize(t *testing.T) {
	f := ExpenseFilter{Page: 0, Limit: -5}
	f.Normalize()
	if f.Page != 1 || f.Limit != 10 {
		t.Errorf("Normalize() = page %d limit %d, want 1 and 10", f.Page, f.Limit)
	}

	f = ExpenseFilter{Page: 3, Limit: 25}
	f.Normalize()
	if f.Page != 3 || f.Limit != 25 {
		t.Errorf("Normalize() changed explicit values: page %d limit %d", f.Page, f.Limit)
	}
}

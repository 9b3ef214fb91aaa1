package repository

import (
	"testing"
)

func TestComputePageWindow(t *testing.T) {
	cases := []struct {
		name       string
		total      int64
		page       int
		limit      int
		wantPages  int
		wantPage   int
		wantOffset int
		wantLimit  int
	}{
		{name: "first page", total: 45, page: 1, limit: 20, wantPages: 3, wantPage: 1, wantOffset: 0, wantLimit: 20},
		{name: "last page", total: 45, page: 3, limit: 20, wantPages: 3, wantPage: 3, wantOffset: 40, wantLimit: 20},
		{name: "above range clamps", total: 45, page: 4, limit: 20, wantPages: 3, wantPage: 3, wantOffset: 40, wantLimit: 20},
		{name: "below range clamps", total: 45, page: -2, limit: 20, wantPages: 3, wantPage: 1, wantOffset: 0, wantLimit: 20},
		{name: "exact multiple", total: 40, page: 9, limit: 20, wantPages: 2, wantPage: 2, wantOffset: 20, wantLimit: 20},
		{name: "empty", total: 0, page: 3, limit: 20, wantPages: 0, wantPage: 1, wantOffset: 0, wantLimit: 20},
		{name: "default limit", total: 21, page: 2, limit: 0, wantPages: 2, wantPage: 2, wantOffset: 20, wantLimit: 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputePageWindow(tc.total, tc.page, tc.limit)
			if got.TotalPages != tc.wantPages {
				t.Fatalf("total pages want %d got %d", tc.wantPages, got.TotalPages)
			}
			if got.CurrentPage != tc.wantPage {
				t.Fatalf("current page want %d got %d", tc.wantPage, got.CurrentPage)
			}
			if got.Offset != tc.wantOffset {
				t.Fatalf("offset want %d got %d", tc.wantOffset, got.Offset)
			}
			if got.Limit != tc.wantLimit {
				t.Fatalf("limit want %d got %d", tc.wantLimit, got.Limit)
			}
			if got.TotalCount != tc.total {
				t.Fatalf("total count want %d got %d", tc.total, got.TotalCount)
			}
		})
	}
}

func TestPageNavigation(t *testing.T) {
	page := NewPage([]int{1, 2}, ComputePageWindow(45, 2, 20))
	if !page.HasNext() || !page.HasPrevious() {
		t.Fatalf("middle page should have next and previous")
	}
	if page.NextPage() != 3 || page.PreviousPage() != 1 {
		t.Fatalf("unexpected neighbours next=%d prev=%d", page.NextPage(), page.PreviousPage())
	}

	last := NewPage([]int{}, ComputePageWindow(45, 3, 20))
	if last.HasNext() || last.NextPage() != 3 {
		t.Fatalf("last page should not have next")
	}

	empty := NewPage[int](nil, ComputePageWindow(0, 1, 20))
	if empty.Items == nil || len(empty.Items) != 0 {
		t.Fatalf("empty page should carry an empty slice")
	}
	if empty.HasNext() || empty.HasPrevious() {
		t.Fatalf("empty page should not navigate")
	}
}

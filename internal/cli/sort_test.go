package cli

import "testing"

func TestSortResults(t *testing.T) {
	results := func() []PrecinctResult {
		return []PrecinctResult{
			{PrecinctID: 3, Jurisdiction: "City of Lansing", ItemCount: 12},
			{PrecinctID: 1, Jurisdiction: "", ItemCount: 0},
			{PrecinctID: 2, Jurisdiction: "city of detroit", ItemCount: 12},
			{PrecinctID: 4, Jurisdiction: "Township of Ada", ItemCount: 30},
		}
	}

	tests := []struct {
		order SortOrder
		want  []int
	}{
		{SortByPrecinct, []int{1, 2, 3, 4}},
		{SortByItems, []int{4, 2, 3, 1}},
		{SortByJurisdiction, []int{2, 3, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			got := results()
			sortResults(got, tt.order)
			for i, id := range tt.want {
				if got[i].PrecinctID != id {
					t.Fatalf("position %d = precinct %d, want %d (%+v)", i, got[i].PrecinctID, id, got)
				}
			}
		})
	}
}

func TestSortOrder_Valid(t *testing.T) {
	for _, o := range []SortOrder{SortByPrecinct, SortByItems, SortByJurisdiction} {
		if !o.valid() {
			t.Errorf("%s not valid", o)
		}
	}
	if SortOrder("county").valid() {
		t.Error("county should not be valid")
	}
}

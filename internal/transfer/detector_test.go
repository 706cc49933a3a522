package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"transitfare/internal/domain"
)

func TestDetect(t *testing.T) {
	itinerary := []string{"X", "Y", "Z"}

	tests := []struct {
		name      string
		itinerary []string
		transfers []domain.Transfer
		want      string
		wantOK    bool
	}{
		{
			name:      "adjacent pair",
			itinerary: itinerary,
			transfers: []domain.Transfer{{Transfer1: "Y", Transfer2: "Z"}},
			want:      "Transfer from Y to Z",
			wantOK:    true,
		},
		{
			name:      "reversed pair keeps canonical order",
			itinerary: itinerary,
			transfers: []domain.Transfer{{Transfer1: "Z", Transfer2: "Y"}},
			want:      "Transfer from Z to Y",
			wantOK:    true,
		},
		{
			name:      "two apart is not a transfer",
			itinerary: itinerary,
			transfers: []domain.Transfer{{Transfer1: "X", Transfer2: "Z"}},
		},
		{
			name:      "first matching transfer wins",
			itinerary: []string{"A", "B", "C", "D"},
			transfers: []domain.Transfer{
				{Transfer1: "A", Transfer2: "D"},
				{Transfer1: "C", Transfer2: "D"},
				{Transfer1: "A", Transfer2: "B"},
			},
			want:   "Transfer from C to D",
			wantOK: true,
		},
		{
			name:      "endpoint missing",
			itinerary: itinerary,
			transfers: []domain.Transfer{{Transfer1: "Y", Transfer2: "Q"}},
		},
		{
			name:      "empty catalog",
			itinerary: itinerary,
		},
		{
			name:      "empty itinerary",
			transfers: []domain.Transfer{{Transfer1: "Y", Transfer2: "Z"}},
		},
		{
			name:      "first occurrence decides adjacency",
			itinerary: []string{"Y", "X", "W", "Z", "Y"},
			transfers: []domain.Transfer{{Transfer1: "Y", Transfer2: "Z"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.itinerary, tt.transfers)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindReturnsLowerIndex(t *testing.T) {
	tr, idx, ok := Find([]string{"P", "Q", "R"}, []domain.Transfer{{Name: "hub", Transfer1: "R", Transfer2: "Q"}})
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "hub", tr.Name)
}

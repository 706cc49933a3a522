package transfer

import (
	"fmt"
	"slices"

	"transitfare/internal/domain"
)

// Detect returns a notice for the first transfer in catalog order whose
// endpoints are adjacent in itinerary, in either order. ok is false when no
// transfer is needed.
func Detect(itinerary []string, transfers []domain.Transfer) (notice string, ok bool) {
	t, _, found := Find(itinerary, transfers)
	if !found {
		return "", false
	}
	return Notice(t), true
}

// Find is Detect returning the matched transfer and the lower of the two
// itinerary indices it occupies.
func Find(itinerary []string, transfers []domain.Transfer) (domain.Transfer, int, bool) {
	for _, t := range transfers {
		i := slices.Index(itinerary, t.Transfer1)
		j := slices.Index(itinerary, t.Transfer2)
		if i < 0 || j < 0 {
			continue
		}
		if i-j == 1 || j-i == 1 {
			return t, min(i, j), true
		}
	}
	return domain.Transfer{}, -1, false
}

// Notice formats t in its canonical endpoint order.
func Notice(t domain.Transfer) string {
	return fmt.Sprintf("Transfer from %s to %s", t.Transfer1, t.Transfer2)
}

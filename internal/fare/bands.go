package fare

// Band is a half-open distance interval [previous Below, Below) priced at Fare.
type Band struct {
	Below float64
	Fare  int
}

// Table maps distance in kilometers to a fare. Bands must be sorted by
// Below; distances at or beyond the last band pay Max.
type Table struct {
	Bands []Band
	Max   int
}

// DefaultTable is the network's fare schedule.
var DefaultTable = Table{
	Bands: []Band{
		{Below: 1, Fare: 5},
		{Below: 5, Fare: 20},
		{Below: 10, Fare: 25},
		{Below: 15, Fare: 30},
		{Below: 20, Fare: 33},
	},
	Max: 38,
}

// Fare returns the fare for distanceKm. A distance equal to a band's
// upper bound belongs to the next band.
func (t Table) Fare(distanceKm float64) int {
	for _, b := range t.Bands {
		if distanceKm < b.Below {
			return b.Fare
		}
	}
	return t.Max
}

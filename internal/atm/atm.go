package atm

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pfrederiksen/atm-watch/internal/geo"
)

// Limit is the amount of a single currency an ATM can currently dispense
type Limit struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// POI is a named point of interest used to compute proximity
type POI struct {
	Name     string    `json:"name"`
	Location geo.Point `json:"location"`
}

// POIDistance is the distance in kilometers from an ATM to a POI
type POIDistance struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// ATM is a single cash machine with the limits for the requested currencies
type ATM struct {
	ID        string        `json:"id"`
	Address   string        `json:"address"`
	Location  geo.Point     `json:"location"`
	Available bool          `json:"available"`
	Limits    []Limit       `json:"limits"`
	POIs      []POIDistance `json:"pois,omitempty"`
}

// BestAmount returns the amount of the first limit. ok is false when the ATM has no limits.
func (a *ATM) BestAmount() (amount decimal.Decimal, ok bool) {
	if len(a.Limits) == 0 {
		return decimal.Zero, false
	}
	return a.Limits[0].Amount, true
}

// NearestDistance returns the distance to the closest POI, or +Inf when no POI is attached
func (a *ATM) NearestDistance() float64 {
	if len(a.POIs) == 0 {
		return math.Inf(1)
	}
	return a.POIs[0].Distance
}

// String implements fmt.Stringer
func (a *ATM) String() string {
	return fmt.Sprintf("%s (%s)", a.ID, a.Address)
}

// Enrich attaches the distance to every POI to each ATM, closest first
func Enrich(atms []*ATM, pois []POI) {
	for _, a := range atms {
		distances := make([]POIDistance, 0, len(pois))
		for _, p := range pois {
			distances = append(distances, POIDistance{
				Name:     p.Name,
				Distance: geo.Distance(a.Location, p.Location),
			})
		}
		sort.SliceStable(distances, func(i, j int) bool {
			return distances[i].Distance < distances[j].Distance
		})
		a.POIs = distances
	}
}

// Sort orders ATMs by descending first-limit amount, then by ascending
// distance to the nearest POI. ATMs without limits sort after every ATM
// that has one; ATMs without POIs sort last among equal amounts.
// Full ties keep their original order.
func Sort(atms []*ATM) {
	sort.SliceStable(atms, func(i, j int) bool {
		return less(atms[i], atms[j])
	})
}

func less(a, b *ATM) bool {
	amountA, okA := a.BestAmount()
	amountB, okB := b.BestAmount()

	if okA != okB {
		return okA
	}
	if okA {
		if c := amountA.Cmp(amountB); c != 0 {
			return c > 0
		}
	}

	return a.NearestDistance() < b.NearestDistance()
}

// Clip returns the ATMs located inside b, preserving order
func Clip(atms []*ATM, b geo.Bounds) ([]*ATM, error) {
	index := geo.NewIndex()
	for _, a := range atms {
		index.Insert(a.Location)
	}

	keys, err := index.Within(b)
	if err != nil {
		return nil, fmt.Errorf("clipping to bounds: %w", err)
	}

	clipped := make([]*ATM, 0, len(keys))
	for i, a := range atms {
		if keys[i] {
			clipped = append(clipped, a)
		}
	}
	return clipped, nil
}

package atm

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/atm-watch/internal/geo"
)

var testPOIs = []POI{
	{Name: "Kremlin", Location: geo.Point{Lat: 55.7520, Lng: 37.6175}},
	{Name: "Belorussky", Location: geo.Point{Lat: 55.7767, Lng: 37.5817}},
	{Name: "Sokol", Location: geo.Point{Lat: 55.8050, Lng: 37.5150}},
}

func usd(amount int64) []Limit {
	return []Limit{{Currency: "USD", Amount: decimal.NewFromInt(amount)}}
}

func TestEnrich_SortsPOIsByDistance(t *testing.T) {
	atms := []*ATM{
		{ID: "tverskaya", Location: geo.Point{Lat: 55.7601, Lng: 37.6186}},
		{ID: "leningradsky", Location: geo.Point{Lat: 55.8052, Lng: 37.5011}},
		{ID: "arbat", Location: geo.Point{Lat: 55.7480, Lng: 37.5920}},
	}

	Enrich(atms, testPOIs)

	for _, a := range atms {
		require.Len(t, a.POIs, len(testPOIs), "ATM %s", a.ID)
		for i := 1; i < len(a.POIs); i++ {
			assert.LessOrEqual(t, a.POIs[i-1].Distance, a.POIs[i].Distance, "ATM %s POIs not sorted", a.ID)
		}
	}

	assert.Equal(t, "Kremlin", atms[0].POIs[0].Name)
	assert.Equal(t, "Sokol", atms[1].POIs[0].Name)
	assert.InDelta(t, geo.Distance(atms[0].Location, testPOIs[0].Location), atms[0].POIs[0].Distance, 1e-12)
}

func TestEnrich_NoPOIs(t *testing.T) {
	atms := []*ATM{{ID: "a", Location: geo.Point{Lat: 55.75, Lng: 37.61}}}

	Enrich(atms, nil)

	assert.Empty(t, atms[0].POIs)
	assert.True(t, math.IsInf(atms[0].NearestDistance(), 1))
}

func TestSort_AmountThenDistance(t *testing.T) {
	atms := []*ATM{
		{ID: "small-near", Limits: usd(500), POIs: []POIDistance{{Name: "x", Distance: 0.1}}},
		{ID: "big-far", Limits: usd(3000), POIs: []POIDistance{{Name: "x", Distance: 9.5}}},
		{ID: "big-near", Limits: usd(3000), POIs: []POIDistance{{Name: "x", Distance: 1.2}}},
		{ID: "mid", Limits: usd(1000), POIs: []POIDistance{{Name: "x", Distance: 3.0}}},
	}

	Sort(atms)

	got := make([]string, len(atms))
	for i, a := range atms {
		got[i] = a.ID
	}
	assert.Equal(t, []string{"big-near", "big-far", "mid", "small-near"}, got)
	assertSorted(t, atms)
}

func TestSort_DecimalAmounts(t *testing.T) {
	atms := []*ATM{
		{ID: "a", Limits: []Limit{{Currency: "EUR", Amount: decimal.RequireFromString("99.5")}}, POIs: []POIDistance{{Distance: 1}}},
		{ID: "b", Limits: []Limit{{Currency: "EUR", Amount: decimal.RequireFromString("100")}}, POIs: []POIDistance{{Distance: 2}}},
	}

	Sort(atms)

	assert.Equal(t, "b", atms[0].ID)
}

func TestSort_MissingLimitsAndPOIsSortLast(t *testing.T) {
	atms := []*ATM{
		{ID: "no-limits", POIs: []POIDistance{{Name: "x", Distance: 0.1}}},
		{ID: "no-pois", Limits: usd(1000)},
		{ID: "full", Limits: usd(1000), POIs: []POIDistance{{Name: "x", Distance: 5}}},
		{ID: "small", Limits: usd(10), POIs: []POIDistance{{Name: "x", Distance: 5}}},
		{ID: "nothing"},
	}

	assert.NotPanics(t, func() { Sort(atms) })

	got := make([]string, len(atms))
	for i, a := range atms {
		got[i] = a.ID
	}
	assert.Equal(t, []string{"full", "no-pois", "small", "no-limits", "nothing"}, got)
}

func TestSort_StableOnFullTie(t *testing.T) {
	atms := []*ATM{
		{ID: "first", Limits: usd(100), POIs: []POIDistance{{Distance: 1}}},
		{ID: "second", Limits: usd(100), POIs: []POIDistance{{Distance: 1}}},
		{ID: "third", Limits: usd(100), POIs: []POIDistance{{Distance: 1}}},
	}

	Sort(atms)

	assert.Equal(t, "first", atms[0].ID)
	assert.Equal(t, "second", atms[1].ID)
	assert.Equal(t, "third", atms[2].ID)
}

func TestEnrichThenSort_Property(t *testing.T) {
	atms := []*ATM{
		{ID: "1", Location: geo.Point{Lat: 55.70, Lng: 37.50}, Limits: usd(2000)},
		{ID: "2", Location: geo.Point{Lat: 55.76, Lng: 37.62}, Limits: usd(2000)},
		{ID: "3", Location: geo.Point{Lat: 55.90, Lng: 37.80}, Limits: usd(4000)},
		{ID: "4", Location: geo.Point{Lat: 55.80, Lng: 37.51}, Limits: usd(100)},
		{ID: "5", Location: geo.Point{Lat: 55.60, Lng: 37.40}, Limits: usd(2000)},
	}

	Enrich(atms, testPOIs)
	Sort(atms)

	assertSorted(t, atms)
	assert.Equal(t, "3", atms[0].ID)
	assert.Equal(t, "2", atms[1].ID)
	assert.Equal(t, "4", atms[len(atms)-1].ID)
}

func TestClip(t *testing.T) {
	atms := []*ATM{
		{ID: "inside-1", Location: geo.Point{Lat: 55.76, Lng: 37.62}},
		{ID: "outside", Location: geo.Point{Lat: 59.93, Lng: 30.33}},
		{ID: "inside-2", Location: geo.Point{Lat: 55.80, Lng: 37.50}},
	}

	clipped, err := Clip(atms, moscowBounds)
	require.NoError(t, err)
	require.Len(t, clipped, 2)
	assert.Equal(t, "inside-1", clipped[0].ID)
	assert.Equal(t, "inside-2", clipped[1].ID)
}

func TestClip_InvalidBounds(t *testing.T) {
	_, err := Clip([]*ATM{{ID: "a"}}, geo.Bounds{})
	assert.Error(t, err)
}

func TestATM_String(t *testing.T) {
	a := &ATM{ID: "000123", Address: "ул. Тверская, 7"}
	assert.Equal(t, "000123 (ул. Тверская, 7)", a.String())
}

// assertSorted checks the amount-then-distance ordering for adjacent pairs
func assertSorted(t *testing.T, atms []*ATM) {
	t.Helper()
	for i := 1; i < len(atms); i++ {
		a, b := atms[i-1], atms[i]
		amountA, _ := a.BestAmount()
		amountB, _ := b.BestAmount()
		assert.True(t, amountA.GreaterThanOrEqual(amountB), "%s before %s: amount %s < %s", a.ID, b.ID, amountA, amountB)
		if amountA.Equal(amountB) {
			assert.LessOrEqual(t, a.NearestDistance(), b.NearestDistance(), "%s before %s", a.ID, b.ID)
		}
	}
}

package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	moscow = Point{Lat: 55.7558, Lng: 37.6173}
	spb    = Point{Lat: 59.9343, Lng: 30.3351}
	lyon   = Point{Lat: 45.7597, Lng: 4.8422}
	paris  = Point{Lat: 48.8567, Lng: 2.3508}
)

func TestDistance_SamePoint(t *testing.T) {
	for _, p := range []Point{moscow, spb, {Lat: 0, Lng: 0}, {Lat: -33.8688, Lng: 151.2093}} {
		assert.Equal(t, 0.0, Distance(p, p))
	}
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]Point{
		{moscow, spb},
		{lyon, paris},
		{{Lat: 40.7128, Lng: -74.0060}, {Lat: 51.5074, Lng: -0.1278}},
	}
	for _, p := range pairs {
		assert.InDelta(t, Distance(p[0], p[1]), Distance(p[1], p[0]), 1e-9)
	}
}

func TestDistance_ReferenceValues(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{
			name: "lyon to paris",
			a:    lyon,
			b:    paris,
			want: 392.2172595594006,
		},
		{
			name: "quarter meridian",
			a:    Point{Lat: 0, Lng: 0},
			b:    Point{Lat: 90, Lng: 0},
			want: EarthRadius * 3.141592653589793 / 2,
		},
		{
			name: "one degree of longitude on the equator",
			a:    Point{Lat: 0, Lng: 0},
			b:    Point{Lat: 0, Lng: 1},
			want: EarthRadius * 3.141592653589793 / 180,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), 1e-6)
		})
	}
}

func TestBounds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		bounds  Bounds
		wantErr bool
	}{
		{
			name:   "valid",
			bounds: Bounds{BottomLeft: Point{55.5, 37.3}, TopRight: Point{56.0, 37.9}},
		},
		{
			name:    "inverted",
			bounds:  Bounds{BottomLeft: Point{56.0, 37.9}, TopRight: Point{55.5, 37.3}},
			wantErr: true,
		},
		{
			name:    "zero height",
			bounds:  Bounds{BottomLeft: Point{55.5, 37.3}, TopRight: Point{55.5, 37.9}},
			wantErr: true,
		},
		{
			name:    "latitude out of range",
			bounds:  Bounds{BottomLeft: Point{-91, 0}, TopRight: Point{10, 10}},
			wantErr: true,
		},
		{
			name:    "longitude out of range",
			bounds:  Bounds{BottomLeft: Point{0, 0}, TopRight: Point{10, 181}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIndex_Within(t *testing.T) {
	index := NewIndex()
	inside := index.Insert(Point{55.75, 37.62})
	edge := index.Insert(Point{55.5, 37.3})
	outside := index.Insert(spb)
	assert.Equal(t, 3, index.Size())

	keys, err := index.Within(Bounds{BottomLeft: Point{55.5, 37.3}, TopRight: Point{56.0, 37.9}})
	require.NoError(t, err)

	assert.True(t, keys[inside])
	assert.True(t, keys[edge])
	assert.False(t, keys[outside])
	assert.Len(t, keys, 2)
}

func TestIndex_WithinInvalidBounds(t *testing.T) {
	index := NewIndex()
	index.Insert(moscow)

	_, err := index.Within(Bounds{BottomLeft: spb, TopRight: moscow})
	assert.Error(t, err)
}

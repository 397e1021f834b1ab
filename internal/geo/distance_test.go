package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	crystalLat = 46.932517
	crystalLon = -121.48067
)

func TestMiles(t *testing.T) {
	// Same point.
	assert.InDelta(t, 0, Miles(crystalLat, crystalLon, crystalLat, crystalLon), 0.001)

	// One degree of latitude is roughly 69 miles.
	d := Miles(46, -121, 47, -121)
	assert.InDelta(t, 69, d, 1)

	// Crystal base to Seattle is roughly 60-70 miles.
	d = Miles(crystalLat, crystalLon, 47.6062, -122.3321)
	assert.Greater(t, d, 50.0)
	assert.Less(t, d, 80.0)
}

func TestWithinRadius(t *testing.T) {
	// A station ~0.1 miles away is inside a 40-mile radius.
	nearLat := crystalLat + 0.1/69.0
	assert.True(t, WithinRadius(crystalLat, crystalLon, nearLat, crystalLon, 40))

	// A station ~200 miles away is outside.
	farLat := crystalLat + 200.0/69.0
	assert.False(t, WithinRadius(crystalLat, crystalLon, farLat, crystalLon, 40))
}

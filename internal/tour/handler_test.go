package tour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLatLng(t *testing.T) {
	t.Parallel()

	lat, lng, err := parseLatLng("34.111745,-118.113491")
	require.NoError(t, err)
	assert.InDelta(t, 34.111745, lat, 1e-9)
	assert.InDelta(t, -118.113491, lng, 1e-9)

	lat, lng, err = parseLatLng(" 40.7 , -74.0 ")
	require.NoError(t, err)
	assert.InDelta(t, 40.7, lat, 1e-9)
	assert.InDelta(t, -74.0, lng, 1e-9)
}

func TestParseLatLng_Malformed(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"34.1",
		"34.1,-118.1,extra",
		"abc,-118.1",
		"34.1,xyz",
		"91,-118.1",
		"-91,-118.1",
		"34.1,181",
		"34.1,-181",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, _, err := parseLatLng(raw)
			assert.Error(t, err)
		})
	}
}

func TestAngularRadius(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 200/3963.2, angularRadius(200, "mi"), 1e-12)
	assert.InDelta(t, 200/6378.1, angularRadius(200, "km"), 1e-12)
	// Anything else reads as kilometers
	assert.InDelta(t, 200/6378.1, angularRadius(200, "furlongs"), 1e-12)
}

func TestDistanceMultiplier(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.000621371, distanceMultiplier("mi"), 1e-12)
	assert.InDelta(t, 0.001, distanceMultiplier("km"), 1e-12)
	assert.InDelta(t, 0.001, distanceMultiplier(""), 1e-12)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"The Forest Hiker", "the-forest-hiker"},
		{"  Sea   Explorer  ", "sea-explorer"},
		{"Snow Adventurer", "snow-adventurer"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), tt.in)
	}
}

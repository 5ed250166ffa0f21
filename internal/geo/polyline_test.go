package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrack_Valid(t *testing.T) {
	input := "[[2.35,48.85],[2.36,48.86,35],[2.37,48.87]]"
	track, err := ParseTrack([]byte(input))

	require.NoError(t, err)
	require.Len(t, track, 3)
	assert.Equal(t, 2.35, track[0].Longitude)
	assert.Equal(t, 48.85, track[0].Latitude)
	assert.Equal(t, 35.0, track[1].Altitude)
	assert.Equal(t, 0.0, track[2].Altitude)
}

func TestParseTrack_InvalidJSON(t *testing.T) {
	_, err := ParseTrack([]byte("not valid json"))
	require.Error(t, err)
}

func TestParseTrack_Empty(t *testing.T) {
	_, err := ParseTrack([]byte("[]"))
	require.Error(t, err)
}

func TestParseTrack_InsufficientCoordinates(t *testing.T) {
	_, err := ParseTrack([]byte("[[100],[20,30]]"))
	require.Error(t, err)
}

func TestParseTrack_OutOfRange(t *testing.T) {
	_, err := ParseTrack([]byte("[[200,30]]"))
	require.ErrorIs(t, err, ErrInvalidCoordinates)
}

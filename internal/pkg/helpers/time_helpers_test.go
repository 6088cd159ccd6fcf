package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseApplicationDateFormats(t *testing.T) {
	rfc, err := ParseApplicationDate("2026-09-15T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 9, int(rfc.Month()))

	compact, err := ParseApplicationDate("2026-09-15 09:00")
	require.NoError(t, err)
	assert.Equal(t, 9, compact.Hour())

	dateOnly, err := ParseApplicationDate("2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, 15, dateOnly.Day())
}

func TestParseApplicationDateRejectsUnknownFormat(t *testing.T) {
	_, err := ParseApplicationDate("15/09/2026")
	assert.Error(t, err)
}

func TestParseDurationFallsBackToDefault(t *testing.T) {
	assert.Equal(t, 2*time.Minute, ParseDuration("2m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("not-a-duration", time.Hour))
}

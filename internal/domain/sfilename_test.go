package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSFileName(t *testing.T) {
	cases := []struct {
		name string
		want time.Time
	}{
		{"01-1242-20L.S200002", time.Date(2000, 2, 1, 12, 42, 20, 0, time.UTC)},
		{"03-2002-17L.S199606", time.Date(1996, 6, 3, 20, 2, 17, 0, time.UTC)},
		{"21-2359-59D.S199610", time.Date(1996, 10, 21, 23, 59, 59, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts, err := ParseSFileName(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ts)
		})
	}
}

func TestParseSFileName_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"no extension", "01-1242-20L"},
		{"wrong separator", "01-1242-20L.X200002"},
		{"short base", "01-1242.S200002"},
		{"short extension", "01-1242-20L.S2000"},
		{"non-numeric day", "xx-1242-20L.S200002"},
		{"impossible date", "31-1242-20L.S200002"}, // Feb 31
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSFileName(tc.input)
			assert.Error(t, err)
		})
	}
}

func TestEventResourceID_StablePerFile(t *testing.T) {
	ts, err := ParseSFileName("01-1242-20L.S200002")
	require.NoError(t, err)
	assert.Equal(t, ResourceID("2000-02-01T12-42-20"), eventResourceID(ts))

	again, err := ParseSFileName("01-1242-20L.S200002")
	require.NoError(t, err)
	assert.Equal(t, eventResourceID(ts), eventResourceID(again))
}

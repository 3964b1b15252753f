package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(1990, time.January, 1)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"1990-01-01"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, d.Time, back.Time)
}

func TestDateUnmarshalInvalid(t *testing.T) {
	var d Date
	require.Error(t, json.Unmarshal([]byte(`"01/01/1990"`), &d))
	require.Error(t, json.Unmarshal([]byte(`"1990-01-01garbage"`), &d))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("1990-01-01"))
	require.Equal(t, 1990, d.Year())

	require.NoError(t, d.Scan([]byte("2000-12-31")))
	require.Equal(t, time.December, d.Month())

	require.NoError(t, d.Scan(time.Date(2024, time.June, 5, 13, 45, 0, 0, time.Local)))
	require.Equal(t, NewDate(2024, time.June, 5).Time, d.Time)

	// Drivers hand back a time component on DATE columns; only the
	// date prefix counts.
	require.NoError(t, d.Scan("1985-03-02T00:00:00Z"))
	require.Equal(t, NewDate(1985, time.March, 2).Time, d.Time)

	require.Error(t, d.Scan(42))
}

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want Delay
	}{
		{in: -5, want: MinDelay},
		{in: 0, want: MinDelay},
		{in: 9, want: MinDelay},
		{in: 10, want: 10},
		{in: 45, want: 45},
		{in: 300, want: 300},
		{in: 301, want: MaxDelay},
		{in: 10000, want: MaxDelay},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampDelay(tt.in), "ClampDelay(%d)", tt.in)
	}
}

func TestParseDelay(t *testing.T) {
	t.Parallel()

	d, err := ParseDelay(" 120 ")
	require.NoError(t, err)
	assert.Equal(t, Delay(120), d)

	d, err = ParseDelay("59.9")
	require.NoError(t, err)
	assert.Equal(t, Delay(59), d, "slider values truncate to whole seconds")

	d, err = ParseDelay("9")
	require.NoError(t, err)
	assert.Equal(t, MinDelay, d)

	d, err = ParseDelay("301")
	require.NoError(t, err)
	assert.Equal(t, MaxDelay, d)

	for _, huge := range []string{"1e300", "9e18", "300.5"} {
		d, err = ParseDelay(huge)
		require.NoError(t, err)
		assert.Equal(t, MaxDelay, d, "ParseDelay(%q)", huge)
	}

	for _, tiny := range []string{"-1e300", "9.99"} {
		d, err = ParseDelay(tiny)
		require.NoError(t, err)
		assert.Equal(t, MinDelay, d, "ParseDelay(%q)", tiny)
	}

	for _, bad := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		_, err = ParseDelay(bad)
		require.Error(t, err, "ParseDelay(%q)", bad)
	}

	_, err = ParseDelay("soon")
	require.Error(t, err)

	_, err = ParseDelay("")
	require.Error(t, err)
}

func TestDelayValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, MinDelay.Validate())
	assert.NoError(t, MaxDelay.Validate())
	assert.ErrorIs(t, Delay(9).Validate(), ErrDelayOutOfRange)
	assert.ErrorIs(t, Delay(301).Validate(), ErrDelayOutOfRange)
	assert.Equal(t, 90*time.Second, Delay(90).Duration())
}

func TestPayloadDelay(t *testing.T) {
	t.Parallel()

	_, ok := Payload{}.Delay()
	assert.False(t, ok)

	d, ok := Payload{ScheduledSeconds: 45}.Delay()
	assert.True(t, ok)
	assert.Equal(t, Delay(45), d)

	d, ok = Payload{ScheduledSeconds: 900}.Delay()
	assert.True(t, ok)
	assert.Equal(t, MaxDelay, d)
}

func TestPayloadJSONKey(t *testing.T) {
	t.Parallel()

	var p Payload
	require.NoError(t, json.Unmarshal([]byte(`{"scheduledSeconds":120}`), &p))
	assert.Equal(t, 120, p.ScheduledSeconds)
}

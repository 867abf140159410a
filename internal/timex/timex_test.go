package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", in: `"5s"`, want: 5 * time.Second},
		{name: "nanoseconds", in: `1000`, want: 1000},
		{name: "bad string", in: `"soon"`, wantErr: true},
		{name: "bool", in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}

func TestFormatParse_RoundTripAndOrder(t *testing.T) {
	a := time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.FixedZone("x", 3600))
	b := a.Add(time.Millisecond)

	sa, sb := Format(a), Format(b)
	assert.Equal(t, "2024-01-02T02:04:05.123456Z", sa)
	assert.Less(t, sa, sb)

	got, err := Parse(sa)
	require.NoError(t, err)
	assert.True(t, got.Equal(Normalize(a)))

	_, err = Parse("yesterday")
	assert.Error(t, err)
}

func TestNext_StrictlyIncreasing(t *testing.T) {
	prev := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, prev.Add(time.Microsecond), Next(prev, prev))
	assert.Equal(t, prev.Add(time.Microsecond), Next(prev, prev.Add(-time.Hour)))
	assert.Equal(t, prev.Add(time.Second), Next(prev, prev.Add(time.Second)))
}

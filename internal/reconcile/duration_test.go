package reconcile

import (
	"math/rand"
	"testing"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1:30:00", 1.5},
		{"2:00:00", 2.0},
		{"0:00:00", 0},
		{"0:07:00", 0},
		{"0:07:29", 0},
		{"0:07:30", 0.25}, // exactly half a quarter rounds away from zero
		{"0:08:00", 0.25},
		{"0:22:29", 0.25},
		{"0:22:30", 0.5},
		{"0:52:00", 0.75},
		{"10:52:30", 11.0},
		{" 3:15:00 ", 3.25},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.in)
		require.NoError(t, err, "input=%q", tc.in)
		assert.Equal(t, tc.want, got, "input=%q", tc.in)
	}
}

func TestParseDuration_Malformed(t *testing.T) {
	for _, in := range []string{"", "1:30", "1:30:00:00", "a:b:c", "1::00", "-1:00:00", "1:xx:00", "NaN:00:00"} {
		_, err := ParseDuration(in)
		require.Error(t, err, "input=%q", in)
		assert.ErrorIs(t, err, domain.ErrMalformedDuration, "input=%q", in)
		assert.ErrorIs(t, err, domain.ErrParse, "input=%q", in)
	}
}

func TestRoundQuarterHour_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 500; trial++ {
		x := rng.Float64() * 24
		once := RoundQuarterHour(x)
		assert.Equal(t, once, RoundQuarterHour(once), "x=%f", x)
	}
}

func TestRoundQuarterHour_Values(t *testing.T) {
	assert.Equal(t, 1.0, RoundQuarterHour(1.1))
	assert.Equal(t, 1.25, RoundQuarterHour(1.125))
	assert.Equal(t, 1.75, RoundQuarterHour(1.8))
	assert.Equal(t, 0.0, RoundQuarterHour(0.1))
}

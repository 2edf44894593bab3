package reconcile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/tasksync/internal/domain"
)

// ParseDuration converts an "H:MM:SS" string into hours rounded to the
// nearest quarter hour.
func ParseDuration(text string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q has %d components, want 3", domain.ErrMalformedDuration, text, len(parts))
	}

	var hms [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, fmt.Errorf("%w: %q component %d is not a non-negative number", domain.ErrMalformedDuration, text, i+1)
		}
		hms[i] = v
	}

	minutes := hms[0]*60 + hms[1] + hms[2]/60
	return RoundQuarterHourMinutes(minutes), nil
}

// RoundQuarterHourMinutes rounds a minute count to the nearest 15 minutes
// (half away from zero) and returns the result in hours.
func RoundQuarterHourMinutes(minutes float64) float64 {
	return math.Round(minutes/15) * 15 / 60
}

// RoundQuarterHour rounds an hour value to the nearest quarter hour.
func RoundQuarterHour(hours float64) float64 {
	return RoundQuarterHourMinutes(hours * 60)
}

package rentalsvc

import (
	"math"
	"time"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
)

// Quote computes the expiry and total price for a rental request.
// basePrice is the manga's daily rate; hours are billed at basePrice/24.
// The total is rounded half-up to 2 decimals on the scaled integer so the
// stored value is a clean currency amount.
func Quote(basePrice float64, value int, unit model.DurationUnit, now time.Time) (time.Time, float64, error) {
	if value <= 0 {
		return time.Time{}, 0, makeErr(ErrInvalidDuration)
	}

	var expiresAt time.Time
	var total float64
	switch unit {
	case model.UnitDays:
		expiresAt = now.Add(time.Duration(value) * 24 * time.Hour)
		total = basePrice * float64(value)
	case model.UnitHours:
		expiresAt = now.Add(time.Duration(value) * time.Hour)
		total = (basePrice / 24) * float64(value)
	default:
		return time.Time{}, 0, makeErr(ErrInvalidDuration)
	}

	return expiresAt, math.Round(total*100) / 100, nil
}

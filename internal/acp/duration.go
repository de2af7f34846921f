package acp

import (
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

// avgSpeedKmh is the nominal average speed used when estimating a calendar
// duration for rides without a tabulated limit. It is deliberately faster
// than the 15 km/h rule-limit speed: published calendar blocks reflect how
// long a ride plausibly takes, not the latest legal finish.
const avgSpeedKmh = 20.0

// EstimateDuration derives a whole-ride duration for calendar feeds.
//
// Tabulated brevet distances and flèches use the official limit; everything
// else divides by avgSpeedKmh and rounds up to the next 15 minutes.
func EstimateDuration(eventType domain.EventType, distanceKm float64) (time.Duration, error) {
	if distanceKm <= 0 {
		return 0, ErrInvalidDistance
	}
	if eventType == domain.EventTypeFleche {
		return time.Duration(flecheHours * float64(time.Hour)), nil
	}
	if eventType == domain.EventTypeBrevet && distanceKm >= brmTable[0].DistanceKm {
		hrs, err := CloseHours(eventType, distanceKm)
		if err != nil {
			return 0, err
		}
		return time.Duration(hrs * float64(time.Hour)), nil
	}
	hrs := distanceKm / avgSpeedKmh
	d := time.Duration(hrs * float64(time.Hour))
	if rem := d % (15 * time.Minute); rem != 0 {
		d += 15*time.Minute - rem
	}
	return d, nil
}

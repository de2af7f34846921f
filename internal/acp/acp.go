// Package acp computes official control opening/closing times and overall
// time limits for randonneuring events under Audax Club Parisien BRM rules.
// All functions are pure; distances are kilometres, durations are hours.
package acp

import (
	"errors"
	"math"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

// ErrInvalidDistance is returned for zero, negative, or otherwise
// nonsensical distances.
var ErrInvalidDistance = errors.New("invalid distance")

// brmLimit is one row of the ACP total-time-limit table.
type brmLimit struct {
	DistanceKm float64
	CloseHours float64
}

// brmTable holds the official BRM total time limits, ascending by distance.
// A non-tabulated brevet distance takes the limit of the bracket below it
// (floor policy, never interpolated).
var brmTable = []brmLimit{
	{200, 13.5},
	{300, 20},
	{400, 27},
	{600, 40},
	{1000, 75},
	{1200, 90},
}

const (
	// minSpeedKmh is the nominal BRM minimum speed. It extrapolates limits
	// beyond the table and bounds sub-brevet closing times.
	minSpeedKmh = 15.0

	// Maximum speed bounds for control opening times. ACP uses a faster
	// bound on short brevets.
	maxSpeedShortKmh = 32.0
	maxSpeedLongKmh  = 30.0

	// flecheHours is the fixed team-ride duration, distance notwithstanding.
	flecheHours = 24.0

	// startControlCloseHours is the window riders have to leave the start.
	startControlCloseHours = 1.0
)

// CloseHours returns the overall time limit in hours for an event of the
// given type and distance.
func CloseHours(eventType domain.EventType, distanceKm float64) (float64, error) {
	if distanceKm <= 0 {
		return 0, ErrInvalidDistance
	}
	if eventType == domain.EventTypeFleche {
		return flecheHours, nil
	}
	if eventType == domain.EventTypeBrevet && distanceKm >= brmTable[0].DistanceKm {
		last := brmTable[len(brmTable)-1]
		if distanceKm > last.DistanceKm {
			// Beyond the table: extrapolate at minimum speed, whole hours.
			return math.Ceil(distanceKm / minSpeedKmh), nil
		}
		limit := brmTable[0].CloseHours
		for _, row := range brmTable {
			if distanceKm >= row.DistanceKm {
				limit = row.CloseHours
			}
		}
		return limit, nil
	}
	// Populaires, permanents, and sub-200 distances ride against the
	// nominal minimum speed.
	return distanceKm / minSpeedKmh, nil
}

// AllowableTime decomposes the overall limit into whole hours + minutes,
// the form printed on control cards.
func AllowableTime(eventType domain.EventType, distanceKm float64) (hours, minutes int, err error) {
	total, err := CloseHours(eventType, distanceKm)
	if err != nil {
		return 0, 0, err
	}
	hours = int(math.Floor(total))
	minutes = int(math.Round((total - float64(hours)) * 60))
	if minutes == 60 {
		hours++
		minutes = 0
	}
	return hours, minutes, nil
}

// ControlWindow returns a control's opening and closing offsets, in hours
// after the start, for a control at cumulativeKm on a ride of totalKm.
//
// The opening time assumes the maximum speed bound; the closing time assumes
// the minimum speed implied by the ride's overall limit, so the finish
// control closes exactly at CloseHours(totalKm).
func ControlWindow(eventType domain.EventType, totalKm, cumulativeKm float64) (openHours, closeHours float64, err error) {
	if totalKm <= 0 || cumulativeKm < 0 || cumulativeKm > totalKm {
		return 0, 0, ErrInvalidDistance
	}
	limit, err := CloseHours(eventType, totalKm)
	if err != nil {
		return 0, 0, err
	}
	if cumulativeKm == 0 {
		// Riders must clear the start control within a fixed window.
		return 0, startControlCloseHours, nil
	}
	impliedMinSpeed := totalKm / limit
	openHours = cumulativeKm / maxSpeed(totalKm)
	closeHours = cumulativeKm / impliedMinSpeed
	return openHours, closeHours, nil
}

func maxSpeed(totalKm float64) float64 {
	if totalKm < 400 {
		return maxSpeedShortKmh
	}
	return maxSpeedLongKmh
}

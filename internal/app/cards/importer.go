package cards

import (
	"context"
	"math"
	"strings"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/routeplanner"
)

// ImportControls pulls the course points for a planner route and keeps only
// the ones flagged as controls, converted to route kilometers.
func ImportControls(ctx context.Context, client routeplanner.Client, routeRef string) ([]domain.Control, error) {
	points, err := client.CoursePoints(ctx, routeRef)
	if err != nil {
		return nil, err
	}
	controls := make([]domain.Control, 0, len(points))
	for _, p := range points {
		if !strings.EqualFold(p.Type, "Control") {
			continue
		}
		controls = append(controls, domain.Control{
			Name:       cleanImportedName(p.Name),
			DistanceKm: roundKm(p.DistanceMeters / 1000.0),
		})
	}
	return controls, nil
}

// roundKm keeps imported distances at card precision (two decimals).
func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

package routeplanner

import (
	"context"
	"errors"
)

var ErrRouteNotFound = errors.New("planner route not found")

// CoursePoint is one published point on an external route-planning service's
// course. Distances arrive in metres.
type CoursePoint struct {
	Name           string
	Type           string
	DistanceMeters float64
}

// Client reads public course data from the route-planning service.
type Client interface {
	CoursePoints(ctx context.Context, routeRef string) ([]CoursePoint, error)
}

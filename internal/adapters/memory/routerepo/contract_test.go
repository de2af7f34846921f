package routerepo

import (
	"testing"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/contracttest"
	routeport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/routerepo"
)

func TestContract_MemoryRouteRepo(t *testing.T) {
	contracttest.RunRouteRepo(t, func(t *testing.T) (routeport.Repository, contracttest.CleanupFunc) {
		t.Helper()
		return NewRepo(), nil
	})
}

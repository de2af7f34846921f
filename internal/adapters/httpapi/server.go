// Package httpapi is the HTTP adapter: route wiring, request decoding, and
// mapping app-layer outcomes onto the shared JSON envelope.
package httpapi

import (
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/calendar"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/lifecycle"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/results"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/riders"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/registrationrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/riderrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/routerepo"
)

// Server holds the services and repositories the handlers delegate to.
type Server struct {
	Lifecycle *lifecycle.Service
	Results   *results.Service
	Calendar  *calendar.Service
	Riders    *riders.Service

	Events        eventrepo.Repository
	Routes        routerepo.Repository
	Chapters      chapterrepo.Repository
	Registrations registrationrepo.Repository
	RiderRepo     riderrepo.Repository

	// TriggerSecret authenticates the scheduler's sweep calls. Empty means
	// the trigger endpoint is unconfigured and refuses to run.
	TriggerSecret string

	// ExtraBlankCards is the number of extra blank sheets per card print run.
	ExtraBlankCards int
}

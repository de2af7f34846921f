package eventrepo

import (
	"testing"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/contracttest"
	pgchapters "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres/chapterrepo"
	pgriders "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres/riderrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres/testutil"
	eventport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
)

func TestContract_PostgresEventRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunEventRepo(t, func(t *testing.T) (eventport.Repository, contracttest.Deps, contracttest.CleanupFunc) {
		t.Helper()
		return NewRepo(pool), contracttest.Deps{
			Chapters: pgchapters.NewRepo(pool),
			Riders:   pgriders.NewRepo(pool),
		}, nil
	})
}

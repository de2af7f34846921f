package chapterrepo

import (
	"testing"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/contracttest"
	chapterport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
)

func TestContract_MemoryChapterRepo(t *testing.T) {
	contracttest.RunChapterRepo(t, func(t *testing.T) (chapterport.Repository, contracttest.CleanupFunc) {
		t.Helper()
		return NewRepo(), nil
	})
}

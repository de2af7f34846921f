package batch_test

import (
	"errors"
	"testing"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/batch"
)

func TestMap_PartialFailureContinues(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	res := batch.Map([]int{1, 2, 3, 4}, func(n int) error {
		if n%2 == 0 {
			return boom
		}
		return nil
	})

	if len(res.Succeeded) != 2 || res.Succeeded[0] != 1 || res.Succeeded[1] != 3 {
		t.Fatalf("succeeded=%v", res.Succeeded)
	}
	if len(res.Failed) != 2 || res.Failed[0].Item != 2 || !errors.Is(res.Failed[0].Err, boom) {
		t.Fatalf("failed=%v", res.Failed)
	}
	if res.Ok() {
		t.Fatalf("expected Ok()=false")
	}
	if msgs := res.Errors(); len(msgs) != 2 || msgs[0] != "boom" {
		t.Fatalf("errors=%v", msgs)
	}
}

func TestMap_AllSucceed(t *testing.T) {
	t.Parallel()

	res := batch.Map([]string{"a", "b"}, func(string) error { return nil })
	if !res.Ok() || len(res.Succeeded) != 2 || res.Errors() != nil {
		t.Fatalf("res=%+v", res)
	}
}

func TestMap_Empty(t *testing.T) {
	t.Parallel()

	res := batch.Map(nil, func(int) error { return nil })
	if !res.Ok() || len(res.Succeeded) != 0 {
		t.Fatalf("res=%+v", res)
	}
}

package exception

import (
	"errors"
	"fmt"
	"testing"
)

var (
	errA = New("A failed")
	errB = New("B failed")
)

func Test_apply_keeps_identity(t *testing.T) {
	e := errA.Apply("at 3").Apply(42)
	if e.Error() != "A failed at 3 42" {
		t.Fatalf("msg=%q", e.Error())
	}
	if !errors.Is(e, errA) {
		t.Fatalf("applied error lost its origin")
	}
	if errors.Is(e, errB) {
		t.Fatalf("applied error matches unrelated exception")
	}
	wrapped := fmt.Errorf("outer: %w", e)
	if !errors.Is(wrapped, errA) {
		t.Fatalf("wrapped error lost its origin")
	}
}

func Test_catch(t *testing.T) {
	var err error
	if Catch(nil, &err) {
		t.Fatalf("nothing to catch")
	}
	if !Catch("boom", &err) || err == nil || err.Error() != "boom" {
		t.Fatalf("err=%v", err)
	}
	err = errA
	if !Catch(nil, &err) {
		t.Fatalf("existing error not reported")
	}
}

func Test_spawn(t *testing.T) {
	var err error
	if Spawn(&err, "x") != nil {
		t.Fatalf("spawned from nil")
	}
	err = errB
	if e := Spawn(&err, "load %s", "cfg"); e == nil || err != e {
		t.Fatalf("err=%v e=%v", err, e)
	}
}

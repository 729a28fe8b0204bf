package audit

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/multierr"
)

func TestFanout_WritesEverySink(t *testing.T) {
	errA, errB := errors.New("a down"), errors.New("b down")
	ok := &memSink{}
	f := Fanout{&memSink{err: errA}, nil, ok, &memSink{err: errB}}

	err := f.Write(context.Background(), Event{Action: ActionReload})

	if len(ok.events) != 1 {
		t.Errorf("healthy sink got %d events", len(ok.events))
	}
	if errs := multierr.Errors(err); len(errs) != 2 || !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("err = %v", err)
	}
}

func TestFanout_Empty(t *testing.T) {
	if err := (Fanout{}).Write(context.Background(), Event{}); err != nil {
		t.Errorf("err = %v", err)
	}
}

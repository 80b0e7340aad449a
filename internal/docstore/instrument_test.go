package docstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordedOp struct {
	operation  string
	collection string
	outcome    string
}

type recordingObserver struct {
	ops []recordedOp
}

func (o *recordingObserver) ObserveStoreOperation(operation, collection string, _ time.Duration, err error) {
	o.ops = append(o.ops, recordedOp{operation, collection, Outcome(err)})
}

func TestInstrument_ReportsOutcomes(t *testing.T) {
	obs := &recordingObserver{}
	s := Instrument(newSQLiteTestStore(t), obs)
	ctx := context.Background()

	_ = s.Create(ctx, testCollection, "R1", Document{"rollNo": "R1"})
	_ = s.Create(ctx, testCollection, "R1", Document{"rollNo": "R1"})
	_, _ = s.Get(ctx, testCollection, "missing")
	_, _ = s.Scan(ctx, testCollection)

	want := []recordedOp{
		{OpCreate, testCollection, "ok"},
		{OpCreate, testCollection, "conflict"},
		{OpGet, testCollection, "not_found"},
		{OpScan, testCollection, "ok"},
	}
	if len(obs.ops) != len(want) {
		t.Fatalf("recorded %d operations, want %d: %v", len(obs.ops), len(want), obs.ops)
	}
	for i := range want {
		if obs.ops[i] != want[i] {
			t.Errorf("op %d = %+v, want %+v", i, obs.ops[i], want[i])
		}
	}
}

func TestInstrument_NilObserver(t *testing.T) {
	base := newSQLiteTestStore(t)
	if got := Instrument(base, nil); got != base {
		t.Error("nil observer should return the store unchanged")
	}
}

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		"ok":        nil,
		"not_found": ErrNotFound,
		"conflict":  &ConstraintError{Collection: "c", Field: "regNo", Value: "x"},
		"error":     errors.New("boom"),
	}
	for want, err := range cases {
		if got := Outcome(err); got != want {
			t.Errorf("Outcome(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestCompact(t *testing.T) {
	doc := Compact(Document{"a": "1", "b": "", "c": "3"})
	if len(doc) != 2 || doc["a"] != "1" || doc["c"] != "3" {
		t.Errorf("Compact = %v", doc)
	}
}

func TestValidField(t *testing.T) {
	for _, f := range []string{"rollNo", "puc_total", "a1"} {
		if !ValidField(f) {
			t.Errorf("ValidField(%q) = false", f)
		}
	}
	for _, f := range []string{"", "1abc", "roll.no", "x'--"} {
		if ValidField(f) {
			t.Errorf("ValidField(%q) = true", f)
		}
	}
}

package docstore

import (
	"context"
	"errors"
	"testing"
)

const testCollection = "students"

var testConstraints = []UniqueConstraint{{Collection: testCollection, Field: "regNo"}}

// runContractTests exercises the behaviour every driver must share.
// newStore must return an empty store with testConstraints registered.
func runContractTests(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		err := s.Create(ctx, testCollection, "R100", Document{
			"rollNo":       "R100",
			"studentName":  "Asha Rao",
			"classSection": "10A",
			"email":        "",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		doc, err := s.Get(ctx, testCollection, "R100")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if doc["studentName"] != "Asha Rao" || doc["classSection"] != "10A" {
			t.Errorf("unexpected document %v", doc)
		}
		if _, ok := doc["email"]; ok {
			t.Errorf("empty field was persisted: %v", doc)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), testCollection, "nope")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateExistingIDFails", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		mustCreate(t, s, "R1", Document{"rollNo": "R1", "studentName": "First"})
		err := s.Create(ctx, testCollection, "R1", Document{"rollNo": "R1", "studentName": "Second"})

		var ce *ConstraintError
		if !errors.As(err, &ce) {
			t.Fatalf("expected ConstraintError, got %v", err)
		}
		if ce.Field != "" || ce.Value != "R1" {
			t.Errorf("unexpected constraint error %+v", ce)
		}
		if !errors.Is(err, ErrAlreadyExists) {
			t.Errorf("expected errors.Is(err, ErrAlreadyExists)")
		}

		doc, _ := s.Get(ctx, testCollection, "R1")
		if doc["studentName"] != "First" {
			t.Errorf("existing document was overwritten: %v", doc)
		}
	})

	t.Run("IDCollisionReportedBeforeUniqueField", func(t *testing.T) {
		s := newStore(t)
		mustCreate(t, s, "R1", Document{"rollNo": "R1", "regNo": "G1"})

		err := s.Create(context.Background(), testCollection, "R1", Document{"rollNo": "R1", "regNo": "G1"})
		var ce *ConstraintError
		if !errors.As(err, &ce) || ce.Field != "" {
			t.Fatalf("expected id collision, got %v", err)
		}
	})

	t.Run("UniqueFieldCollision", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustCreate(t, s, "R1", Document{"rollNo": "R1", "regNo": "G1"})

		err := s.Create(ctx, testCollection, "R2", Document{"rollNo": "R2", "regNo": "G1"})
		var ce *ConstraintError
		if !errors.As(err, &ce) {
			t.Fatalf("expected ConstraintError, got %v", err)
		}
		if ce.Field != "regNo" || ce.Value != "G1" {
			t.Errorf("unexpected constraint error %+v", ce)
		}

		if _, err := s.Get(ctx, testCollection, "R2"); !errors.Is(err, ErrNotFound) {
			t.Errorf("rejected document must not exist, got %v", err)
		}

		// The id released by the failed create is usable again.
		mustCreate(t, s, "R2", Document{"rollNo": "R2", "regNo": "G2"})
	})

	t.Run("MergeMissingDoesNotCreate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		err := s.Merge(ctx, testCollection, "ghost", Document{"studentName": "Nobody"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := s.Get(ctx, testCollection, "ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("merge created a document: %v", err)
		}
	})

	t.Run("MergeOverlaysFields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustCreate(t, s, "R1", Document{"rollNo": "R1", "studentName": "Asha", "gender": "F"})

		if err := s.Merge(ctx, testCollection, "R1", Document{"studentName": "Asha Rao", "district": "Udupi", "gender": ""}); err != nil {
			t.Fatalf("Merge: %v", err)
		}

		doc, err := s.Get(ctx, testCollection, "R1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		want := Document{"rollNo": "R1", "studentName": "Asha Rao", "gender": "F", "district": "Udupi"}
		if len(doc) != len(want) {
			t.Fatalf("got %v, want %v", doc, want)
		}
		for k, v := range want {
			if doc[k] != v {
				t.Errorf("%s = %q, want %q", k, doc[k], v)
			}
		}
	})

	t.Run("MergeMovesUniqueClaim", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustCreate(t, s, "R1", Document{"rollNo": "R1", "regNo": "G1"})
		mustCreate(t, s, "R2", Document{"rollNo": "R2", "regNo": "G2"})

		err := s.Merge(ctx, testCollection, "R2", Document{"regNo": "G1"})
		var ce *ConstraintError
		if !errors.As(err, &ce) || ce.Field != "regNo" {
			t.Fatalf("expected regNo collision, got %v", err)
		}
		doc, _ := s.Get(ctx, testCollection, "R2")
		if doc["regNo"] != "G2" {
			t.Errorf("failed merge changed the document: %v", doc)
		}

		if err := s.Merge(ctx, testCollection, "R2", Document{"regNo": "G3"}); err != nil {
			t.Fatalf("Merge: %v", err)
		}
		// G2 is free again, G3 is taken.
		mustCreate(t, s, "R3", Document{"rollNo": "R3", "regNo": "G2"})
		if err := s.Create(ctx, testCollection, "R4", Document{"rollNo": "R4", "regNo": "G3"}); !errors.Is(err, ErrAlreadyExists) {
			t.Errorf("expected G3 to be claimed, got %v", err)
		}
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustCreate(t, s, "R1", Document{"rollNo": "R1", "regNo": "G1"})

		if err := s.Delete(ctx, testCollection, "R1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := s.Delete(ctx, testCollection, "R1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("second Delete: expected ErrNotFound, got %v", err)
		}
		if err := s.Delete(ctx, testCollection, "never"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Delete missing: expected ErrNotFound, got %v", err)
		}

		// Both the id and the unique value are released.
		mustCreate(t, s, "R1", Document{"rollNo": "R1", "regNo": "G1"})
	})

	t.Run("FindEqual", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustCreate(t, s, "R1", Document{"rollNo": "R1", "regNo": "G1", "classSection": "10A"})
		mustCreate(t, s, "R2", Document{"rollNo": "R2", "classSection": "10B"})
		mustCreate(t, s, "R3", Document{"rollNo": "R3", "classSection": "10A"})

		byClass, err := s.FindEqual(ctx, testCollection, "classSection", "10A", 0)
		if err != nil {
			t.Fatalf("FindEqual: %v", err)
		}
		if ids := snapshotIDs(byClass); len(ids) != 2 || ids[0] != "R1" || ids[1] != "R3" {
			t.Errorf("classSection=10A returned %v", ids)
		}

		limited, err := s.FindEqual(ctx, testCollection, "classSection", "10A", 1)
		if err != nil {
			t.Fatalf("FindEqual: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("limit 1 returned %d documents", len(limited))
		}

		byReg, err := s.FindEqual(ctx, testCollection, "regNo", "G1", 1)
		if err != nil {
			t.Fatalf("FindEqual: %v", err)
		}
		if ids := snapshotIDs(byReg); len(ids) != 1 || ids[0] != "R1" {
			t.Errorf("regNo=G1 returned %v", ids)
		}

		none, err := s.FindEqual(ctx, testCollection, "regNo", "g1", 1)
		if err != nil {
			t.Fatalf("FindEqual: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("equality must be case-sensitive, got %v", snapshotIDs(none))
		}
	})

	t.Run("FindPrefix", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustCreate(t, s, "R1", Document{"rollNo": "R1", "studentName": "Ravi"})
		mustCreate(t, s, "R2", Document{"rollNo": "R2", "studentName": "Asha"})
		mustCreate(t, s, "R3", Document{"rollNo": "R3", "studentName": "Ashwin"})
		mustCreate(t, s, "R4", Document{"rollNo": "R4", "studentName": "asha"})

		snaps, err := s.FindPrefix(ctx, testCollection, "studentName", "Ash", 0)
		if err != nil {
			t.Fatalf("FindPrefix: %v", err)
		}
		if ids := snapshotIDs(snaps); len(ids) != 2 || ids[0] != "R2" || ids[1] != "R3" {
			t.Errorf("prefix Ash returned %v", ids)
		}
	})

	t.Run("ScanInsertionOrder", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, id := range []string{"C", "A", "B"} {
			mustCreate(t, s, id, Document{"rollNo": id})
		}

		snaps, err := s.Scan(ctx, testCollection)
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if ids := snapshotIDs(snaps); len(ids) != 3 || ids[0] != "C" || ids[1] != "A" || ids[2] != "B" {
			t.Errorf("Scan order = %v", ids)
		}

		other, err := s.Scan(ctx, "staff")
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if len(other) != 0 {
			t.Errorf("collections leaked into each other: %v", snapshotIDs(other))
		}
	})

	t.Run("InvalidField", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindEqual(context.Background(), testCollection, "name') OR 1=1 --", "x", 1)
		if !errors.Is(err, ErrInvalidField) {
			t.Fatalf("expected ErrInvalidField, got %v", err)
		}
	})
}

func mustCreate(t *testing.T, s Store, id string, doc Document) {
	t.Helper()
	if err := s.Create(context.Background(), testCollection, id, doc); err != nil {
		t.Fatalf("Create %s: %v", id, err)
	}
}

func snapshotIDs(snaps []Snapshot) []string {
	ids := make([]string, len(snaps))
	for i, s := range snaps {
		ids[i] = s.ID
	}
	return ids
}

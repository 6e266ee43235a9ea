package paymentlog

import (
	"math/big"
	"path/filepath"
	"testing"
)

func TestReserveIDsAreMonotonicAndDense(t *testing.T) {
	l := New()
	a := l.Reserve(0, "usdc", "0xa", "0xb", big.NewInt(1))
	b := l.Reserve(0, "usdc", "0xa", "0xb", big.NewInt(1))
	c := l.Reserve(0, "usdc", "0xa", "0xb", big.NewInt(1))
	if !(a < b && b < c) {
		t.Fatalf("expected strictly increasing ids, got %d %d %d", a, b, c)
	}
	if b != a+1 || c != b+1 {
		t.Fatalf("expected dense ids, got %d %d %d", a, b, c)
	}
}

func TestMarkSuccessIsTerminal(t *testing.T) {
	l := New()
	id := l.Reserve(0, "usdc", "0xa", "0xb", big.NewInt(1))
	l.MarkSuccess(id, "0xdeadbeef")
	// a later finalisation must not touch the terminal entry
	l.MarkFailure(id, "late failure")

	entries := l.List(nil, 10)
	if len(entries) != 1 || entries[0].Status != StatusBroadcasted || entries[0].TxHash != "0xdeadbeef" || entries[0].FailReason != "" {
		t.Fatalf("unexpected entry: %+v", entries)
	}
}

func TestListReverseChronologicalWithCursor(t *testing.T) {
	l := New()
	ids := make([]uint64, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, l.Reserve(int64(i), "usdc", "0xa", "0xb", big.NewInt(1)))
	}

	all := l.List(nil, 10)
	if len(all) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(all))
	}
	if all[0].ID != ids[4] {
		t.Fatalf("expected reverse-chronological order, first entry id=%d", all[0].ID)
	}

	cursor := ids[2]
	after := l.List(&cursor, 10)
	if len(after) != 2 {
		t.Fatalf("expected 2 entries after cursor, got %d", len(after))
	}
	for _, e := range after {
		if e.ID <= cursor {
			t.Fatalf("entry %d should be > cursor %d", e.ID, cursor)
		}
	}
}

func TestListZeroLimitTreatedAsOne(t *testing.T) {
	l := New()
	l.Reserve(0, "usdc", "0xa", "0xb", big.NewInt(1))
	l.Reserve(0, "usdc", "0xa", "0xb", big.NewInt(1))

	got := l.List(nil, 0)
	if len(got) != 1 {
		t.Fatalf("expected limit=0 to behave as limit=1, got %d entries", len(got))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := New()
	id := l.Reserve(0, "usdc", "0xa", "0xb", big.NewInt(42))
	l.MarkFailure(id, "boom")

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := l.SaveSnapshot(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := restored.List(nil, 10)
	if len(entries) != 1 || entries[0].Status != StatusFailed || entries[0].FailReason != "boom" {
		t.Fatalf("unexpected restored entry: %+v", entries)
	}
	if restored.NextID() != l.NextID() {
		t.Fatalf("expected next id to survive restore: got %d want %d", restored.NextID(), l.NextID())
	}
}

func TestLoadSnapshotMissingFileStartsFresh(t *testing.T) {
	l, err := LoadSnapshot(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.NextID() != 1 {
		t.Fatalf("expected fresh log to start at id 1, got %d", l.NextID())
	}
}

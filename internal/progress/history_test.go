package progress

import "testing"

func TestHistoryPushOverwrites(t *testing.T) {
	h := NewHistory()
	h.Push("2025-11-01", 100)
	h.Push("2025-11-02", 50)

	snap, ok := h.Pop()
	if !ok {
		t.Fatal("expected a snapshot")
	}
	if snap.Day != "2025-11-02" || snap.Delta != 50 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestHistoryPopClears(t *testing.T) {
	h := NewHistory()
	h.Push("2025-11-01", 100)
	if _, ok := h.Pop(); !ok {
		t.Fatal("first pop should succeed")
	}
	if _, ok := h.Pop(); ok {
		t.Fatal("second pop should report nothing to undo")
	}
}

func TestHistoryPeekDoesNotClear(t *testing.T) {
	h := NewHistory()
	h.Push("2025-11-01", 100)
	if _, ok := h.Peek(); !ok {
		t.Fatal("peek should see the snapshot")
	}
	if _, ok := h.Pop(); !ok {
		t.Fatal("pop after peek should still succeed")
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory()
	h.Push("2025-11-01", 100)
	h.Clear()
	if _, ok := h.Pop(); ok {
		t.Fatal("pop after clear should fail")
	}
}

func TestHistoryEmptyPop(t *testing.T) {
	h := NewHistory()
	if _, ok := h.Pop(); ok {
		t.Fatal("empty history should have nothing to undo")
	}
}

package market

import "testing"

func TestWindow_EvictsOldest(t *testing.T) {
	w := NewWindow(3)
	for i := 1; i <= 5; i++ {
		w.Push(float64(i))
	}

	if w.Len() != 3 {
		t.Fatalf("expected len 3, got %d", w.Len())
	}
	vals := w.Values()
	if vals[0] != 3 || vals[2] != 5 {
		t.Errorf("expected oldest-first [3 4 5], got %v", vals)
	}
	if last, ok := w.Last(); !ok || last != 5 {
		t.Errorf("expected last=5, got %v ok=%v", last, ok)
	}
}

func TestWindow_ValuesIsCopy(t *testing.T) {
	w := NewWindow(2)
	w.Push(1)
	vals := w.Values()
	vals[0] = 99

	if got := w.Values()[0]; got != 1 {
		t.Errorf("mutating the snapshot leaked into the window: got %v", got)
	}
}

func TestSeriesStore_RejectsNonPositive(t *testing.T) {
	s := NewSeriesStore(10, 10)
	s.PushClose(100)
	s.PushClose(0)
	s.PushClose(-5)
	s.PushClose(101)

	if s.CloseCount() != 2 {
		t.Errorf("expected 2 closes stored, got %d", s.CloseCount())
	}

	s.PushVol(12.5)
	s.PushVol(-1)
	if s.VolCount() != 1 {
		t.Errorf("expected 1 vol stored, got %d", s.VolCount())
	}
}

func TestSeriesStore_ChronologicalOrder(t *testing.T) {
	s := NewSeriesStore(3, 3)
	for _, p := range []float64{1, 2, 3, 4} {
		s.PushClose(p)
	}
	closes := s.Closes()
	for i := 1; i < len(closes); i++ {
		if closes[i] < closes[i-1] {
			t.Fatalf("closes out of order: %v", closes)
		}
	}
	if closes[0] != 2 {
		t.Errorf("expected oldest=2 after eviction, got %v", closes[0])
	}
}

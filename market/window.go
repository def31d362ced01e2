package market

// Window is a fixed-capacity chronological series of observations.
// Pushing beyond capacity evicts the oldest value.
type Window struct {
	capacity int
	values   []float64
}

// NewWindow creates a window holding at most capacity values.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{
		capacity: capacity,
		values:   make([]float64, 0, capacity),
	}
}

// Push appends a value, evicting the oldest when full.
func (w *Window) Push(v float64) {
	w.values = append(w.values, v)
	if len(w.values) > w.capacity {
		w.values = w.values[1:]
	}
}

// Len returns the number of stored values.
func (w *Window) Len() int {
	return len(w.values)
}

// Full reports whether the window is at capacity.
func (w *Window) Full() bool {
	return len(w.values) == w.capacity
}

// Values returns a copy of the stored values, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Last returns the most recent value.
func (w *Window) Last() (float64, bool) {
	if len(w.values) == 0 {
		return 0, false
	}
	return w.values[len(w.values)-1], true
}

// SeriesStore holds the rolling close and realized-vol windows that feed
// signal computation. Non-positive observations are dropped at ingestion.
type SeriesStore struct {
	closes *Window
	vols   *Window
}

// NewSeriesStore creates a store with the given window capacities.
func NewSeriesStore(closeCapacity, volCapacity int) *SeriesStore {
	return &SeriesStore{
		closes: NewWindow(closeCapacity),
		vols:   NewWindow(volCapacity),
	}
}

// PushClose appends a daily close. Non-positive prices are ignored.
func (s *SeriesStore) PushClose(price float64) {
	if price <= 0 {
		return
	}
	s.closes.Push(price)
}

// PushVol appends a realized-vol observation. Non-positive values are ignored.
func (s *SeriesStore) PushVol(v float64) {
	if v <= 0 {
		return
	}
	s.vols.Push(v)
}

// Closes returns the stored closes, oldest first.
func (s *SeriesStore) Closes() []float64 {
	return s.closes.Values()
}

// Vols returns the stored vol observations, oldest first.
func (s *SeriesStore) Vols() []float64 {
	return s.vols.Values()
}

// CloseCount returns the number of stored closes.
func (s *SeriesStore) CloseCount() int {
	return s.closes.Len()
}

// VolCount returns the number of stored vol observations.
func (s *SeriesStore) VolCount() int {
	return s.vols.Len()
}

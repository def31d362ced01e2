package monitor

// MockRecorder captures emissions for assertions in tests. Not safe for
// concurrent use; the engine is single-threaded by contract.
type MockRecorder struct {
	Gauges   map[string]float64
	Counters map[string]int
}

// NewMockRecorder creates an empty mock recorder.
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{
		Gauges:   make(map[string]float64),
		Counters: make(map[string]int),
	}
}

// Gauge records the last value set per name.
func (m *MockRecorder) Gauge(name string, value float64) {
	m.Gauges[name] = value
}

// Inc counts increments per name.
func (m *MockRecorder) Inc(name string) {
	m.Counters[name]++
}

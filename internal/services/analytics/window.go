package analytics

import "math"

// Window is a fixed-capacity ring buffer holding the most recent
// post-transform values for one indicator. Capacity is set once from the
// indicator definition; while warming up the buffer simply grows toward it,
// afterwards each push evicts the oldest value.
type Window struct {
	values []float64
	size   int
	next   int
}

// NewWindow creates an empty window. Sizes below 2 are clamped to 2 so that
// a full window always admits a sample standard deviation.
func NewWindow(size int) *Window {
	if size < 2 {
		size = 2
	}
	return &Window{values: make([]float64, 0, size), size: size}
}

// Push appends a value, evicting the oldest once the window is full.
func (w *Window) Push(v float64) {
	if len(w.values) < w.size {
		w.values = append(w.values, v)
		return
	}
	w.values[w.next] = v
	w.next = (w.next + 1) % w.size
}

// Len reports how many values are currently buffered.
func (w *Window) Len() int { return len(w.values) }

// Cap reports the configured capacity.
func (w *Window) Cap() int { return w.size }

// MeanStdDev returns the mean and sample standard deviation over the
// buffered values. With fewer than two values the deviation is 0.
func (w *Window) MeanStdDev() (mean, std float64) {
	n := len(w.values)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range w.values {
		sum += v
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range w.values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(n-1))
}

// Clone returns an independent copy, used to stage a batch before commit.
func (w *Window) Clone() *Window {
	cp := &Window{values: make([]float64, len(w.values), w.size), size: w.size, next: w.next}
	copy(cp.values, w.values)
	return cp
}

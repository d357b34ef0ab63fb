package analytics

import (
	"math"
	"testing"
)

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		w.Push(v)
	}
	if w.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", w.Len())
	}
	mean, _ := w.MeanStdDev()
	if mean != 4 { // surviving values are 3, 4, 5
		t.Fatalf("mean = %v, want 4", mean)
	}
}

func TestWindowCapacityIsFixed(t *testing.T) {
	w := NewWindow(10)
	for i := 0; i < 10_000; i++ {
		w.Push(float64(i))
	}
	if w.Len() != 10 || w.Cap() != 10 {
		t.Fatalf("len/cap = %d/%d, want 10/10", w.Len(), w.Cap())
	}
}

func TestWindowSampleStdDev(t *testing.T) {
	w := NewWindow(5)
	for _, v := range []float64{2, 4, 4, 4, 6} {
		w.Push(v)
	}
	mean, std := w.MeanStdDev()
	if mean != 4 {
		t.Fatalf("mean = %v, want 4", mean)
	}
	want := math.Sqrt(2) // sample variance 8/4
	if math.Abs(std-want) > 1e-12 {
		t.Fatalf("std = %v, want %v", std, want)
	}
}

func TestWindowDegenerateCases(t *testing.T) {
	w := NewWindow(4)
	if _, std := w.MeanStdDev(); std != 0 {
		t.Fatalf("empty window std = %v, want 0", std)
	}
	w.Push(7)
	mean, std := w.MeanStdDev()
	if mean != 7 || std != 0 {
		t.Fatalf("single value mean/std = %v/%v, want 7/0", mean, std)
	}
}

func TestWindowCloneIsIndependent(t *testing.T) {
	w := NewWindow(3)
	w.Push(1)
	w.Push(2)
	cp := w.Clone()
	cp.Push(100)
	if w.Len() != 2 {
		t.Fatalf("original window grew after clone push: len = %d", w.Len())
	}
	if cp.Len() != 3 {
		t.Fatalf("clone len = %d, want 3", cp.Len())
	}
}

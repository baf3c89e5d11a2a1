package dsp

import "math"

// Hamming returns the symmetric n-point Hamming taper used before the
// spectrum FFT. A one-point record gets a unit weight; n <= 0 yields an
// empty window.
func Hamming(n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{1}
	}
	win := make([]float64, n)
	step := 2 * math.Pi / float64(n-1)
	for i := range win {
		win[i] = 0.54 - 0.46*math.Cos(step*float64(i))
	}
	return win
}

// ApplyWindow multiplies the input samples with the provided window.
// The window length must match the input length.
func ApplyWindow(samples []float64, window []float64) []float64 {
	if len(samples) != len(window) {
		return []float64{}
	}
	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = v * window[i]
	}
	return out
}

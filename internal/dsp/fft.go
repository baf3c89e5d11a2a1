package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum is the one-sided magnitude spectrum of a real waveform.
// Bin k corresponds to k cycles per record length.
type Spectrum struct {
	Magnitude []float64
	DB        []float64
	// DominantBin is the strongest non-DC bin, or 0 when there is none.
	DominantBin int
}

// MagnitudeSpectrum applies a Hamming window, normalizes by the window sum,
// and returns magnitudes and their dB values (20*log10). The mean is removed
// first so a DC offset does not mask the dominant tone.
func MagnitudeSpectrum(samples []float64) Spectrum {
	n := len(samples)
	if n == 0 {
		return Spectrum{Magnitude: []float64{}, DB: []float64{}}
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)
	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}

	win := Hamming(n)
	windowed := ApplyWindow(centered, win)
	coeffs := fourier.NewFFT(n).Coefficients(nil, windowed)
	sumWin := 0.0
	for _, v := range win {
		sumWin += v
	}

	s := Spectrum{
		Magnitude: make([]float64, len(coeffs)),
		DB:        make([]float64, len(coeffs)),
	}
	best := 0.0
	for i, c := range coeffs {
		mag := cmplx.Abs(c) / sumWin
		s.Magnitude[i] = mag
		if mag == 0 {
			s.DB[i] = math.Inf(-1)
		} else {
			s.DB[i] = 20 * math.Log10(mag)
		}
		if i > 0 && mag > best {
			best = mag
			s.DominantBin = i
		}
	}
	return s
}

package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the amplitude distribution of a waveform.
type Summary struct {
	Count      int
	Min        float64
	Max        float64
	Mean       float64
	StdDev     float64
	PeakToPeak float64
	RMS        float64
}

// Summarize computes amplitude statistics over samples. StdDev is the
// unbiased sample standard deviation and is zero for fewer than two samples.
func Summarize(samples []float64) Summary {
	n := len(samples)
	if n == 0 {
		return Summary{}
	}
	s := Summary{
		Count: n,
		Min:   floats.Min(samples),
		Max:   floats.Max(samples),
		RMS:   floats.Norm(samples, 2) / math.Sqrt(float64(n)),
	}
	s.PeakToPeak = s.Max - s.Min
	if n == 1 {
		s.Mean = samples[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(samples, nil)
	return s
}

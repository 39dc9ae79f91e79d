package analysis

import (
	"errors"
	"math/bits"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

// ErrTooShort reports a series with fewer than two samples.
var ErrTooShort = errors.New("analysis: series too short")

// Bin is one frequency of a spectrum.
type Bin struct {
	Frequency float64
	Amplitude float64
}

// Spectrum returns the one-sided amplitude spectrum of samples taken every
// dt seconds. The mean is removed and the series zero-padded to a power of
// two. Amplitudes are scaled so a pure sine of amplitude A peaks near A.
func Spectrum(samples []float64, dt float64) ([]Bin, error) {
	if len(samples) < 2 {
		return nil, ErrTooShort
	}
	if !(dt > 0) {
		return nil, errors.New("analysis: dt must be positive")
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	n := 1 << bits.Len(uint(len(samples)-1))
	padded := make([]float64, n)
	for i, v := range samples {
		padded[i] = v - mean
	}

	coeffs := fft.FFTReal(padded)
	bins := make([]Bin, n/2)
	for i := range bins {
		bins[i] = Bin{
			Frequency: float64(i) / (float64(n) * dt),
			Amplitude: 2 * cmplx.Abs(coeffs[i]) / float64(len(samples)),
		}
	}
	return bins, nil
}

// DominantFrequency returns the strongest non-zero frequency of samples.
func DominantFrequency(samples []float64, dt float64) (Bin, error) {
	bins, err := Spectrum(samples, dt)
	if err != nil {
		return Bin{}, err
	}
	var best Bin
	for _, b := range bins[1:] {
		if b.Amplitude > best.Amplitude {
			best = b
		}
	}
	return best, nil
}

// Peaks returns the n strongest bins above DC, strongest first.
func Peaks(bins []Bin, n int) []Bin {
	if len(bins) <= 1 {
		return nil
	}
	sorted := append([]Bin(nil), bins[1:]...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Amplitude > sorted[j].Amplitude })
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

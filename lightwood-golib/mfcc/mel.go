package mfcc

import "math"

// Slaney's auditory toolbox mel scale: linear below 1kHz, logarithmic above.
const (
	fSp        = 200.0 / 3
	minLogHz   = 1000.0
	minLogMel  = minLogHz / fSp
	logStepMel = 0.06875177742094912 // ln(6.4) / 27
)

// HzToMel converts a frequency to the Slaney mel scale.
func HzToMel(hz float64) float64 {
	if hz < minLogHz {
		return hz / fSp
	}
	return minLogMel + math.Log(hz/minLogHz)/logStepMel
}

// MelToHz is the inverse of HzToMel.
func MelToHz(mel float64) float64 {
	if mel < minLogMel {
		return mel * fSp
	}
	return minLogHz * math.Exp(logStepMel*(mel-minLogMel))
}

// MelFilterbank returns mels triangular, area-normalised filters over the
// nfft/2+1 FFT bins of a signal sampled at sampleRate.
func MelFilterbank(sampleRate, nfft, mels int) [][]float64 {
	bins := nfft/2 + 1
	fftFreqs := make([]float64, bins)
	for i := range fftFreqs {
		fftFreqs[i] = float64(i) * float64(sampleRate) / float64(nfft)
	}

	lo, hi := HzToMel(0), HzToMel(float64(sampleRate)/2)
	melFreqs := make([]float64, mels+2)
	for i := range melFreqs {
		melFreqs[i] = MelToHz(lo + (hi-lo)*float64(i)/float64(mels+1))
	}

	filters := make([][]float64, mels)
	for m := 0; m < mels; m++ {
		left, center, right := melFreqs[m], melFreqs[m+1], melFreqs[m+2]
		norm := 2 / (right - left)
		row := make([]float64, bins)
		for i, f := range fftFreqs {
			lower := (f - left) / (center - left)
			upper := (right - f) / (right - center)
			if w := math.Min(lower, upper); w > 0 {
				row[i] = w * norm
			}
		}
		filters[m] = row
	}
	return filters
}

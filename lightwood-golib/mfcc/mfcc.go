// Package mfcc computes Mel-frequency cepstral coefficients of a mono waveform.
//
// The waveform is cut into a fixed number of centred frames, so the output width
// depends only on Options and never on the length of the signal.
package mfcc

import (
	"math"

	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrEmptySignal is returned for a waveform without samples.
var ErrEmptySignal = errors.New("mfcc: empty signal")

// Options controls the extraction.
type Options struct {
	// Frames is the number of sequential time buckets the waveform is split into.
	Frames int
	// Coefficients is the number of cepstral coefficients kept per frame.
	Coefficients int
	// NFFT is the FFT window length in samples.
	NFFT int
	// Mels is the number of mel bands.
	Mels int
	// TopDB clips the log-mel spectrogram to this many decibels below its peak.
	TopDB float64
}

// DefaultOptions mirrors the usual speech settings: 100 frames of 20 coefficients.
var DefaultOptions = Options{
	Frames:       100,
	Coefficients: 20,
	NFFT:         2048,
	Mels:         128,
	TopDB:        80,
}

// Width is the length of the flattened output.
func (o Options) Width() int {
	return o.Frames * o.Coefficients
}

func (o Options) validate() error {
	switch {
	case o.Frames <= 0:
		return errors.Errorf("mfcc: frames must be positive, got %d", o.Frames)
	case o.Coefficients <= 0:
		return errors.Errorf("mfcc: coefficients must be positive, got %d", o.Coefficients)
	case o.NFFT < 2:
		return errors.Errorf("mfcc: nfft must be at least 2, got %d", o.NFFT)
	case o.Mels < o.Coefficients:
		return errors.Errorf("mfcc: need at least as many mel bands (%d) as coefficients (%d)", o.Mels, o.Coefficients)
	}
	return nil
}

// Compute returns the MFCCs of y sampled at sampleRate, shaped Coefficients x Frames
// and flattened row-major (all frames of coefficient 0, then coefficient 1, ...).
func Compute(y []float64, sampleRate int, opts Options) ([]float64, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(y) == 0 {
		return nil, ErrEmptySignal
	}
	if sampleRate <= 0 {
		return nil, errors.Errorf("mfcc: invalid sample rate %d", sampleRate)
	}

	power := powerSpectrogram(y, opts)
	filters := MelFilterbank(sampleRate, opts.NFFT, opts.Mels)
	logMel := toDecibels(applyFilters(filters, power), opts.TopDB)

	out := make([]float64, opts.Coefficients*opts.Frames)
	col := make([]float64, opts.Mels)
	for t := 0; t < opts.Frames; t++ {
		for m := 0; m < opts.Mels; m++ {
			col[m] = logMel[m][t]
		}
		coefs := dctOrtho(col, opts.Coefficients)
		for k, c := range coefs {
			out[k*opts.Frames+t] = c
		}
	}
	return out, nil
}

// powerSpectrogram returns |STFT|^2 with shape Frames x (NFFT/2+1).
func powerSpectrogram(y []float64, opts Options) [][]float64 {
	n := len(y)
	hop := (n + opts.Frames - 1) / opts.Frames
	if hop < 1 {
		hop = 1
	}
	half := opts.NFFT / 2
	window := hann(opts.NFFT)
	fft := fourier.NewFFT(opts.NFFT)

	frame := make([]float64, opts.NFFT)
	var coeffs []complex128
	spec := make([][]float64, opts.Frames)
	for t := 0; t < opts.Frames; t++ {
		// frame t is centred on sample t*hop; samples outside the signal are zero
		start := t*hop - half
		for i := range frame {
			j := start + i
			if j < 0 || j >= n {
				frame[i] = 0
				continue
			}
			frame[i] = y[j] * window[i]
		}
		coeffs = fft.Coefficients(coeffs, frame)
		row := make([]float64, len(coeffs))
		for i, c := range coeffs {
			re, im := real(c), imag(c)
			row[i] = re*re + im*im
		}
		spec[t] = row
	}
	return spec
}

// hann is the periodic Hann window.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// applyFilters returns filters x spec^T, shaped Mels x Frames.
func applyFilters(filters, spec [][]float64) [][]float64 {
	out := make([][]float64, len(filters))
	for m, f := range filters {
		row := make([]float64, len(spec))
		for t, s := range spec {
			var sum float64
			for i, w := range f {
				if w != 0 {
					sum += w * s[i]
				}
			}
			row[t] = sum
		}
		out[m] = row
	}
	return out
}

func toDecibels(s [][]float64, topDB float64) [][]float64 {
	const amin = 1e-10
	peak := math.Inf(-1)
	for _, row := range s {
		for i, v := range row {
			db := 10 * math.Log10(math.Max(amin, v))
			row[i] = db
			if db > peak {
				peak = db
			}
		}
	}
	if topDB > 0 {
		floor := peak - topDB
		for _, row := range s {
			for i, v := range row {
				if v < floor {
					row[i] = floor
				}
			}
		}
	}
	return s
}

// dctOrtho is the orthonormal DCT-II of x truncated to the first k coefficients.
func dctOrtho(x []float64, k int) []float64 {
	n := float64(len(x))
	out := make([]float64, k)
	for j := 0; j < k; j++ {
		var sum float64
		for i, v := range x {
			sum += v * math.Cos(math.Pi*float64(j)*(2*float64(i)+1)/(2*n))
		}
		if j == 0 {
			out[j] = sum * math.Sqrt(1/n)
		} else {
			out[j] = sum * math.Sqrt(2/n)
		}
	}
	return out
}

package audio

import (
	"bytes"

	"github.com/go-audio/wav"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/fileutil"
)

// LoadWAV fetches a WAV file from a local path, http(s) URL or s3:// URI and
// returns its samples averaged to mono and scaled to [-1, 1].
func LoadWAV(path string) ([]float64, int, error) {
	buf, err := fileutil.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	return DecodeWAV(buf)
}

// DecodeWAV decodes an in-memory WAV file.
func DecodeWAV(buf []byte) ([]float64, int, error) {
	d := wav.NewDecoder(bytes.NewReader(buf))
	if !d.IsValidFile() {
		return nil, 0, errors.New("not a valid wav file")
	}
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, errors.Wrapf(err, "error decoding wav")
	}
	if pcm.Format == nil || pcm.Format.NumChannels <= 0 || pcm.Format.SampleRate <= 0 {
		return nil, 0, errors.New("wav file has no format information")
	}

	channels := pcm.Format.NumChannels
	depth := int(d.BitDepth)
	if depth <= 0 {
		return nil, 0, errors.Errorf("unsupported bit depth %d", depth)
	}
	scale := float64(int64(1) << uint(depth-1))
	var offset float64
	if depth == 8 {
		// 8 bit PCM is unsigned
		offset = scale
	}

	frames := len(pcm.Data) / channels
	if frames == 0 {
		return nil, 0, errors.New("wav file has no samples")
	}
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += (float64(pcm.Data[i*channels+c]) - offset) / scale
		}
		out[i] = sum / float64(channels)
	}
	return out, pcm.Format.SampleRate, nil
}

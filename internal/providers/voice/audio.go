package voice

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Speech-to-Text performs best on LINEAR16 mono at 16 kHz, so browser WAV
// uploads are normalized to that shape before the recognize call. Compressed
// containers (webm, ogg) are sent as-is with their encoding declared.

const targetSampleRate = 16000

var errNotWAV = errors.New("voice: not a RIFF/WAVE stream")

type pcmClip struct {
	samples []int16
	rate    int
}

// decodeWAV parses a 16-bit PCM WAV stream, averaging channels down to mono.
func decodeWAV(data []byte) (pcmClip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return pcmClip{}, errNotWAV
	}

	var (
		channels   int
		sampleRate int
		bitDepth   int
		raw        []byte
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkLen > len(data) {
			chunkLen = len(data) - body
		}
		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return pcmClip{}, fmt.Errorf("voice: truncated fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return pcmClip{}, fmt.Errorf("voice: unsupported wav format %d", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			raw = data[body : body+chunkLen]
		}
		// Chunks are word aligned.
		offset = body + chunkLen
		if chunkLen%2 == 1 {
			offset++
		}
	}

	if channels == 0 || sampleRate == 0 {
		return pcmClip{}, fmt.Errorf("voice: missing fmt chunk")
	}
	if bitDepth != 16 {
		return pcmClip{}, fmt.Errorf("voice: unsupported bit depth %d", bitDepth)
	}
	if len(raw) == 0 {
		return pcmClip{}, fmt.Errorf("voice: empty data chunk")
	}

	frameBytes := channels * 2
	frames := len(raw) / frameBytes
	samples := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int
		base := i * frameBytes
		for ch := 0; ch < channels; ch++ {
			sum += int(int16(binary.LittleEndian.Uint16(raw[base+ch*2 : base+ch*2+2])))
		}
		samples[i] = int16(sum / channels)
	}
	return pcmClip{samples: samples, rate: sampleRate}, nil
}

// resample converts samples from one rate to another with linear
// interpolation. Good enough for speech; this is not a music pipeline.
func resample(samples []int16, from, to int) []int16 {
	if from == to || len(samples) == 0 {
		return samples
	}
	n := int(int64(len(samples)) * int64(to) / int64(from))
	if n == 0 {
		n = 1
	}
	out := make([]int16, n)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		a, b := float64(samples[idx]), float64(samples[idx+1])
		out[i] = int16(a + (b-a)*frac)
	}
	return out
}

// normalizeWAV returns raw LINEAR16 mono bytes at 16 kHz.
func normalizeWAV(data []byte) ([]byte, error) {
	clip, err := decodeWAV(data)
	if err != nil {
		return nil, err
	}
	samples := resample(clip.samples, clip.rate, targetSampleRate)
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out, nil
}

package transcode

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth   = 16
	wavPCMFormat  = 1
	positiveScale = 0x7FFF
	negativeScale = 0x8000
)

// EncodeWAV writes buf as a 16-bit mono PCM WAV. Positive samples scale by
// 0x7FFF and negative ones by 0x8000 so both ends of [-1, 1] hit full scale.
func EncodeWAV(w io.WriteSeeker, buf *SampleBuffer) error {
	if buf.SampleRate() <= 0 {
		return ErrInvalidSampleRate
	}

	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  buf.SampleRate(),
		},
		Data:           quantize16(buf.samples),
		SourceBitDepth: wavBitDepth,
	}

	encoder := wav.NewEncoder(w, buf.SampleRate(), wavBitDepth, 1, wavPCMFormat)
	if err := encoder.Write(intBuf); err != nil {
		return fmt.Errorf("data writing error: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize WAV header: %w", err)
	}

	return nil
}

func quantize16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		v := float64(s)
		if math.IsNaN(v) {
			continue
		}
		v = math.Max(-1, math.Min(1, v))
		if v < 0 {
			out[i] = int(math.Round(v * negativeScale))
		} else {
			out[i] = int(math.Round(v * positiveScale))
		}
	}
	return out
}

package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// pcm16WAV builds a canonical 44-byte-header PCM WAV
func pcm16WAV(sampleRate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	blockAlign := uint16(channels * 2)
	dataSize := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func pcm8WAV(sampleRate int, samples []byte) []byte {
	buf := new(bytes.Buffer)
	dataSize := uint32(len(samples))

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(8))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	buf.Write(samples)
	return buf.Bytes()
}

func TestSampleBufferIsImmutable(t *testing.T) {
	t.Parallel()

	src := []float32{0.1, 0.2, 0.3}
	buf := NewSampleBuffer(src, 8000)
	src[0] = 9

	got := buf.Samples()
	if got[0] != 0.1 {
		t.Fatalf("buffer shares input storage: %v", got)
	}
	got[1] = 9
	if buf.Samples()[1] != 0.2 {
		t.Fatal("Samples returned internal storage")
	}
	if buf.Len() != 3 || buf.SampleRate() != 8000 {
		t.Fatalf("Len/SampleRate = %d/%d", buf.Len(), buf.SampleRate())
	}
}

func TestSampleBufferDuration(t *testing.T) {
	t.Parallel()

	if got := FromFloat64(make([]float64, 16000), 16000).Duration(); got != time.Second {
		t.Fatalf("Duration = %v, want 1s", got)
	}
	if got := FromFloat64(make([]float64, 10), 0).Duration(); got != 0 {
		t.Fatalf("zero-rate Duration = %v", got)
	}
	var nilBuf *SampleBuffer
	if !nilBuf.IsEmpty() || nilBuf.Duration() != 0 || len(nilBuf.Float64s()) != 0 {
		t.Fatal("nil buffer should behave as empty")
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "voice.wav", want: FormatWAV},
		{path: "/tmp/VOICE.WAV", want: FormatWAV},
		{path: "clip.mp3", want: FormatMP3},
		{path: "clip.ogg", want: FormatOGG},
		{path: "clip.m4a", want: FormatAAC},
		{path: "notes.txt", wantErr: true},
		{path: "noext", wantErr: true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Fatalf("FormatFromPath(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("FormatFromPath(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}
}

func TestEncodeWAVHeaderAndScaling(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	buf := NewSampleBuffer([]float32{1, -1, 0.5, 0, 2}, 16000)
	if err := EncodeWAV(f, buf); err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 44+5*2 {
		t.Fatalf("file size = %d, want %d", len(data), 44+10)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		t.Fatalf("unexpected chunk layout: %q", data[:44])
	}
	if got := binary.LittleEndian.Uint16(data[20:22]); got != 1 {
		t.Fatalf("audio format = %d, want PCM", got)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 1 {
		t.Fatalf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 16000 {
		t.Fatalf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Fatalf("bits per sample = %d", got)
	}

	want := []int16{32767, -32768, 16384, 0, 32767}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(data[44+2*i:]))
		if got != w {
			t.Fatalf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	samples := make([]float64, 1600)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/16000)
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := EncodeWAV(f, FromFloat64(samples, 16000)); err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}
	f.Close()

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	buf, err := NewDecoder(nil).Decode(context.Background(), in, FormatWAV)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if buf.SampleRate() != 16000 || buf.Len() != len(samples) {
		t.Fatalf("decoded %d samples at %d Hz", buf.Len(), buf.SampleRate())
	}
	for i, v := range buf.Float64s() {
		if math.Abs(v-samples[i]) > 1.0/16384 {
			t.Fatalf("sample %d = %v, want %v", i, v, samples[i])
		}
	}
}

func TestDecodeStereoDownmix(t *testing.T) {
	t.Parallel()

	data := pcm16WAV(8000, 2, []int16{16384, 0, -16384, -16384, 8192, 24576})
	buf, err := NewDecoder(nil).Decode(context.Background(), bytes.NewReader(data), FormatWAV)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []float32{0.25, -0.5, 0.5}
	got := buf.Samples()
	if len(got) != len(want) {
		t.Fatalf("samples = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Fatalf("samples = %v, want %v", got, want)
		}
	}
}

func TestDecodeMaxDuration(t *testing.T) {
	t.Parallel()

	data := pcm16WAV(1000, 1, make([]int16, 3000))
	dec := NewDecoder(&DecoderConfig{MaxDuration: time.Second})
	buf, err := dec.Decode(context.Background(), bytes.NewReader(data), FormatWAV)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if buf.Len() != 1000 {
		t.Fatalf("Len = %d, want 1000", buf.Len())
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(nil)

	_, err := dec.Decode(context.Background(), bytes.NewReader([]byte("definitely not audio data")), FormatWAV)
	if !errors.Is(err, ErrDecodeFailure) || !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("invalid WAV error = %v", err)
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Format != FormatWAV {
		t.Fatalf("error %v is not a *DecodeError for wav", err)
	}

	_, err = dec.Decode(context.Background(), bytes.NewReader(nil), FormatAAC)
	if !errors.Is(err, ErrDecodeFailure) || !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("aac error = %v", err)
	}
	if dec.Supports(FormatAAC) || !dec.Supports(FormatOGG) {
		t.Fatal("unexpected Supports result")
	}

	garbage := []byte("definitely not audio data")
	for format, want := range map[Format]string{FormatMP3: "open mp3 stream", FormatOGG: "read ogg vorbis stream"} {
		_, err = dec.Decode(context.Background(), bytes.NewReader(garbage), format)
		if !errors.Is(err, ErrDecodeFailure) || !strings.Contains(err.Error(), want) {
			t.Fatalf("%s error = %v, want decode failure mentioning %q", format, err, want)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = dec.Decode(ctx, bytes.NewReader(pcm16WAV(8000, 1, []int16{1})), FormatWAV)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled decode error = %v", err)
	}
}

func TestEncodeWAVRejectsInvalidRate(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := EncodeWAV(f, FromFloat64([]float64{0.1}, 0)); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("EncodeWAV error = %v", err)
	}
}

func TestDecodeUnsigned8BitWAV(t *testing.T) {
	t.Parallel()

	data := pcm8WAV(8000, []byte{0, 128, 255, 192})
	buf, err := NewDecoder(nil).Decode(context.Background(), bytes.NewReader(data), FormatWAV)
	if err != nil {
		t.Fatalf("Decode error = %v", err)
	}

	want := []float32{-1, 0, 127.0 / 128, 0.5}
	got := buf.Samples()
	if len(got) != len(want) {
		t.Fatalf("samples = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

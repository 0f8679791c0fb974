// Package wav reads and writes the uncompressed PCM container used for
// imported recordings, remote uploads, and saved audio artifacts: mono
// 32-bit float samples.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	formatPCM       = 1
	formatIEEEFloat = 3

	headerSize = 44
)

var errShortFile = errors.New("wav: file truncated")

// Encode writes mono float32 samples at the given rate to w.
func Encode(w io.Writer, samples []float32, sampleRate int) error {
	dataSize := len(samples) * 4

	header := make([]byte, headerSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatIEEEFloat)
	binary.LittleEndian.PutUint16(header[22:24], 1) // mono
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*4))
	binary.LittleEndian.PutUint16(header[32:34], 4)
	binary.LittleEndian.PutUint16(header[34:36], 32)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := w.Write(header); err != nil {
		return err
	}

	data := make([]byte, dataSize)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}
	_, err := w.Write(data)
	return err
}

// EncodeBytes renders mono float32 samples as an in-memory WAV byte stream.
func EncodeBytes(samples []float32, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerSize + len(samples)*4)
	if err := Encode(&buf, samples, sampleRate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes mono float32 samples to a WAV file at path.
func WriteFile(path string, samples []float32, sampleRate int) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := Encode(f, samples, sampleRate); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes a WAV file into float32 samples plus the header's rate and
// channel count. Integer PCM is converted to float by dividing by the type's
// max magnitude; samples stay interleaved.
func ReadFile(path string) ([]float32, int, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, err
	}
	return Decode(raw)
}

// Decode parses WAV bytes into interleaved float32 samples, sample rate, and
// channel count.
func Decode(raw []byte) ([]float32, int, int, error) {
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, 0, 0, errors.New("wav: not a RIFF/WAVE file")
	}

	var (
		format        uint16
		channels      int
		sampleRate    int
		bitsPerSample int
		data          []byte
		haveFmt       bool
	)

	offset := 12
	for offset+8 <= len(raw) {
		chunkID := string(raw[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(raw[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(raw) {
			chunkSize = len(raw) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, 0, 0, errShortFile
			}
			format = binary.LittleEndian.Uint16(raw[body : body+2])
			channels = int(binary.LittleEndian.Uint16(raw[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(raw[body+14 : body+16]))
			haveFmt = true
		case "data":
			data = raw[body : body+chunkSize]
		}

		// Chunks are word-aligned.
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if !haveFmt || data == nil {
		return nil, 0, 0, errShortFile
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, 0, 0, fmt.Errorf("wav: invalid format: channels=%d rate=%d", channels, sampleRate)
	}

	samples, err := decodeSamples(data, format, bitsPerSample)
	if err != nil {
		return nil, 0, 0, err
	}
	return samples, sampleRate, channels, nil
}

func decodeSamples(data []byte, format uint16, bitsPerSample int) ([]float32, error) {
	switch {
	case format == formatIEEEFloat && bitsPerSample == 32:
		samples := make([]float32, len(data)/4)
		for i := range samples {
			samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return samples, nil
	case format == formatPCM && bitsPerSample == 16:
		samples := make([]float32, len(data)/2)
		for i := range samples {
			v := int16(binary.LittleEndian.Uint16(data[i*2:]))
			samples[i] = float32(v) / float32(math.MaxInt16)
		}
		return samples, nil
	case format == formatPCM && bitsPerSample == 32:
		samples := make([]float32, len(data)/4)
		for i := range samples {
			v := int32(binary.LittleEndian.Uint32(data[i*4:]))
			samples[i] = float32(float64(v) / float64(math.MaxInt32))
		}
		return samples, nil
	default:
		return nil, fmt.Errorf("wav: unsupported sample format (format=%d bits=%d)", format, bitsPerSample)
	}
}

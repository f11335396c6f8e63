// Package codec provides the binary transcoding primitives shared by the
// analysis clients and the live audio path: base64 framing and raw PCM16
// conversion to and from normalized float buffers.
package codec

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
)

// DecodeBase64 decodes standard base64 text into raw bytes.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, nil
}

// EncodeBase64 encodes raw bytes as standard base64 text.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// AudioBuffer holds de-interleaved normalized samples, one slice per
// channel. Samples are in the range [-1.0, 1.0].
type AudioBuffer struct {
	Channels   [][]float32
	SampleRate int
}

// FrameCount returns the number of sample frames per channel.
func (b *AudioBuffer) FrameCount() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// DurationSeconds returns the playback duration of the buffer.
func (b *AudioBuffer) DurationSeconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.FrameCount()) / float64(b.SampleRate)
}

// PCM16ToAudioBuffer interprets data as interleaved little-endian 16-bit
// signed PCM, de-interleaves it per channel and normalizes each sample by
// dividing by 32768. The byte length must be a multiple of 2*channelCount.
func PCM16ToAudioBuffer(data []byte, sampleRate, channelCount int) (*AudioBuffer, error) {
	if channelCount <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", channelCount)
	}
	frameBytes := 2 * channelCount
	if len(data)%frameBytes != 0 {
		return nil, fmt.Errorf("pcm byte length %d is not a multiple of %d", len(data), frameBytes)
	}

	frameCount := len(data) / frameBytes
	channels := make([][]float32, channelCount)
	for ch := range channels {
		channels[ch] = make([]float32, frameCount)
	}

	for i := 0; i < frameCount; i++ {
		for ch := 0; ch < channelCount; ch++ {
			off := (i*channelCount + ch) * 2
			sample := int16(data[off]) | int16(data[off+1])<<8
			channels[ch][i] = float32(sample) / 32768.0
		}
	}

	return &AudioBuffer{Channels: channels, SampleRate: sampleRate}, nil
}

// AudioBufferToPCM16 interleaves the buffer back into little-endian 16-bit
// signed PCM. Samples outside [-1,1] are clamped, not rejected.
func AudioBufferToPCM16(buf *AudioBuffer) []byte {
	channelCount := len(buf.Channels)
	if channelCount == 0 {
		return nil
	}
	frameCount := buf.FrameCount()
	out := make([]byte, frameCount*channelCount*2)

	for i := 0; i < frameCount; i++ {
		for ch := 0; ch < channelCount; ch++ {
			s := buf.Channels[ch][i]
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			v := int32(s * 32768)
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			off := (i*channelCount + ch) * 2
			out[off] = byte(v)
			out[off+1] = byte(v >> 8)
		}
	}

	return out
}

// Float32ToPCM16 converts a single channel of normalized samples straight
// to little-endian PCM16 bytes. Used for microphone frames on the live
// path, where the capture surface delivers float samples.
func Float32ToPCM16(samples []float32) []byte {
	buf := &AudioBuffer{Channels: [][]float32{samples}}
	return AudioBufferToPCM16(buf)
}

// ReadAllBase64 drains r and returns its content base64-encoded. It is the
// file-upload counterpart of EncodeBase64; cancellation is observed before
// the read starts.
func ReadAllBase64(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return EncodeBase64(data), nil
}

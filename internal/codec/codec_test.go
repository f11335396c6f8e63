package codec

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase64_RoundTrip(t *testing.T) {
	data := []byte{0x00, 0x01, 0x7f, 0x80, 0xff}
	encoded := EncodeBase64(data)

	decoded, err := DecodeBase64(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestDecodeBase64_Malformed(t *testing.T) {
	_, err := DecodeBase64("not!!valid@@base64")
	assert.Error(t, err)
}

func TestPCM16ToAudioBuffer_Mono(t *testing.T) {
	// Two frames: 0 and -32768
	data := []byte{0x00, 0x00, 0x00, 0x80}

	buf, err := PCM16ToAudioBuffer(data, 24000, 1)
	require.NoError(t, err)
	require.Len(t, buf.Channels, 1)
	require.Equal(t, 2, buf.FrameCount())

	assert.InDelta(t, 0.0, buf.Channels[0][0], 1e-6)
	assert.InDelta(t, -1.0, buf.Channels[0][1], 1e-6)
}

func TestPCM16ToAudioBuffer_Stereo(t *testing.T) {
	// One frame: left = 16384, right = -16384
	data := []byte{0x00, 0x40, 0x00, 0xc0}

	buf, err := PCM16ToAudioBuffer(data, 48000, 2)
	require.NoError(t, err)
	require.Len(t, buf.Channels, 2)
	require.Equal(t, 1, buf.FrameCount())

	assert.InDelta(t, 0.5, buf.Channels[0][0], 1e-6)
	assert.InDelta(t, -0.5, buf.Channels[1][0], 1e-6)
}

func TestPCM16ToAudioBuffer_BadLength(t *testing.T) {
	_, err := PCM16ToAudioBuffer([]byte{0x00, 0x00, 0x01}, 24000, 1)
	assert.Error(t, err)

	// Valid for mono but not for stereo
	_, err = PCM16ToAudioBuffer([]byte{0x00, 0x00}, 24000, 2)
	assert.Error(t, err)
}

func TestAudioBufferToPCM16_Clamps(t *testing.T) {
	buf := &AudioBuffer{
		Channels:   [][]float32{{2.0, -2.0, 0.0}},
		SampleRate: 24000,
	}

	out := AudioBufferToPCM16(buf)
	require.Len(t, out, 6)

	decoded, err := PCM16ToAudioBuffer(out, 24000, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.99997, decoded.Channels[0][0], 1e-4)
	assert.InDelta(t, -1.0, decoded.Channels[0][1], 1e-4)
	assert.InDelta(t, 0.0, decoded.Channels[0][2], 1e-6)
}

func TestPCM16RoundTrip_WithinOneLSB(t *testing.T) {
	for _, channels := range []int{1, 2} {
		data := make([]byte, 256*channels)
		for i := range data {
			data[i] = byte(i * 31)
		}

		buf, err := PCM16ToAudioBuffer(data, 16000, channels)
		require.NoError(t, err)
		out := AudioBufferToPCM16(buf)
		require.Equal(t, len(data), len(out))

		for i := 0; i < len(data); i += 2 {
			orig := int16(data[i]) | int16(data[i+1])<<8
			got := int16(out[i]) | int16(out[i+1])<<8
			diff := int32(orig) - int32(got)
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff, int32(1), "sample %d channels %d", i/2, channels)
		}
	}
}

func TestDurationSeconds(t *testing.T) {
	// 24000 frames at 24kHz mono = 1 second
	data := make([]byte, 24000*2)
	buf, err := PCM16ToAudioBuffer(data, 24000, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, buf.DurationSeconds(), 1e-9)
}

func TestReadAllBase64(t *testing.T) {
	payload := []byte("jpeg bytes here")
	encoded, err := ReadAllBase64(context.Background(), bytes.NewReader(payload))
	require.NoError(t, err)

	decoded, err := DecodeBase64(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestReadAllBase64_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadAllBase64(ctx, bytes.NewReader([]byte("x")))
	assert.Error(t, err)
}

func TestFloat32ToPCM16(t *testing.T) {
	out := Float32ToPCM16([]float32{0.0, 0.5, -0.5})
	require.Len(t, out, 6)

	buf, err := PCM16ToAudioBuffer(out, 16000, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, buf.Channels[0][0], 1e-4)
	assert.InDelta(t, 0.5, buf.Channels[0][1], 1e-4)
	assert.InDelta(t, -0.5, buf.Channels[0][2], 1e-4)
}

package probe

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwelin/soundgraph"
)

// writeWAV writes a 44.1kHz 16-bit mono PCM file holding samples zero samples.
func writeWAV(t *testing.T, path string, samples int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	dataSize := uint32(samples * 2)
	u32 := func(v uint32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		return b
	}

	w := func(b []byte) {
		_, err := f.Write(b)
		require.NoError(t, err)
	}
	w([]byte("RIFF"))               // ChunkID
	w(u32(36 + dataSize))           // ChunkSize
	w([]byte("WAVE"))               // Format
	w([]byte("fmt "))               // Subchunk1ID
	w([]byte{0x10, 0, 0, 0})        // Subchunk1Size PCM
	w([]byte{0x1, 0})               // AudioFormat PCM
	w([]byte{0x1, 0})               // NumChannels Mono
	w([]byte{0x44, 0xAC, 0x0, 0x0}) // SampleRate 44100Hz
	w([]byte{0x88, 0x58, 0x1, 0x0}) // ByteRate 44100 * 1 * 16/8
	w([]byte{0x2, 0x0})             // BlockAlign
	w([]byte{0x10, 0x0})            // BitsPerSample
	w([]byte("data"))               // Subchunk2ID
	w(u32(dataSize))                // Subchunk2Size
	w(make([]byte, dataSize))
}

func TestWAVDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.wav")
	writeWAV(t, path, 2*44100)

	d, err := WAV{}.Duration(path)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-3)
}

func TestWAVUnreadable(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not riff data"), 0644))

	tests := map[string]string{
		"missing":   filepath.Join(dir, "missing.wav"),
		"garbage":   garbage,
		"extension": filepath.Join(dir, "loop.flac"),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := WAV{}.Duration(path)
			assert.ErrorIs(t, err, soundgraph.ErrAssetUnreadable)
		})
	}
}

func TestFixed(t *testing.T) {
	d, err := Fixed(3.5).Duration("anything")
	require.NoError(t, err)
	assert.Equal(t, 3.5, d)
}

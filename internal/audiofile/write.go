package audiofile

import (
	"fmt"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// WriteStereoWAV writes interleaved stereo samples as a 16-bit PCM WAV file.
func WriteStereoWAV(path string, interleaved []float32, sampleRate int) error {
	if len(interleaved)%2 != 0 {
		return fmt.Errorf("interleaved stereo data has odd length %d", len(interleaved))
	}
	return writeWAV(path, interleaved, sampleRate, 2)
}

// WriteMonoWAV writes mono samples as a 16-bit PCM WAV file.
func WriteMonoWAV(path string, data []float32, sampleRate int) error {
	return writeWAV(path, data, sampleRate, 1)
}

func writeWAV(path string, data []float32, sampleRate int, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Package audiofile reads and writes the audio container formats the command
// line tools accept.
package audiofile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// Load decodes an audio file into an interleaved float32 buffer. The format
// is chosen by file extension: .wav, .mp3, or .ogg.
func Load(path string) (*audio.Float32Buffer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return loadWAV(path)
	case ".mp3":
		return loadMP3(path)
	case ".ogg":
		return loadOgg(path)
	default:
		return nil, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
}

func loadWAV(path string) (*audio.Float32Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid wav buffer: %s", path)
	}
	return buf, nil
}

func loadMP3(path string) (*audio.Float32Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("invalid mp3 file %s: %w", path, err)
	}

	// go-mp3 streams 16-bit little-endian PCM, always two channels.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	samples := len(raw) / 2
	data := make([]float32, samples)
	for i := 0; i < samples; i++ {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		data[i] = float32(v) / 32768.0
	}

	return &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  dec.SampleRate(),
			NumChannels: 2,
		},
		Data:           data,
		SourceBitDepth: 16,
	}, nil
}

func loadOgg(path string) (*audio.Float32Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("invalid ogg file %s: %w", path, err)
	}
	if format.Channels < 1 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid ogg stream: %s", path)
	}

	return &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  format.SampleRate,
			NumChannels: format.Channels,
		},
		Data: data,
	}, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/xkazm04/retone/bank"
	"github.com/xkazm04/retone/internal/audiofile"
	"github.com/xkazm04/retone/playback"
	"github.com/xkazm04/retone/preset"
	"github.com/xkazm04/retone/score"
	"github.com/xkazm04/retone/transcribe"
)

func main() {
	input := flag.String("in", "", "Input audio file (.wav, .mp3, .ogg)")
	presetPath := flag.String("preset", "", "Remap preset JSON path (optional)")
	sampleRate := flag.Int("rate", 44100, "Playback sample rate in Hz")
	bankSource := flag.String("bank", "", "SoundFont path or URL (default: fetch the shared bank)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "missing -in: an input audio file is required")
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()

	buf, err := audiofile.Load(*input)
	if err != nil {
		die("failed to read %s: %v", *input, err)
	}

	var remap score.Remap
	if *presetPath != "" {
		remap, err = preset.Load(*presetPath)
		if err != nil {
			die("failed to load preset %s: %v", *presetPath, err)
		}
	}

	fmt.Printf("Extracting from %s...\n", *input)
	res, err := transcribe.Extract(ctx, buf, nil)
	if err != nil {
		die("extraction failed: %v", err)
	}
	fmt.Printf("Found %d notes in %d tracks, tempo %d BPM\n", res.NoteCount(), len(res.Tracks), res.Tempo)

	b, err := loadBank(ctx, *bankSource)
	if err != nil {
		die("failed to load sound bank: %v", err)
	}

	h, err := playback.Play(res, remap, b, playback.NewOtoDevice(*sampleRate))
	if err != nil {
		die("playback failed: %v", err)
	}

	fmt.Printf("Playing %.2fs, Ctrl+C to stop...\n", res.Duration)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	select {
	case <-h.Done():
	case <-sig:
		h.Stop()
	}
	fmt.Println("Done.")
}

func loadBank(ctx context.Context, source string) (*bank.Bank, error) {
	switch {
	case source == "":
		return bank.Load(ctx)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return bank.Fetch(ctx, source)
	default:
		return bank.Open(source)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

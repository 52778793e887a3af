package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/xkazm04/retone/internal/audiofile"
	"github.com/xkazm04/retone/midifile"
	"github.com/xkazm04/retone/transcribe"
)

func main() {
	input := flag.String("in", "", "Input audio file (.wav, .mp3, .ogg)")
	output := flag.String("out", "out.mid", "Output MIDI file path")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "missing -in: an input audio file is required")
		flag.Usage()
		os.Exit(1)
	}

	buf, err := audiofile.Load(*input)
	if err != nil {
		die("failed to read %s: %v", *input, err)
	}
	frames := len(buf.Data) / buf.Format.NumChannels
	fmt.Printf("Extracting from %s (%d Hz, %d channel(s), %.2fs)...\n",
		*input, buf.Format.SampleRate, buf.Format.NumChannels,
		float64(frames)/float64(buf.Format.SampleRate))

	res, err := transcribe.Extract(context.Background(), buf, nil)
	if err != nil {
		die("extraction failed: %v", err)
	}

	data, err := midifile.Encode(res)
	if err != nil {
		die("midi encode failed: %v", err)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		die("failed to write %s: %v", *output, err)
	}

	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("Tempo: %d BPM, Notes: %d\n", res.Tempo, res.NoteCount())
	for _, tr := range res.Tracks {
		fmt.Printf("  %-8s ch=%d program=%d notes=%d\n", tr.Name, tr.Channel, tr.Program, len(tr.Notes))
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

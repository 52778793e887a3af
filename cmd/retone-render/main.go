package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/go-audio/audio"

	"github.com/xkazm04/retone/analysis"
	"github.com/xkazm04/retone/bank"
	"github.com/xkazm04/retone/internal/audiofile"
	"github.com/xkazm04/retone/preset"
	"github.com/xkazm04/retone/render"
	"github.com/xkazm04/retone/score"
	"github.com/xkazm04/retone/transcribe"
)

func main() {
	input := flag.String("in", "", "Input audio file (.wav, .mp3, .ogg)")
	output := flag.String("out", "render.wav", "Output WAV file path")
	presetPath := flag.String("preset", "", "Remap preset JSON path (optional)")
	sampleRate := flag.Int("rate", 44100, "Render sample rate in Hz")
	bankSource := flag.String("bank", "", "SoundFont path or URL (default: fetch the shared bank)")
	report := flag.Bool("report", false, "Print fidelity metrics against the source recording")
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

	fmt.Printf("Rendering at %d Hz...\n", *sampleRate)
	out, err := render.Render(ctx, res, remap, b, *sampleRate)
	if err != nil {
		die("render failed: %v", err)
	}

	if err := audiofile.WriteStereoWAV(*output, out, *sampleRate); err != nil {
		die("failed to write %s: %v", *output, err)
	}
	fmt.Printf("Wrote %s (%d frames, %.2fs)\n", *output, len(out)/2, float64(len(out)/2)/float64(*sampleRate))

	if *report {
		printReport(buf, out, *sampleRate)
	}
}

// printReport compares the rendered resynthesis against the source recording
// after bringing both to the render rate in mono.
func printReport(src *audio.Float32Buffer, rendered []float32, sampleRate int) {
	ref := audiofile.DownmixMono64(src.Data, src.Format.NumChannels)
	ref, err := audiofile.MatchRate(ref, src.Format.SampleRate, sampleRate)
	if err != nil {
		die("failed to resample source for report: %v", err)
	}
	cand := audiofile.DownmixMono64(rendered, 2)

	m := analysis.Compare(ref, cand, sampleRate)
	fmt.Println()
	fmt.Printf("Reference frames: %d\n", m.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", m.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", m.AlignedFrames)
	fmt.Printf("Lag:              %d samples (%.3f ms)\n", m.LagSamples, 1000.0*float64(m.LagSamples)/float64(m.SampleRate))
	fmt.Printf("Time RMSE:        %.6f\n", m.TimeRMSE)
	fmt.Printf("Envelope RMSE:    %.1f dB\n", m.EnvelopeRMSEDB)
	fmt.Printf("Spectral RMSE:    %.1f dB\n", m.SpectralRMSEDB)
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", m.Score)
	fmt.Printf("Similarity:       %.2f%%\n", m.Similarity*100.0)
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

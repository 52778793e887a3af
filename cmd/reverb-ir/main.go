package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/xkazm04/retone/internal/audiofile"
	"github.com/xkazm04/retone/irsynth"
)

func main() {
	cfg := irsynth.DefaultConfig()

	output := flag.String("output", "reverb-ir.wav", "Output WAV path")
	flag.IntVar(&cfg.SampleRate, "rate", cfg.SampleRate, "Output sample rate")
	flag.Float64Var(&cfg.DurationS, "duration", cfg.DurationS, "IR length in seconds")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flag.Float64Var(&cfg.PreDelayMS, "pre-delay", cfg.PreDelayMS, "Pre-delay in milliseconds")
	flag.IntVar(&cfg.EarlyCount, "early", cfg.EarlyCount, "Number of early reflections")
	flag.Float64Var(&cfg.EarlyLevel, "early-level", cfg.EarlyLevel, "Early reflection level")
	flag.Float64Var(&cfg.LateLevel, "late", cfg.LateLevel, "Diffuse late-tail level")
	flag.Float64Var(&cfg.StereoWidth, "stereo-width", cfg.StereoWidth, "Stereo decorrelation width")
	flag.Float64Var(&cfg.LowDecayS, "low-decay", cfg.LowDecayS, "Low-frequency decay time (s)")
	flag.Float64Var(&cfg.HighDecayS, "high-decay", cfg.HighDecayS, "High-frequency decay time (s)")
	flag.Float64Var(&cfg.FadeOutS, "fade-out", cfg.FadeOutS, "Fade-out length in seconds")
	flag.Float64Var(&cfg.NormalizePeak, "normalize", cfg.NormalizePeak, "Peak normalization target")
	flag.Parse()

	left, right, err := irsynth.Generate(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reverb-ir error: %v\n", err)
		os.Exit(1)
	}

	interleaved := make([]float32, len(left)*2)
	for i := range left {
		interleaved[i*2] = left[i]
		interleaved[i*2+1] = right[i]
	}
	if err := audiofile.WriteStereoWAV(*output, interleaved, cfg.SampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "wav write error: %v\n", err)
		os.Exit(1)
	}

	peak, rms := stats(left, right)
	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("SampleRate: %d Hz, Duration: %.3f s, Samples: %d\n", cfg.SampleRate, cfg.DurationS, len(left))
	fmt.Printf("Peak: %.6f, RMS: %.6f\n", peak, rms)
}

func stats(left []float32, right []float32) (peak float64, rms float64) {
	if len(left) == 0 || len(right) == 0 {
		return 0, 0
	}
	var sum float64
	n := len(left) * 2
	for i := 0; i < len(left); i++ {
		lv := float64(left[i])
		rv := float64(right[i])
		a := math.Abs(lv)
		if b := math.Abs(rv); b > a {
			a = b
		}
		if a > peak {
			peak = a
		}
		sum += lv*lv + rv*rv
	}
	return peak, math.Sqrt(sum / float64(n))
}

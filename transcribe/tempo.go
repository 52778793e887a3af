package transcribe

import (
	"math"
	"sort"
)

// DefaultTempo is returned when the recording has too few onsets to estimate
// a pulse from.
const DefaultTempo = 120

// Gaps outside this window are silence or double-triggers, not beats.
const (
	minOnsetGap = 0.05
	maxOnsetGap = 2.0
)

// EstimateTempo derives a global BPM from note onset times: the median of
// successive onset gaps inside the plausible beat window, converted to BPM
// and clamped to 40..240. Fewer than 3 onsets, or none with a usable gap,
// yields DefaultTempo.
func EstimateTempo(onsets []float64) int {
	if len(onsets) < 3 {
		return DefaultTempo
	}

	sorted := append([]float64(nil), onsets...)
	sort.Float64s(sorted)

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i] - sorted[i-1]
		if gap > minOnsetGap && gap < maxOnsetGap {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) == 0 {
		return DefaultTempo
	}

	bpm := int(math.Round(60.0 / median(gaps)))
	if bpm < 40 {
		return 40
	}
	if bpm > 240 {
		return 240
	}
	return bpm
}

func median(x []float64) float64 {
	sort.Float64s(x)
	n := len(x)
	if n%2 == 1 {
		return x[n/2]
	}
	return 0.5 * (x[n/2-1] + x[n/2])
}

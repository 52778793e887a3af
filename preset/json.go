// Package preset loads remap configurations from JSON files.
package preset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xkazm04/retone/score"
)

// File is the JSON schema for remap presets. Pointer fields distinguish an
// absent setting from an explicit zero.
type File struct {
	Transposition *int          `json:"transposition"`
	VelocityCurve *string       `json:"velocity_curve"`
	Swaps         []SwapSetting `json:"swaps"`
}

// SwapSetting is one per-track voicing override in a preset file. Track and
// Program are required; a swap replaces the track's program outright.
type SwapSetting struct {
	Track         *int    `json:"track"`
	Program       *int    `json:"program"`
	Transposition *int    `json:"transposition"`
	VelocityCurve *string `json:"velocity_curve"`
}

// Load reads a preset JSON file and applies it on top of the zero remap.
func Load(path string) (score.Remap, error) {
	var r score.Remap

	b, err := os.ReadFile(path)
	if err != nil {
		return r, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return r, err
	}

	if err := Apply(&r, &f); err != nil {
		return r, err
	}
	return r, nil
}

// Apply applies a parsed preset file onto an existing remap.
func Apply(dst *score.Remap, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination remap")
	}
	if f == nil {
		return nil
	}

	if f.Transposition != nil {
		dst.Transposition = *f.Transposition
	}
	if f.VelocityCurve != nil {
		curve, err := score.ParseVelocityCurve(*f.VelocityCurve)
		if err != nil {
			return fmt.Errorf("velocity_curve: %w", err)
		}
		dst.Curve = curve
	}

	for i, s := range f.Swaps {
		if s.Track == nil {
			return fmt.Errorf("swaps[%d].track is required", i)
		}
		if *s.Track < 0 {
			return fmt.Errorf("swaps[%d].track must be >= 0", i)
		}
		if s.Program == nil {
			return fmt.Errorf("swaps[%d].program is required", i)
		}
		if *s.Program < 0 || *s.Program > 127 {
			return fmt.Errorf("swaps[%d].program must be in 0..127", i)
		}

		sw := score.InstrumentSwap{
			Track:   *s.Track,
			Program: *s.Program,
		}
		if s.Transposition != nil {
			sw.Transposition = *s.Transposition
		}
		if s.VelocityCurve != nil {
			curve, err := score.ParseVelocityCurve(*s.VelocityCurve)
			if err != nil {
				return fmt.Errorf("swaps[%d].velocity_curve: %w", i, err)
			}
			sw.Curve = &curve
		}
		dst.Swaps = append(dst.Swaps, sw)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package window derives the retention-window sequence of a gradient
// from the instrument duty-cycle model and buckets candidates into the
// windows that could contain them.
// See docs/ARCHITECTURE § Window Model.
package window

import (
	"fmt"
	"math"

	"github.com/pdiddy/needler/pkg/types"
)

// DutyCycle parameterizes the window capacity model. A window of width
// w minutes holds floor(w * TargetsPerMinute) peptide slots: shorter
// windows fit fewer concurrent targets per instrument cycle.
type DutyCycle struct {
	// WidthMinutes is the nominal window width.
	WidthMinutes float64

	// TargetsPerMinute is the monitoring rate the instrument sustains.
	TargetsPerMinute float64
}

// Capacity returns the slot count for a window of the given width.
func (d DutyCycle) Capacity(widthMin float64) int {
	return int(math.Floor(widthMin * d.TargetsPerMinute))
}

// BuildWindows partitions [0, gradientLengthMin) into contiguous
// windows of DutyCycle width. The final window is truncated at the
// gradient end and carries a proportionally lower capacity. Returns a
// configuration error for a non-positive gradient or a duty cycle that
// cannot hold a single target per full window.
func BuildWindows(gradientLengthMin int, duty DutyCycle) ([]types.RetentionWindow, error) {
	if gradientLengthMin <= 0 {
		return nil, fmt.Errorf("gradient length must be positive, got %d", gradientLengthMin)
	}
	if duty.WidthMinutes <= 0 {
		return nil, fmt.Errorf("window width must be positive, got %.3f", duty.WidthMinutes)
	}
	if duty.TargetsPerMinute <= 0 {
		return nil, fmt.Errorf("duty-cycle rate must be positive, got %.3f", duty.TargetsPerMinute)
	}
	if duty.Capacity(duty.WidthMinutes) < 1 {
		return nil, fmt.Errorf("duty cycle holds no targets: width %.3f min at %.3f targets/min",
			duty.WidthMinutes, duty.TargetsPerMinute)
	}

	gradient := float64(gradientLengthMin)
	fullCapacity := duty.Capacity(duty.WidthMinutes)
	var windows []types.RetentionWindow
	// Bounds derive from the window index, not a running sum, so float
	// error cannot accumulate into a sliver of a final window.
	for i := 0; ; i++ {
		start := float64(i) * duty.WidthMinutes
		if start >= gradient {
			break
		}
		end := float64(i+1) * duty.WidthMinutes
		capacity := fullCapacity
		if end > gradient {
			end = gradient
			capacity = duty.Capacity(end - start)
		}
		windows = append(windows, types.RetentionWindow{
			Index:    i,
			StartMin: start,
			EndMin:   end,
			Capacity: capacity,
		})
	}
	return windows, nil
}

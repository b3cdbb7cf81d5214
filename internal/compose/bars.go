package compose

import (
	"fmt"
	"math"

	"automix/internal/services"
)

// epsilon absorbs floating point noise in bar arithmetic.
const epsilon = 1e-9

// BarTime returns the length of one four-beat bar in seconds.
func BarTime(bpm float64) float64 {
	return 60 / bpm * 4
}

// OriginalBars returns how many whole bars a clip of duration seconds
// occupies, rounding up. A clip always occupies at least one bar.
func OriginalBars(duration, barTime float64) float64 {
	bars := math.Ceil(duration/barTime - epsilon)
	if bars < 1 {
		return 1
	}
	return bars
}

// ResampleBars chooses how many bars of a clip form the repeating unit when
// tiling a part of barsPart bars.
//
// When the part leaves less room than the clip is long, only the first
// barsPart-offset bars are used and nothing repeats; with no offset this is
// barsPart mod barsOriginal. Otherwise the result is the largest whole number
// of bars in [1, barsOriginal] whose unit (bars plus offset) divides barsPart.
// An offset counts against the part: an 8 bar clip with a 2 bar offset in an
// 8 bar part plays its first 6 bars once rather than failing to tile.
func ResampleBars(barsPart, barsOriginal float64, offset int) (float64, error) {
	room := barsPart - float64(offset)
	if room <= epsilon {
		return 0, services.Wrap(services.ErrInvalidBarArithmetic, "compose", "resample",
			fmt.Sprintf("offset %d leaves no room in a %s bar part", offset, formatBars(barsPart)), nil)
	}
	if room < barsOriginal-epsilon {
		if offset == 0 {
			return math.Mod(barsPart, barsOriginal), nil
		}
		return room, nil
	}
	for bars := math.Floor(barsOriginal + epsilon); bars >= 1; bars-- {
		if divides(barsPart, bars+float64(offset)) {
			return bars, nil
		}
	}
	return 0, services.Wrap(services.ErrInvalidBarArithmetic, "compose", "resample",
		fmt.Sprintf("no unit of at most %s bars plus offset %d tiles %s bars", formatBars(barsOriginal), offset, formatBars(barsPart)), nil)
}

// LoopCount returns how many additional times the unit of bars+offset bars
// plays after the first pass. override replaces the derived count and is
// checked like it: (loop+1)*(bars+offset) must equal barsPart.
func LoopCount(barsPart, bars float64, offset int, override *int) (int, error) {
	unit := bars + float64(offset)
	loop := 0
	switch {
	case override != nil:
		loop = *override
	case approxEqual(barsPart, bars):
		loop = 0
	default:
		loop = int(math.Round(barsPart/unit)) - 1
	}
	if loop < 0 || !approxEqual(float64(loop+1)*unit, barsPart) {
		return 0, services.Wrap(services.ErrInvalidBarArithmetic, "compose", "loop",
			fmt.Sprintf("%d repetitions of %s bars do not fill %s bars", loop+1, formatBars(unit), formatBars(barsPart)), nil)
	}
	return loop, nil
}

func divides(total, unit float64) bool {
	if unit <= 0 {
		return false
	}
	q := total / unit
	return approxEqual(q, math.Round(q))
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func formatBars(v float64) string {
	return fmt.Sprintf("%g", v)
}

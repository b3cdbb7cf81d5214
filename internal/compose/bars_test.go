package compose_test

import (
	"errors"
	"testing"

	"automix/internal/compose"
	"automix/internal/services"
)

func intPtr(v int) *int { return &v }

func TestBarTime(t *testing.T) {
	if got := compose.BarTime(120); got != 2 {
		t.Fatalf("BarTime(120) = %v, want 2", got)
	}
	if got := compose.BarTime(60); got != 4 {
		t.Fatalf("BarTime(60) = %v, want 4", got)
	}
}

func TestOriginalBars(t *testing.T) {
	tests := []struct {
		duration, barTime, want float64
	}{
		{8.5, 4, 3},
		{8, 4, 2},
		{8.0000000001, 4, 2},
		{0.1, 2, 1},
		{0, 2, 1},
	}
	for _, tt := range tests {
		if got := compose.OriginalBars(tt.duration, tt.barTime); got != tt.want {
			t.Fatalf("OriginalBars(%v, %v) = %v, want %v", tt.duration, tt.barTime, got, tt.want)
		}
	}
}

func TestResampleBarsPicksLargestDivisor(t *testing.T) {
	tests := []struct {
		part, original float64
		want           float64
	}{
		{12, 5, 4},
		{6, 3, 3},
		{7, 4, 1},
		{16, 16, 16},
		{5, 8, 5}, // part shorter than clip: remainder slice
		{2.5, 4, 2.5},
	}
	for _, tt := range tests {
		got, err := compose.ResampleBars(tt.part, tt.original, 0)
		if err != nil {
			t.Fatalf("ResampleBars(%v, %v): %v", tt.part, tt.original, err)
		}
		if got != tt.want {
			t.Fatalf("ResampleBars(%v, %v) = %v, want %v", tt.part, tt.original, got, tt.want)
		}
	}
}

func TestResampleBarsDividesPart(t *testing.T) {
	for original := 1; original <= 16; original++ {
		for part := original; part <= 48; part++ {
			bars, err := compose.ResampleBars(float64(part), float64(original), 0)
			if err != nil {
				t.Fatalf("ResampleBars(%d, %d): %v", part, original, err)
			}
			if part%int(bars) != 0 {
				t.Fatalf("bars %v does not divide %d", bars, part)
			}
			for larger := int(bars) + 1; larger <= original; larger++ {
				if part%larger == 0 {
					t.Fatalf("ResampleBars(%d, %d) = %v but %d also divides", part, original, bars, larger)
				}
			}
		}
	}
}

func TestResampleBarsShorterPart(t *testing.T) {
	for original := 2; original <= 16; original++ {
		for part := 1; part < original; part++ {
			bars, err := compose.ResampleBars(float64(part), float64(original), 0)
			if err != nil {
				t.Fatalf("ResampleBars(%d, %d): %v", part, original, err)
			}
			if int(bars) != part%original || bars >= float64(original) {
				t.Fatalf("ResampleBars(%d, %d) = %v", part, original, bars)
			}
		}
	}
}

func TestResampleBarsWithOffset(t *testing.T) {
	// A 4 bar clip with one bar of padding tiles 10 bars with a 5 bar unit.
	bars, err := compose.ResampleBars(10, 4, 1)
	if err != nil || bars != 4 {
		t.Fatalf("ResampleBars(10, 4, 1) = %v, %v", bars, err)
	}
	// 8 bars with one bar of padding: 3+1 divides 8.
	bars, err = compose.ResampleBars(8, 4, 1)
	if err != nil || bars != 3 {
		t.Fatalf("ResampleBars(8, 4, 1) = %v, %v", bars, err)
	}
	// The clip is longer than the room left after the offset.
	bars, err = compose.ResampleBars(4, 8, 1)
	if err != nil || bars != 3 {
		t.Fatalf("ResampleBars(4, 8, 1) = %v, %v", bars, err)
	}
	// A clip as long as the part keeps only what fits after the offset.
	bars, err = compose.ResampleBars(8, 8, 2)
	if err != nil || bars != 6 {
		t.Fatalf("ResampleBars(8, 8, 2) = %v, %v", bars, err)
	}
	if loop, err := compose.LoopCount(8, bars, 2, nil); err != nil || loop != 0 {
		t.Fatalf("LoopCount(8, 6, 2) = %v, %v", loop, err)
	}
	if _, err := compose.ResampleBars(2, 4, 2); !errors.Is(err, services.ErrInvalidBarArithmetic) {
		t.Fatalf("expected offset filling the part to fail, got %v", err)
	}
}

func TestResampleBarsRejectsFractionalTiling(t *testing.T) {
	if _, err := compose.ResampleBars(4.5, 2, 0); !errors.Is(err, services.ErrInvalidBarArithmetic) {
		t.Fatalf("expected ErrInvalidBarArithmetic, got %v", err)
	}
}

func TestLoopCount(t *testing.T) {
	tests := []struct {
		name     string
		part     float64
		bars     float64
		offset   int
		override *int
		want     int
	}{
		{"single pass", 5, 5, 0, nil, 0},
		{"twelve over four", 12, 4, 0, nil, 2},
		{"six over three", 6, 3, 0, nil, 1},
		{"offset unit", 10, 4, 1, nil, 1},
		{"matching override", 12, 4, 0, intPtr(2), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compose.LoopCount(tt.part, tt.bars, tt.offset, tt.override)
			if err != nil {
				t.Fatalf("LoopCount: %v", err)
			}
			if got != tt.want {
				t.Fatalf("LoopCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoopCountRejectsInexactTiling(t *testing.T) {
	tests := []struct {
		name     string
		part     float64
		bars     float64
		offset   int
		override *int
	}{
		{"override too short", 12, 4, 0, intPtr(1)},
		{"override too long", 8, 4, 0, intPtr(3)},
		{"negative override", 8, 4, 0, intPtr(-1)},
		{"unit does not divide", 8, 3, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compose.LoopCount(tt.part, tt.bars, tt.offset, tt.override)
			if !errors.Is(err, services.ErrInvalidBarArithmetic) {
				t.Fatalf("expected ErrInvalidBarArithmetic, got %v", err)
			}
		})
	}
}

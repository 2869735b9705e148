package alert

import (
	"fmt"
	"image/color"
	"strings"
)

// Level is the two-valued alert indicator.
type Level int

const (
	// LevelNormal means the last sample stayed at or below the threshold.
	LevelNormal Level = iota
	// LevelAlert means the last sample exceeded the threshold.
	LevelAlert
)

var (
	// ColorNormal is the transparent brush shown in the normal state.
	ColorNormal = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x00}
	// ColorAlert is the OrangeRed brush shown in the alert state.
	ColorAlert = color.NRGBA{R: 0xFF, G: 0x45, B: 0x00, A: 0xFF}
)

// Classify maps a sample onto a Level. Only values strictly greater
// than threshold raise an alert.
func Classify(value, threshold float64) Level {
	if value > threshold {
		return LevelAlert
	}

	return LevelNormal
}

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelNormal:
		return "normal"
	case LevelAlert:
		return "alert"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Color returns the indicator brush for the level.
func (l Level) Color() color.NRGBA {
	if l == LevelAlert {
		return ColorAlert
	}

	return ColorNormal
}

// ParseLevel converts a level name back into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return LevelNormal, nil
	case "alert":
		return LevelAlert, nil
	default:
		return LevelNormal, fmt.Errorf("unknown alert level %q", s)
	}
}

// HexColor formats a colour as #RRGGBBAA.
func HexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

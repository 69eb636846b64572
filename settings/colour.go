package settings

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// IsColourText reports whether a highlighting cell holds a colour
func IsColourText(s string) bool {
	return strings.HasPrefix(s, "#")
}

// ParseColour parses "#rrggbb" or "#rgb"
func ParseColour(s string) (color.Color, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}

// ColourName returns the canonical lower-case "#rrggbb" form of c.
// ok is false for nil or fully transparent colours.
func ColourName(c color.Color) (string, bool) {
	if c == nil {
		return "", false
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return "", false
	}
	return cc.Clamped().Hex(), true
}

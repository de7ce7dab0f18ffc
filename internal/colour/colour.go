// Package colour normalises configured marker colours and picks a readable
// foreground for a given background.
package colour

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Foreground colours returned by Contrast.
const (
	Dark  = "#000000"
	Light = "#ffffff"
)

// luminanceThreshold splits light from dark backgrounds.
const luminanceThreshold = 0.5

// Normalise returns hex as a lowercase "#rrggbb" string. Three-digit forms
// are expanded and a missing leading '#' is tolerated. Anything that does
// not parse yields fallback unchanged.
func Normalise(hex, fallback string) string {
	c, ok := parse(hex)
	if !ok {
		return fallback
	}
	return c.Hex()
}

// IsValid reports whether hex parses as an RGB colour.
func IsValid(hex string) bool {
	_, ok := parse(hex)
	return ok
}

// Luminance returns the perceived brightness of hex in [0, 1] using the
// 0.299/0.587/0.114 channel weights. Malformed input is treated as white.
func Luminance(hex string) float64 {
	c, ok := parse(hex)
	if !ok {
		return 1
	}
	r, g, b := c.RGB255()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
}

// Contrast maps a background colour to a readable foreground: Dark for
// light backgrounds, Light for dark ones. The choice is monotonic in
// Luminance.
func Contrast(background string) string {
	if Luminance(background) > luminanceThreshold {
		return Dark
	}
	return Light
}

func parse(hex string) (colorful.Color, bool) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return colorful.Color{}, false
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return colorful.Color{}, false
	}
	for _, r := range hex[1:] {
		if !isHexDigit(r) {
			return colorful.Color{}, false
		}
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

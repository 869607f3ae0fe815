package prefs

import (
	"fmt"
	"strconv"
	"strings"
)

// Text shadow presets referenced by the derived recoloring rules. The actual
// shadow values live in the page stylesheet.
const (
	ShadowBlack = "var(--text-shadow-black)"
	ShadowWhite = "var(--text-shadow-white)"
)

// parseHexColor accepts #rgb and #rrggbb.
func parseHexColor(hex string) (r, g, b int, err error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", hex)
	}
	return int(v >> 16), int(v >> 8 & 0xff), int(v & 0xff), nil
}

// IsLightColor applies the perceived brightness formula
// (r*299 + g*587 + b*114) / 1000 and reports whether it exceeds 128.
func IsLightColor(hex string) (bool, error) {
	r, g, b, err := parseHexColor(hex)
	if err != nil {
		return false, err
	}
	brightness := (r*299 + g*587 + b*114) / 1000
	return brightness > 128, nil
}

// InvertColor returns the channel-wise inverse of a hex color.
func InvertColor(hex string) (string, error) {
	r, g, b, err := parseHexColor(hex)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("#%02x%02x%02x", 255-r, 255-g, 255-b), nil
}

package render

import (
	"fmt"
	"image/color"
)

// ParseColor parses "#rrggbb". An empty string selects the default colour
// for body index i.
func ParseColor(hex string, i int) (color.Color, error) {
	if hex == "" {
		if i < len(DefaultColors) {
			return DefaultColors[i], nil
		}
		return color.Black, nil
	}
	var r, g, b uint8
	if len(hex) == 7 && hex[0] == '#' {
		n, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
		if err == nil && n == 3 {
			return color.RGBA{r, g, b, 0xff}, nil
		}
	}
	return nil, fmt.Errorf("render: invalid colour %q, want #rrggbb", hex)
}

package pipeline

import "strconv"

var fallbackColor = [3]float32{0.7, 0.7, 0.7}

// ParseHexColor parses "#rrggbb" into [0,1] components, falling back to
// gray on anything malformed.
func ParseHexColor(s string) [3]float32 {
	if len(s) != 7 || s[0] != '#' {
		return fallbackColor
	}
	var c [3]float32
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return fallbackColor
		}
		c[i] = float32(v) / 255
	}
	return c
}

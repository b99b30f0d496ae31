package scene

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadColor is returned for colours that are not #RRGGBB or #RRGGBBAA.
var ErrBadColor = errors.New("bad colour")

// DefaultColor is used for objects with no colour.
var DefaultColor = [4]uint8{128, 128, 128, 255}

// ParseColor reads #RRGGBB or #RRGGBBAA. An empty string gives DefaultColor.
func ParseColor(hex string) ([4]uint8, error) {
	if hex == "" {
		return DefaultColor, nil
	}
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 && len(h) != 8 {
		return DefaultColor, fmt.Errorf("%w %q", ErrBadColor, hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return DefaultColor, fmt.Errorf("%w %q", ErrBadColor, hex)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return [4]uint8{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

package device

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Color is a 24-bit RGB colour.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ParseColor accepts "#rgb", "#rrggbb", "rrggbb", or a CSS/SVG colour name
// such as "cornflowerblue". Names are case-insensitive.
//
// Returns:
//   - Color: Parsed colour
//   - error: InvalidInputError wrapping ErrInvalidColor if s is not a colour
func ParseColor(s string) (Color, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return Color{}, invalidColor(s)
	}

	if named, ok := colornames.Map[strings.ToLower(in)]; ok {
		return Color{R: named.R, G: named.G, B: named.B}, nil
	}

	hex := strings.TrimPrefix(in, "#")
	switch len(hex) {
	case 3:
		if !strings.HasPrefix(in, "#") {
			return Color{}, invalidColor(s)
		}
	case 6:
	default:
		return Color{}, invalidColor(s)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return Color{}, invalidColor(s)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

func invalidColor(s string) error {
	return &InvalidInputError{Field: "color", Value: s, Err: ErrInvalidColor}
}

// Hex returns the colour as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

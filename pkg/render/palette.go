package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/graphmorph/pkg/network"
)

// Palette maps module labels to fill colours.
type Palette struct {
	colors map[string]colorful.Color
}

var unassignedColor = colorful.Color{R: 0.6, G: 0.6, B: 0.6}

// NewPalette spaces hues evenly around the HCL wheel starting at 15 degrees,
// one per module, with fixed chroma and luminance.
func NewPalette(modules []string) Palette {
	p := Palette{colors: make(map[string]colorful.Color, len(modules))}

	var named []string
	for _, m := range modules {
		if m != network.Unassigned {
			named = append(named, m)
		}
	}
	for i, m := range named {
		hue := 15 + 360*float64(i)/float64(len(named))
		p.colors[m] = colorful.Hcl(hue, 0.6, 0.65).Clamped()
	}
	return p
}

// Color returns the colour of a module. Unknown and unassigned modules are grey.
func (p Palette) Color(module string) color.Color {
	return p.lookup(module)
}

// Hex returns the colour of a module as "#rrggbb".
func (p Palette) Hex(module string) string {
	return p.lookup(module).Hex()
}

func (p Palette) lookup(module string) colorful.Color {
	if c, ok := p.colors[module]; ok {
		return c
	}
	return unassignedColor
}

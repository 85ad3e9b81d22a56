package ansihtml

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type color struct {
	c   colorful.Color
	set bool
}

type style struct {
	fg, bg    color
	bold      bool
	faint     bool
	italic    bool
	underline bool
	reverse   bool
	strike    bool
}

func (s style) isDefault() bool {
	return s == style{}
}

// css renders the style as an inline CSS declaration list.
func (s style) css() string {
	fg, bg := s.fg, s.bg
	if s.reverse {
		if !fg.set {
			fg = color{c: defaultForeground, set: true}
		}
		if !bg.set {
			bg = color{c: defaultBackground, set: true}
		}
		fg, bg = bg, fg
	}
	if s.faint {
		base := defaultForeground
		if fg.set {
			base = fg.c
		}
		fg = color{c: base.BlendRgb(defaultBackground, 0.4), set: true}
	}

	var decls []string
	if fg.set {
		decls = append(decls, "color:"+fg.c.Hex())
	}
	if bg.set {
		decls = append(decls, "background-color:"+bg.c.Hex())
	}
	if s.bold {
		decls = append(decls, "font-weight:bold")
	}
	if s.italic {
		decls = append(decls, "font-style:italic")
	}
	var deco []string
	if s.underline {
		deco = append(deco, "underline")
	}
	if s.strike {
		deco = append(deco, "line-through")
	}
	if len(deco) > 0 {
		decls = append(decls, "text-decoration:"+strings.Join(deco, " "))
	}
	return strings.Join(decls, ";")
}

// apply returns s with the SGR parameters applied in order. It fails on
// the first parameter it cannot represent, leaving s unchanged.
func (s style) apply(params []int) (style, error) {
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			s = style{}
		case p == 1:
			s.bold = true
		case p == 2:
			s.faint = true
		case p == 3:
			s.italic = true
		case p == 4:
			s.underline = true
		case p == 7:
			s.reverse = true
		case p == 9:
			s.strike = true
		case p == 21 || p == 22:
			s.bold, s.faint = false, false
		case p == 23:
			s.italic = false
		case p == 24:
			s.underline = false
		case p == 27:
			s.reverse = false
		case p == 29:
			s.strike = false
		case p >= 30 && p <= 37:
			s.fg = color{c: basePalette[p-30], set: true}
		case p >= 90 && p <= 97:
			s.fg = color{c: basePalette[p-90+8], set: true}
		case p == 39:
			s.fg = color{}
		case p >= 40 && p <= 47:
			s.bg = color{c: basePalette[p-40], set: true}
		case p >= 100 && p <= 107:
			s.bg = color{c: basePalette[p-100+8], set: true}
		case p == 49:
			s.bg = color{}
		case p == 38 || p == 48:
			c, n, err := extendedColor(params[i+1:])
			if err != nil {
				return s, err
			}
			if p == 38 {
				s.fg = c
			} else {
				s.bg = c
			}
			i += n
		default:
			return s, fmt.Errorf("unsupported SGR parameter %d", p)
		}
	}
	return s, nil
}

// extendedColor parses the arguments following 38 or 48 and reports how
// many parameters it consumed.
func extendedColor(args []int) (color, int, error) {
	if len(args) == 0 {
		return color{}, 0, fmt.Errorf("missing extended colour mode")
	}
	switch args[0] {
	case 5:
		if len(args) < 2 || args[1] > 255 {
			return color{}, 0, fmt.Errorf("invalid 256-colour index")
		}
		return color{c: paletteColor(args[1]), set: true}, 2, nil
	case 2:
		if len(args) < 4 {
			return color{}, 0, fmt.Errorf("truncated truecolour value")
		}
		r, g, b := args[1], args[2], args[3]
		if r > 255 || g > 255 || b > 255 {
			return color{}, 0, fmt.Errorf("truecolour component out of range")
		}
		return color{c: rgb(r, g, b), set: true}, 4, nil
	default:
		return color{}, 0, fmt.Errorf("unsupported extended colour mode %d", args[0])
	}
}

// Package theme derives full color palettes from a single seed color.
//
// The ramp is a pinned algorithm: the seed is converted to HSL, lightness
// is moved toward white by the tint steps and toward black by the shade
// steps below, and the result converts back to sRGB with half-up rounding.
// The same seed always yields a byte-identical palette; do not change the
// constants or the conversion order without refreshing every pinned test
// vector.
package theme

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/wrenfold/sitewright/model"
)

// Lightness steps toward white (tints) and toward black (shades).
var (
	tintSteps = []struct {
		slot string
		t    float64
	}{
		{model.SlotLighterAlt, 0.96},
		{model.SlotLighter, 0.84},
		{model.SlotLight, 0.66},
		{model.SlotTertiary, 0.38},
	}
	shadeSteps = []struct {
		slot string
		t    float64
	}{
		{model.SlotSecondary, 0.06},
		{model.SlotDarkAlt, 0.10},
		{model.SlotDark, 0.24},
		{model.SlotDarker, 0.42},
	}
)

// The neutral ramp is fixed and seed-independent.
var neutralSlots = []model.PaletteSlot{
	{Name: model.SlotNeutralLighterAlt, Hex: "#faf9f8"},
	{Name: model.SlotNeutralLighter, Hex: "#f3f2f1"},
	{Name: model.SlotNeutralLight, Hex: "#edebe9"},
	{Name: model.SlotNeutralQuaternaryAlt, Hex: "#e1dfdd"},
	{Name: model.SlotNeutralQuaternary, Hex: "#d0d0d0"},
	{Name: model.SlotNeutralTertiaryAlt, Hex: "#c8c6c4"},
	{Name: model.SlotNeutralTertiary, Hex: "#a19f9d"},
	{Name: model.SlotNeutralSecondary, Hex: "#605e5c"},
	{Name: model.SlotNeutralPrimaryAlt, Hex: "#3b3a39"},
	{Name: model.SlotNeutralPrimary, Hex: "#323130"},
	{Name: model.SlotNeutralDark, Hex: "#201f1e"},
	{Name: model.SlotBlack, Hex: "#000000"},
	{Name: model.SlotWhite, Hex: "#ffffff"},
}

// Built-in palettes used when no valid seed is supplied. Hints are matched
// case-insensitively against site context keywords in declaration order.
var fallbacks = []struct {
	name  string
	seed  string
	hints []string
}{
	{"Clinical Teal", "#038387", []string{"health", "medical", "clinic", "hospital", "care", "patient"}},
	{"Alert Red", "#d13438", []string{"emergency", "incident", "crisis", "safety", "alert"}},
	{"Field Green", "#498205", []string{"environment", "sustainability", "green", "agriculture"}},
	{"Harvest Orange", "#ca5010", []string{"marketing", "creative", "campaign", "event"}},
}

// Palette used when no hint matches.
const (
	defaultName = "Corporate Blue"
	defaultSeed = "#0078d4"
)

var hexSeed = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Engine derives palettes and selects fallbacks from context hints.
type Engine struct{}

// NewEngine creates a theme Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Derive produces the palette for a theme spec. A valid 6-digit hex seed is
// ramped directly; a missing or malformed seed falls back to a built-in
// palette selected by hint keywords, with warnings reported for malformed
// seeds. The returned palette always carries every slot.
func (e *Engine) Derive(spec model.ThemeSpec) (model.Palette, []model.Defect) {
	var warnings []model.Defect

	seed := strings.TrimSpace(spec.SeedHex)
	name := spec.Name

	if seed != "" && !hexSeed.MatchString(seed) {
		warnings = append(warnings, model.Defect{
			Path:    "theme.seed",
			Code:    model.DefectMalformedSeed,
			Message: fmt.Sprintf("seed color %q is not a 6-digit hex color; falling back to a built-in palette", seed),
		})
		seed = ""
	}

	if seed == "" {
		fbName, fbSeed := matchFallback(spec.Hints)
		if name == "" {
			name = fbName
		}
		seed = fbSeed
	}
	if name == "" {
		name = "Custom Theme"
	}

	p := DerivePalette(seed)
	p.Name = name
	return p, warnings
}

// DerivePalette computes the deterministic ramp for a valid seed. The seed
// is lowercased into the themePrimary slot; tints and shades are derived in
// HSL space; the neutral ramp is appended unchanged.
func DerivePalette(seedHex string) model.Palette {
	seed := normalizeHex(seedHex)
	h, s, l := rgbToHSL(parseHex(seed))

	slots := make([]model.PaletteSlot, 0, 9+len(neutralSlots))
	slots = append(slots, model.PaletteSlot{Name: model.SlotPrimary, Hex: seed})
	for _, step := range tintSteps {
		slots = append(slots, model.PaletteSlot{Name: step.slot, Hex: hslToHex(h, s, l+(1.0-l)*step.t)})
	}
	for _, step := range shadeSteps {
		slots = append(slots, model.PaletteSlot{Name: step.slot, Hex: hslToHex(h, s, l*(1.0-step.t))})
	}
	slots = append(slots, neutralSlots...)

	return model.Palette{Seed: seed, Slots: slots}
}

func matchFallback(hints []string) (string, string) {
	joined := strings.ToLower(strings.Join(hints, " "))
	for _, fb := range fallbacks {
		for _, kw := range fb.hints {
			if strings.Contains(joined, kw) {
				return fb.name, fb.seed
			}
		}
	}
	return defaultName, defaultSeed
}

func normalizeHex(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return s
}

func parseHex(s string) (float64, float64, float64) {
	s = strings.TrimPrefix(s, "#")
	r, _ := strconv.ParseUint(s[0:2], 16, 8)
	g, _ := strconv.ParseUint(s[2:4], 16, 8)
	b, _ := strconv.ParseUint(s[4:6], 16, 8)
	return float64(r) / 255.0, float64(g) / 255.0, float64(b) / 255.0
}

func rgbToHSL(r, g, b float64) (h, s, l float64) {
	mx := math.Max(r, math.Max(g, b))
	mn := math.Min(r, math.Min(g, b))
	l = (mx + mn) / 2.0

	if mx == mn {
		return 0.0, 0.0, l
	}

	d := mx - mn
	if l > 0.5 {
		s = d / (2.0 - mx - mn)
	} else {
		s = d / (mx + mn)
	}

	switch mx {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6.0
		}
	case g:
		h = (b-r)/d + 2.0
	default:
		h = (r-g)/d + 4.0
	}
	return h / 6.0, s, l
}

func hslToHex(h, s, l float64) string {
	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1.0 + s)
		} else {
			q = l + s - l*s
		}
		p := 2.0*l - q
		r = hueToRGB(p, q, h+1.0/3.0)
		g = hueToRGB(p, q, h)
		b = hueToRGB(p, q, h-1.0/3.0)
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1.0
	}
	if t > 1 {
		t -= 1.0
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6.0*t
	case t < 0.5:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6.0
	}
	return p
}

func channel(c float64) int {
	return int(math.Floor(c*255.0 + 0.5))
}

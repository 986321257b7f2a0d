package model

// Theme slot names in emission order. The palette always carries every
// slot, including the fixed neutral ramp and the black/white anchors.
const (
	SlotPrimary       = "themePrimary"
	SlotLighterAlt    = "themeLighterAlt"
	SlotLighter       = "themeLighter"
	SlotLight         = "themeLight"
	SlotTertiary      = "themeTertiary"
	SlotSecondary     = "themeSecondary"
	SlotDarkAlt       = "themeDarkAlt"
	SlotDark          = "themeDark"
	SlotDarker        = "themeDarker"
	SlotNeutralLighterAlt    = "neutralLighterAlt"
	SlotNeutralLighter       = "neutralLighter"
	SlotNeutralLight         = "neutralLight"
	SlotNeutralQuaternaryAlt = "neutralQuaternaryAlt"
	SlotNeutralQuaternary    = "neutralQuaternary"
	SlotNeutralTertiaryAlt   = "neutralTertiaryAlt"
	SlotNeutralTertiary      = "neutralTertiary"
	SlotNeutralSecondary     = "neutralSecondary"
	SlotNeutralPrimaryAlt    = "neutralPrimaryAlt"
	SlotNeutralPrimary       = "neutralPrimary"
	SlotNeutralDark          = "neutralDark"
	SlotBlack                = "black"
	SlotWhite                = "white"
)

// PaletteSlot is one named color in a palette.
type PaletteSlot struct {
	Name string
	Hex  string
}

// Palette is a full derived color set. Slots are ordered so that two
// palettes derived from the same seed serialize identically.
type Palette struct {
	Name  string
	Seed  string
	Slots []PaletteSlot
}

// Get returns the hex value of the named slot, or the empty string when
// the slot is absent.
func (p Palette) Get(name string) string {
	for _, s := range p.Slots {
		if s.Name == name {
			return s.Hex
		}
	}
	return ""
}

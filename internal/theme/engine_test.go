package theme

import (
	"reflect"
	"testing"

	"github.com/wrenfold/sitewright/model"
)

// Pinned ramp for seed #d13438. These values are the reproducibility
// contract; a change here means the ramp algorithm changed.
var rampD13438 = map[string]string{
	model.SlotPrimary:    "#d13438",
	model.SlotLighterAlt: "#fdf7f7",
	model.SlotLighter:    "#f8dfdf",
	model.SlotLight:      "#efbabb",
	model.SlotTertiary:   "#e28184",
	model.SlotSecondary:  "#c82d31",
	model.SlotDarkAlt:    "#c02b2f",
	model.SlotDark:       "#a22528",
	model.SlotDarker:     "#7b1c1e",
}

func TestDerivePalette_pinnedRamp(t *testing.T) {
	p := DerivePalette("#d13438")
	for slot, want := range rampD13438 {
		if got := p.Get(slot); got != want {
			t.Errorf("%s = %s, want %s", slot, got, want)
		}
	}
}

func TestDerivePalette_deterministic(t *testing.T) {
	a := DerivePalette("#d13438")
	b := DerivePalette("#d13438")
	if !reflect.DeepEqual(a, b) {
		t.Error("two derivations of the same seed differ")
	}
}

func TestDerivePalette_normalizesSeedSpelling(t *testing.T) {
	a := DerivePalette("#D13438")
	b := DerivePalette("d13438")
	if a.Get(model.SlotPrimary) != "#d13438" || b.Get(model.SlotPrimary) != "#d13438" {
		t.Errorf("primary = %s / %s, want #d13438", a.Get(model.SlotPrimary), b.Get(model.SlotPrimary))
	}
}

func TestDerivePalette_carriesEverySlot(t *testing.T) {
	p := DerivePalette("#0078d4")

	wantSlots := []string{
		model.SlotPrimary, model.SlotLighterAlt, model.SlotLighter, model.SlotLight,
		model.SlotTertiary, model.SlotSecondary, model.SlotDarkAlt, model.SlotDark,
		model.SlotDarker, model.SlotNeutralLighterAlt, model.SlotNeutralLighter,
		model.SlotNeutralLight, model.SlotNeutralQuaternaryAlt, model.SlotNeutralQuaternary,
		model.SlotNeutralTertiaryAlt, model.SlotNeutralTertiary, model.SlotNeutralSecondary,
		model.SlotNeutralPrimaryAlt, model.SlotNeutralPrimary, model.SlotNeutralDark,
		model.SlotBlack, model.SlotWhite,
	}
	if len(p.Slots) != len(wantSlots) {
		t.Fatalf("len(Slots) = %d, want %d", len(p.Slots), len(wantSlots))
	}
	for i, want := range wantSlots {
		if p.Slots[i].Name != want {
			t.Errorf("Slots[%d] = %s, want %s", i, p.Slots[i].Name, want)
		}
	}
	if got := p.Get(model.SlotWhite); got != "#ffffff" {
		t.Errorf("white = %s, want #ffffff", got)
	}
	if got := p.Get(model.SlotNeutralPrimary); got != "#323130" {
		t.Errorf("neutralPrimary = %s, want #323130", got)
	}
}

func TestDerivePalette_grayscaleSeed(t *testing.T) {
	p := DerivePalette("#808080")
	if got := p.Get(model.SlotLighterAlt); got == "" {
		t.Fatal("grayscale seed produced no tint")
	}
	// Saturation stays zero through the ramp.
	if got := p.Get(model.SlotDark); got != "#616161" {
		t.Errorf("dark shade = %s, want #616161", got)
	}
}

func TestDerive_validSeed(t *testing.T) {
	e := NewEngine()
	p, warnings := e.Derive(model.ThemeSpec{SeedHex: "#d13438", Name: "Ops Red"})
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if p.Name != "Ops Red" {
		t.Errorf("Name = %q, want Ops Red", p.Name)
	}
	if p.Get(model.SlotPrimary) != "#d13438" {
		t.Errorf("primary = %s, want #d13438", p.Get(model.SlotPrimary))
	}
}

func TestDerive_malformedSeedWarnsAndFallsBack(t *testing.T) {
	e := NewEngine()
	p, warnings := e.Derive(model.ThemeSpec{SeedHex: "#12zz34", Hints: []string{"hospital intranet"}})

	if len(warnings) != 1 || warnings[0].Code != model.DefectMalformedSeed {
		t.Fatalf("warnings = %v, want one MALFORMED_THEME_SEED", warnings)
	}
	if p.Name != "Clinical Teal" || p.Get(model.SlotPrimary) != "#038387" {
		t.Errorf("palette = %q/%s, want Clinical Teal #038387", p.Name, p.Get(model.SlotPrimary))
	}
}

func TestDerive_hintSelection(t *testing.T) {
	tests := []struct {
		hints    []string
		wantName string
		wantSeed string
	}{
		{[]string{"Emergency response tracker"}, "Alert Red", "#d13438"},
		{[]string{"sustainability initiatives"}, "Field Green", "#498205"},
		{nil, "Corporate Blue", "#0078d4"},
		{[]string{"nothing matching here"}, "Corporate Blue", "#0078d4"},
	}
	e := NewEngine()
	for _, tt := range tests {
		p, _ := e.Derive(model.ThemeSpec{Hints: tt.hints})
		if p.Name != tt.wantName || p.Get(model.SlotPrimary) != tt.wantSeed {
			t.Errorf("Derive(hints=%v) = %q/%s, want %q/%s",
				tt.hints, p.Name, p.Get(model.SlotPrimary), tt.wantName, tt.wantSeed)
		}
	}
}

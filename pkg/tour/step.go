package tour

import (
	"fmt"
	"strings"
)

// Placement is the requested tooltip position relative to the target.
type Placement string

const (
	PlacementTop    Placement = "top"
	PlacementBottom Placement = "bottom"
	PlacementLeft   Placement = "left"
	PlacementRight  Placement = "right"
	PlacementCenter Placement = "center"
)

// ParsePlacement converts a string to a Placement. The empty string maps to
// bottom, which is what most steps want.
func ParsePlacement(s string) (Placement, error) {
	switch p := Placement(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PlacementBottom, nil
	case PlacementTop, PlacementBottom, PlacementLeft, PlacementRight, PlacementCenter:
		return p, nil
	default:
		return "", fmt.Errorf("unknown placement %q", s)
	}
}

// UnmarshalText lets YAML and JSON decode placements with validation.
func (p *Placement) UnmarshalText(text []byte) error {
	parsed, err := ParsePlacement(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Locator identifies one tour-addressable element on the current page.
type Locator string

// BodyLocator is the sentinel some tour authors use for "the whole page".
// It behaves like an empty locator.
const BodyLocator Locator = "body"

// Anchored reports whether the locator points at a concrete element.
func (l Locator) Anchored() bool {
	s := strings.TrimSpace(string(l))
	return s != "" && Locator(s) != BodyLocator
}

// Step is one instruction in a tour. Steps are static data and are never
// mutated while a tour runs.
type Step struct {
	Locator            Locator   `yaml:"target" json:"target"`
	Title              string    `yaml:"title,omitempty" json:"title,omitempty"`
	Content            string    `yaml:"content" json:"content"` // Markdown, opaque to the engine
	Placement          Placement `yaml:"placement,omitempty" json:"placement,omitempty"`
	LockOverlayDismiss bool      `yaml:"lock_overlay_dismiss,omitempty" json:"lock_overlay_dismiss,omitempty"`
}

// Anchored reports whether the step should be attached to an element.
// Center placement always wins over a locator.
func (s Step) Anchored() bool {
	return s.Placement != PlacementCenter && s.Locator.Anchored()
}

// EffectivePlacement returns the placement used for positioning.
func (s Step) EffectivePlacement() Placement {
	if !s.Anchored() {
		return PlacementCenter
	}
	if s.Placement == "" {
		return PlacementBottom
	}
	return s.Placement
}

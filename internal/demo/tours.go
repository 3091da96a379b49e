package demo

import (
	_ "embed"
	"fmt"

	"github.com/vanderheijden86/spotlight/pkg/tour"
)

//go:embed tours.yaml
var builtinTours []byte

// BuiltinTours returns the raw built-in definitions, for writing a starter
// file users can edit.
func BuiltinTours() []byte {
	return builtinTours
}

// LoadCatalog returns the built-in tours, or the definitions at paths when
// any are given. User files replace the built-ins entirely.
func LoadCatalog(paths []string) (*tour.Catalog, error) {
	if len(paths) > 0 {
		return tour.LoadDefinitions(paths...)
	}
	c := tour.NewCatalog()
	if err := c.ParseDefinitions(builtinTours); err != nil {
		return nil, fmt.Errorf("built-in tours: %w", err)
	}
	return c, nil
}

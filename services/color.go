package services

import (
	"fmt"
	"math/rand/v2"
)

// RandomColor returns a mid-brightness hex color readable on white and
// dark backgrounds.
func RandomColor() string {
	r := 40 + rand.IntN(176)
	g := 40 + rand.IntN(176)
	b := 40 + rand.IntN(176)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

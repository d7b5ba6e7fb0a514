// Package gui implements the windowed front end. Unlike a terminal, a window
// reports real key releases.
package gui

import (
	"image/color"

	"github.com/oisee/synthkeys/pkg/keyboard"
	"github.com/oisee/synthkeys/pkg/visual"
)

// Logical screen size
const (
	ScreenWidth  = 840
	ScreenHeight = 420
)

const (
	keyboardX   = 28
	keyboardY   = 220
	whiteWidth  = 56
	whiteHeight = 180
	blackWidth  = 34
	blackHeight = 110
)

// Rect is an axis-aligned rectangle in screen pixels
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether (x, y) lies inside r
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// KeyRect places one key on screen
type KeyRect struct {
	Key keyboard.Key
	Rect
}

// KeyLayout returns the key rectangles in draw order: white keys, then the
// black keys that overlap them.
func KeyLayout() []KeyRect {
	var whites, blacks []KeyRect
	for _, k := range keyboard.Layout {
		if k.Black {
			// Centred on the boundary after the previous white key
			x := float32(keyboardX+len(whites)*whiteWidth) - blackWidth/2
			blacks = append(blacks, KeyRect{Key: k, Rect: Rect{x, keyboardY, blackWidth, blackHeight}})
			continue
		}
		x := float32(keyboardX + len(whites)*whiteWidth)
		whites = append(whites, KeyRect{Key: k, Rect: Rect{x, keyboardY, whiteWidth, whiteHeight}})
	}
	return append(whites, blacks...)
}

// KeyAt returns the topmost key under (x, y)
func KeyAt(rects []KeyRect, x, y float32) (keyboard.Key, bool) {
	for i := len(rects) - 1; i >= 0; i-- {
		if rects[i].Contains(x, y) {
			return rects[i].Key, true
		}
	}
	return keyboard.Key{}, false
}

// nrgba converts a note colour with opacity a in [0, 1]
func nrgba(c visual.HSL, a float64) color.NRGBA {
	r, g, b := c.Color().Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(max(0, min(1, a)) * 255)}
}

//go:build headless

package gui

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/oisee/synthkeys/pkg/keyboard"
	"github.com/oisee/synthkeys/pkg/synth"
	"github.com/oisee/synthkeys/pkg/visual"
)

// ErrHeadless is returned by Run in builds without a window system
var ErrHeadless = errors.New("gui: built without window support")

// Game is a stub for headless builds
type Game struct{}

func New(s *synth.Synth, r *keyboard.Router, scene *visual.Scene, panel *synth.Panel, logger *slog.Logger) *Game {
	return &Game{}
}

func Run(ctx context.Context, g *Game) error {
	return ErrHeadless
}

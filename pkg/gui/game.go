//go:build !headless

package gui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/pkg/errors"
	"golang.org/x/image/font/basicfont"

	"github.com/oisee/synthkeys/pkg/keyboard"
	"github.com/oisee/synthkeys/pkg/synth"
	"github.com/oisee/synthkeys/pkg/visual"
)

var (
	backgroundColor = color.RGBA{16, 16, 24, 255}
	whiteKeyColor   = color.RGBA{236, 236, 236, 255}
	blackKeyColor   = color.RGBA{24, 24, 28, 255}
	outlineColor    = color.RGBA{60, 60, 70, 255}
	labelColor      = color.RGBA{200, 200, 210, 255}
	highlightColor  = color.RGBA{255, 220, 80, 255}
)

type binding struct {
	key ebiten.Key
	ch  rune
}

// bindings maps physical keys to the layout characters
var bindings = []binding{
	{ebiten.KeyZ, 'Z'}, {ebiten.KeyS, 'S'}, {ebiten.KeyX, 'X'}, {ebiten.KeyD, 'D'},
	{ebiten.KeyC, 'C'}, {ebiten.KeyV, 'V'}, {ebiten.KeyG, 'G'}, {ebiten.KeyB, 'B'},
	{ebiten.KeyH, 'H'}, {ebiten.KeyN, 'N'}, {ebiten.KeyJ, 'J'}, {ebiten.KeyM, 'M'},
	{ebiten.KeyQ, 'Q'}, {ebiten.KeyDigit2, '2'}, {ebiten.KeyW, 'W'}, {ebiten.KeyDigit3, '3'},
	{ebiten.KeyE, 'E'}, {ebiten.KeyR, 'R'}, {ebiten.KeyDigit5, '5'}, {ebiten.KeyT, 'T'},
	{ebiten.KeyDigit6, '6'}, {ebiten.KeyY, 'Y'}, {ebiten.KeyDigit7, '7'}, {ebiten.KeyU, 'U'},
}

// Game is the ebiten front end
type Game struct {
	synth  *synth.Synth
	router *keyboard.Router
	scene  *visual.Scene
	panel  *synth.Panel
	logger *slog.Logger

	keys    []KeyRect
	holds   *holds
	status  string
	closing atomic.Bool
}

// New creates the game. The router must read its config from panel.
func New(s *synth.Synth, r *keyboard.Router, scene *visual.Scene, panel *synth.Panel, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{
		synth:  s,
		router: r,
		scene:  scene,
		panel:  panel,
		logger: logger,
		keys:   KeyLayout(),
		holds:  newHolds(),
	}
}

// Run opens the window and blocks until it closes or ctx is cancelled
func Run(ctx context.Context, g *Game) error {
	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("synthkeys")
	ebiten.SetWindowResizable(true)
	ebiten.SetWindowClosingHandled(true)

	stop := context.AfterFunc(ctx, func() { g.closing.Store(true) })
	defer stop()

	g.logger.Debug("window opened", "width", ScreenWidth, "height", ScreenHeight)
	if err := ebiten.RunGame(g); err != nil {
		return errors.Wrap(err, "gui: run")
	}
	return nil
}

// Update implements ebiten.Game
func (g *Game) Update() error {
	if g.closing.Load() || ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.synth.Panic(g.panel.Config().Envelope)
		return ebiten.Termination
	}

	for _, b := range bindings {
		code := keyboard.CodeFor(b.ch)
		if inpututil.IsKeyJustPressed(b.key) && g.holds.keyDown(code) {
			g.router.Press(code)
		}
		if inpututil.IsKeyJustReleased(b.key) && g.holds.keyUp(code) {
			g.router.Release(code)
		}
	}
	g.updateMouse()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		g.status = "Mode: " + g.panel.CycleMode().String()
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		g.status = "Waveform: " + g.panel.CycleWaveform().String()
	case inpututil.IsKeyJustPressed(ebiten.KeyF4):
		g.status = "LFO: " + g.panel.CycleLFO().String()
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.status = fmt.Sprintf("Harmony: %t", g.panel.ToggleHarmony())
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		g.panel.Select(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		g.panel.Select(1)
	case repeating(ebiten.KeyArrowUp):
		g.status = g.panel.Adjust(1)
	case repeating(ebiten.KeyArrowDown):
		g.status = g.panel.Adjust(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyNumpadMultiply), inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.status = fmt.Sprintf("Octave: %+d", g.router.Keys().ShiftOctave(1))
	case inpututil.IsKeyJustPressed(ebiten.KeyNumpadDivide), inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.status = fmt.Sprintf("Octave: %+d", g.router.Keys().ShiftOctave(-1))
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.status = fmt.Sprintf("Released %d voices", g.synth.Panic(g.panel.Config().Envelope))
	}
	return nil
}

// repeating fires on press and then every few frames while held
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d > 20 && d%4 == 0)
}

// updateMouse plays the key under the cursor while the left button is down
func (g *Game) updateMouse() {
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && g.holds.held() {
		if code, ok := g.holds.mouseUp(); ok {
			g.router.Release(code)
		}
		return
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	x, y := ebiten.CursorPosition()
	if k, ok := KeyAt(g.keys, float32(x), float32(y)); ok && g.holds.mouseDown(k.Code) {
		g.router.Press(k.Code)
	}
}

// Draw implements ebiten.Game
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	now := time.Now()

	if c, ok := g.scene.Blend(); ok {
		vector.DrawFilledCircle(screen, ScreenWidth/2, keyboardY/2, 260, nrgba(c, 0.3), true)
		vector.DrawFilledCircle(screen, ScreenWidth/2, keyboardY/2, 140, nrgba(visual.HSL{Hue: c.Hue, Sat: c.Sat, Light: c.Light + 10}, 0.4), true)
	}

	for _, p := range g.scene.Particles(now) {
		if a := p.Alpha(now); a > 0 {
			cy := float32((p.Y - p.Offset(now)) * ScreenHeight)
			vector.DrawFilledCircle(screen, float32(p.X*ScreenWidth), cy, float32(p.Size/2), nrgba(p.Color, a), true)
		}
	}

	for _, b := range g.scene.Bursts(now) {
		a := b.Alpha(now)
		if a <= 0 {
			continue
		}
		cx := float32(b.X * ScreenWidth)
		cy := float32((b.Y - b.Offset(now)) * ScreenHeight)
		r := float32(b.Size / 2)
		vector.DrawFilledCircle(screen, cx, cy, r, nrgba(b.Color, a*0.5), true)
		vector.DrawFilledCircle(screen, cx, cy, r*0.35, nrgba(b.Color, a), true)
	}

	for _, kr := range g.keys {
		g.drawKey(screen, kr)
	}

	g.drawPanel(screen)
}

func (g *Game) drawKey(screen *ebiten.Image, kr KeyRect) {
	fill := color.Color(whiteKeyColor)
	label := color.Color(blackKeyColor)
	if kr.Key.Black {
		fill, label = blackKeyColor, labelColor
	}
	if c, ok := g.scene.Lit(kr.Key.Code); ok {
		fill, label = nrgba(c, 1), blackKeyColor
	}

	vector.DrawFilledRect(screen, kr.X, kr.Y, kr.W, kr.H, fill, false)
	vector.StrokeRect(screen, kr.X, kr.Y, kr.W, kr.H, 1, outlineColor, false)

	face := basicfont.Face7x13
	ch := string(kr.Key.Char)
	x := int(kr.X+kr.W/2) - text.BoundString(face, ch).Dx()/2
	y := int(kr.Y+kr.H) - 12
	text.Draw(screen, ch, face, x, y, label)
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	face := basicfont.Face7x13
	cfg := g.panel.Config()

	header := fmt.Sprintf("SYNTHKEYS  mode:%s  wave:%s  lfo:%s  harmony:%t  oct:%+d  voices:%d",
		cfg.Mode, cfg.Waveform, cfg.LFO.Target, cfg.Harmony,
		g.router.Keys().Octave(), g.synth.Voices().Len())
	text.Draw(screen, header, face, 12, 20, labelColor)

	_, selected := g.panel.Selected()
	x := 12
	for i, k := range g.panel.Knobs() {
		s := k.Format(cfg)
		c := color.Color(labelColor)
		if i == selected {
			c = highlightColor
		}
		text.Draw(screen, s, face, x, 40, c)
		x += text.BoundString(face, s).Dx() + 14
	}

	if g.status != "" {
		text.Draw(screen, g.status, face, 12, 60, highlightColor)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.0f fps", ebiten.ActualFPS()), ScreenWidth-60, ScreenHeight-16)
}

// Layout implements ebiten.Game
func (g *Game) Layout(_, _ int) (int, int) {
	return ScreenWidth, ScreenHeight
}

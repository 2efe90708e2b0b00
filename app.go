package peel

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween/ease"
)

const (
	defaultScreenshotDir = "screenshots"
	zoomStep             = 1.25
	zoomDuration         = 0.2 // seconds
	resetDuration        = 0.3 // seconds
	nudgeStep            = 1.0
	nudgeStepLarge       = 10.0
)

// AppOptions configures an App.
type AppOptions struct {
	// ScreenshotDir is where Screenshot writes PNGs. Empty means "screenshots".
	ScreenshotDir string
	// Debug enables renderer stats and selection checks.
	Debug    bool
	Renderer RendererOptions
	Logger   *slog.Logger
}

// App is the single-page canvas view: an ebiten.Game wiring a Store, an
// Importer and a Renderer together. Dropping an image file onto the window
// imports it. Dropped files are ignored while an import is loading.
//
// Keys: Esc deselects, Tab cycles unlocked layers, arrows nudge the
// selection (Shift for 10px), R animates a reset of rotation and scale,
// +/- zoom, 0 fits the canvas, P saves a screenshot.
type App struct {
	store    *Store
	importer *Importer
	renderer *Renderer
	tweens   []*TransformTween

	testRunner      *TestRunner
	screenshotQueue []string
	screenshotDir   string

	ctx context.Context
	log *slog.Logger
}

// NewApp creates an app around store and importer.
func NewApp(store *Store, importer *Importer, opts AppOptions) *App {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ropts := opts.Renderer
	if ropts.Logger == nil {
		ropts.Logger = log
	}
	a := &App{
		store:         store,
		importer:      importer,
		renderer:      NewRenderer(store, ropts),
		screenshotDir: opts.ScreenshotDir,
		ctx:           context.Background(),
		log:           log,
	}
	if a.screenshotDir == "" {
		a.screenshotDir = defaultScreenshotDir
	}
	a.renderer.SetDebugMode(opts.Debug)
	return a
}

// Store returns the app's scene store.
func (a *App) Store() *Store { return a.store }

// Importer returns the app's import orchestrator.
func (a *App) Importer() *Importer { return a.importer }

// Renderer returns the app's renderer.
func (a *App) Renderer() *Renderer { return a.renderer }

// SetTestRunner attaches a script runner. Its step runs at the start of
// every Update.
func (a *App) SetTestRunner(r *TestRunner) { a.testRunner = r }

// Import starts importing image. It fails with ErrImportInProgress while a
// previous import is loading.
func (a *App) Import(image []byte) error {
	_, err := a.importer.Begin(a.ctx, image)
	return err
}

// Update implements ebiten.Game.
func (a *App) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))

	a.importer.Poll()
	if a.testRunner != nil {
		a.testRunner.step(a)
		if err := a.testRunner.Err(); err != nil {
			return err
		}
	}
	a.handleDroppedFiles()
	a.handleKeys()
	a.updateTweens(dt)
	a.renderer.Update(dt)
	return nil
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	a.renderer.Draw(screen)
	a.drawStatus(screen)
	a.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The canvas is fitted to whatever size the
// window has.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func (a *App) handleDroppedFiles() {
	files := ebiten.DroppedFiles()
	if files == nil {
		return
	}
	if a.importer.Loading() {
		a.log.Info("drop ignored while importing")
		return
	}
	data, name, err := firstDroppedFile(files)
	if err != nil {
		a.log.Warn("read dropped file", "err", err)
		return
	}
	if err := a.Import(data); err != nil {
		a.log.Warn("import", "file", name, "err", err)
	}
}

// firstDroppedFile reads the first regular file in a dropped file set.
func firstDroppedFile(files fs.FS) ([]byte, string, error) {
	var name string
	err := fs.WalkDir(files, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			name = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if name == "" {
		return nil, "", fmt.Errorf("no file dropped")
	}
	data, err := fs.ReadFile(files, name)
	return data, name, err
}

func (a *App) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		a.renderer.ClickBackground()
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		a.cycleSelection()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if tw := TweenReset(a.store, a.store.Selected(), resetDuration, ease.OutCubic); tw != nil {
			a.tweens = append(a.tweens, tw)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		a.Screenshot("manual")
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		v := a.renderer.Viewport()
		v.ZoomTo(v.Zoom*zoomStep, zoomDuration, ease.OutQuad)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		v := a.renderer.Viewport()
		v.ZoomTo(v.Zoom/zoomStep, zoomDuration, ease.OutQuad)
	case inpututil.IsKeyJustPressed(ebiten.Key0):
		a.renderer.Viewport().ZoomTo(1, zoomDuration, ease.OutQuad)
	}

	step := nudgeStep
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		step = nudgeStepLarge
	}
	var dx, dy float64
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		dx -= step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		dx += step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		dy -= step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		dy += step
	}
	if dx != 0 || dy != 0 {
		a.nudgeSelection(dx, dy)
	}
}

// cycleSelection selects the next unlocked layer in z-order, wrapping.
func (a *App) cycleSelection() {
	sc := a.store.Scene()
	if sc == nil {
		return
	}
	if next, ok := sc.NextUnlocked(a.store.Selected()); ok {
		a.renderer.SelectLayer(next)
	}
}

// nudgeSelection moves the selected layer by (dx, dy) canvas pixels.
func (a *App) nudgeSelection(dx, dy float64) bool {
	l, ok := a.store.State().SelectedLayer()
	if !ok || l.Locked {
		return false
	}
	t := l.Transform
	t.TX += dx
	t.TY += dy
	return a.store.UpdateTransform(l.ID, t)
}

func (a *App) updateTweens(dt float32) {
	live := a.tweens[:0]
	for _, tw := range a.tweens {
		tw.Update(dt)
		if !tw.Done {
			live = append(live, tw)
		}
	}
	clear(a.tweens[len(live):])
	a.tweens = live
}

// statusLines returns the overlay text: the import helper text and, when a
// layer is selected, its transform.
func (a *App) statusLines() []string {
	lines := []string{"BananaPeel  " + a.importer.Message()}
	if l, ok := a.store.State().SelectedLayer(); ok {
		t := l.Transform
		lines = append(lines, fmt.Sprintf("%s  x=%.0f y=%.0f rot=%.1f sx=%.2f sy=%.2f",
			l.Name, t.TX, t.TY, normalizeDegrees(t.Rotation), t.SX, t.SY))
	} else if a.store.Scene() == nil {
		lines = append(lines, "Drop an image onto the window.")
	}
	return lines
}

func (a *App) drawStatus(screen *ebiten.Image) {
	for i, line := range a.statusLines() {
		ebitenutil.DebugPrintAt(screen, line, 8, 4+16*i)
	}
}

// normalizeDegrees maps an angle into (-180, 180].
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
}

// Run opens a resizable window and runs app until it is closed.
func Run(app *App, cfg RunConfig) error {
	if cfg.Title == "" {
		cfg.Title = "BananaPeel"
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 960, 720
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(app)
}

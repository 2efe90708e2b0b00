package peel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrImportInProgress is returned by Importer.Begin while a previous import
// is still loading.
var ErrImportInProgress = errors.New("peel: import already in progress")

// Helper texts shown by the import control.
const (
	MessageLoading = "Processing image..."
	MessageIdle    = "Import an image to see the mock extraction result."
)

var defaultCanvasSize = Size{W: 800, H: 600}

// Extractor turns an image into a background plate and labeled elements.
// Implementations may return fewer elements than expected and need not
// include bounding boxes.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (ExtractResponse, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, image []byte) (ExtractResponse, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, image []byte) (ExtractResponse, error) {
	return f(ctx, image)
}

// MockExtractor returns the input image both as the background and as a
// single 200x200 element at (20, 20).
type MockExtractor struct{}

// Extract implements Extractor.
func (MockExtractor) Extract(ctx context.Context, image []byte) (ExtractResponse, error) {
	if err := ctx.Err(); err != nil {
		return ExtractResponse{}, err
	}
	return ExtractResponse{
		BackgroundPNG: image,
		Elements: []ExtractElement{{
			ID:   FallbackElementID,
			PNG:  image,
			BBox: &BBox{X: fallbackElementPos.X, Y: fallbackElementPos.Y, W: fallbackElementSize.W, H: fallbackElementSize.H},
		}},
	}, nil
}

// ImporterOptions configures an Importer.
type ImporterOptions struct {
	// CanvasSize is the canvas every imported scene gets. Zero means 800x600.
	CanvasSize Size
	// Assets receives the decoded payloads. Nil means a fresh in-memory store.
	Assets AssetStore
	// Timeout bounds a single import. Zero means no limit.
	Timeout time.Duration
	Logger  *slog.Logger
}

type importResult struct {
	scene  *Scene
	assets AssetTable
	err    error
}

type importJob struct {
	id     string
	start  time.Time
	done   chan importResult
	cancel context.CancelFunc
}

// Importer drives the idle/loading/error state machine around one
// extraction call. Extraction, assembly and asset resolution run on a
// background goroutine; the result is installed into the store only from
// Poll or Wait, so store mutation stays on the caller's goroutine.
//
// Only one import runs at a time. Results are read only from the current
// job's channel; a cancelled job is detached, and whatever it produces is
// dropped with it, so an abandoned import can never clobber a newer scene.
type Importer struct {
	store     *Store
	extractor Extractor
	canvas    Size
	assets    AssetStore
	timeout   time.Duration
	log       *slog.Logger

	state     ImportState
	prevState ImportState
	err       error
	prevErr   error
	job       *importJob
}

// NewImporter creates an importer that installs scenes into store.
// Panics if store or extractor is nil, or CanvasSize is set but not positive.
func NewImporter(store *Store, extractor Extractor, opts ImporterOptions) *Importer {
	if store == nil {
		panic("peel: NewImporter with nil store")
	}
	if extractor == nil {
		panic("peel: NewImporter with nil extractor")
	}
	canvas := opts.CanvasSize
	if canvas == (Size{}) {
		canvas = defaultCanvasSize
	}
	if !canvas.Positive() {
		panic("peel: canvas size must be positive")
	}
	im := &Importer{
		store:     store,
		extractor: extractor,
		canvas:    canvas,
		assets:    opts.Assets,
		timeout:   opts.Timeout,
		log:       opts.Logger,
	}
	if im.assets == nil {
		im.assets = NewMemoryAssetStore()
	}
	if im.log == nil {
		im.log = slog.Default()
	}
	return im
}

// State returns the current import state.
func (im *Importer) State() ImportState { return im.state }

// Loading reports whether an import is in flight.
func (im *Importer) Loading() bool { return im.state == ImportLoading }

// Err returns the error of the last failed import, or nil.
func (im *Importer) Err() error { return im.err }

// CanvasSize returns the canvas size given to imported scenes.
func (im *Importer) CanvasSize() Size { return im.canvas }

// Message returns the helper text for the current state.
func (im *Importer) Message() string {
	switch {
	case im.state == ImportLoading:
		return MessageLoading
	case im.err != nil:
		return im.err.Error()
	default:
		return MessageIdle
	}
}

// Begin starts importing image and moves to the loading state. It returns
// the import id, or ErrImportInProgress if an import is already loading.
func (im *Importer) Begin(ctx context.Context, image []byte) (string, error) {
	if im.state == ImportLoading {
		return "", ErrImportInProgress
	}

	uid, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("import id: %w", err)
	}
	id := uid.String()
	var jobCtx context.Context
	var cancel context.CancelFunc
	if im.timeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, im.timeout)
	} else {
		jobCtx, cancel = context.WithCancel(ctx)
	}
	job := &importJob{
		id:     id,
		start:  time.Now(),
		done:   make(chan importResult, 1),
		cancel: cancel,
	}
	im.job = job
	im.prevState, im.prevErr = im.state, im.err
	im.state = ImportLoading
	im.err = nil

	im.log.Info("import started", "import_id", id, "bytes", len(image))
	go func() {
		scene, assets, err := im.run(jobCtx, id, image)
		job.done <- importResult{scene: scene, assets: assets, err: err}
	}()
	return id, nil
}

// run performs one import off the caller's goroutine. It touches no
// mutable importer state.
func (im *Importer) run(ctx context.Context, id string, image []byte) (*Scene, AssetTable, error) {
	resp, err := im.extractor.Extract(ctx, image)
	if err != nil {
		return nil, nil, err
	}
	scene, payloads := Assemble(resp, im.canvas)
	scene, payloads = scopeAssetKeys(id, scene, payloads)
	assets, err := ResolveAssets(ctx, im.assets, scene, payloads)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve assets: %w", err)
	}
	return scene, assets, nil
}

// Poll installs the result of a finished import, if any. It never blocks
// and returns true when the state changed. Call it once per frame.
func (im *Importer) Poll() bool {
	job := im.job
	if job == nil {
		return false
	}
	select {
	case res := <-job.done:
		im.finish(job, res)
		return true
	default:
		return false
	}
}

// Wait blocks until the current import finishes and installs its result.
// It returns the import's error, or ctx's error if ctx ends first.
func (im *Importer) Wait(ctx context.Context) error {
	job := im.job
	if job == nil {
		return im.err
	}
	select {
	case res := <-job.done:
		im.finish(job, res)
		return res.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel abandons the in-flight import. Its result is discarded and the
// state reverts to what it was before Begin.
func (im *Importer) Cancel() {
	job := im.job
	if job == nil {
		return
	}
	job.cancel()
	im.job = nil
	im.state, im.err = im.prevState, im.prevErr
	im.log.Info("import cancelled", "import_id", job.id)
}

func (im *Importer) finish(job *importJob, res importResult) {
	job.cancel()
	im.job = nil
	elapsed := time.Since(job.start)
	if res.err != nil {
		im.state = ImportError
		im.err = res.err
		im.log.Warn("import failed", "import_id", job.id, "elapsed", elapsed, "err", res.err)
		return
	}
	im.store.SetScene(res.scene, res.assets)
	im.state = ImportIdle
	im.log.Info("import finished", "import_id", job.id, "elapsed", elapsed,
		"layers", res.scene.Len(), "assets", len(res.assets))
}

// scopeAssetKeys prefixes every asset key with the import id so payloads
// from one import never resolve for another.
func scopeAssetKeys(importID string, scene *Scene, payloads Payloads) (*Scene, Payloads) {
	order := scene.Layers()
	m := make(map[string]Layer, len(order))
	for _, id := range order {
		l, _ := scene.Layer(id)
		l.SourceRef.Key = importID + "/" + l.SourceRef.Key
		m[id] = l
	}
	scoped := make(Payloads, len(payloads))
	for id, p := range payloads {
		p.Ref.Key = importID + "/" + p.Ref.Key
		scoped[id] = p
	}
	return SceneFromMap(scene.CanvasSize(), order, m), scoped
}

package peel

import (
	"encoding/json"
	"fmt"
	"os"
)

// testStep is a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Path   string  `json:"path,omitempty"`
	Layer  string  `json:"layer,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences imports, injected pointer input and screenshots
// across frames for automated visual testing. Attach to an App via
// SetTestRunner.
//
// Supported actions: import (path), click (x, y), drag (fromX, fromY, toX,
// toY, frames), select (layer), deselect, wait (frames), screenshot (label).
// Coordinates are window coordinates.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	err       error
}

// LoadTestScript parses a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "import", "click", "drag", "select", "deselect", "wait", "screenshot":
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// Done reports whether all steps have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Err returns the first error a step produced, such as an unreadable
// import path. The runner stops at that step.
func (r *TestRunner) Err() error {
	return r.err
}

// step advances the runner by one frame. Called from App.Update.
func (r *TestRunner) step(a *App) {
	if r.done {
		return
	}
	// Let injected input drain and imports land before advancing.
	if a.renderer.PendingInput() > 0 || a.importer.Loading() {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "import":
		data, err := os.ReadFile(st.Path)
		if err == nil {
			err = a.Import(data)
		}
		if err != nil {
			r.err = fmt.Errorf("step %d: import %s: %w", r.cursor-1, st.Path, err)
			r.done = true
			return
		}
	case "screenshot":
		a.Screenshot(st.Label)
	case "click":
		a.renderer.InjectClick(st.X, st.Y)
	case "drag":
		a.renderer.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "select":
		a.renderer.SelectLayer(st.Layer)
	case "deselect":
		a.renderer.ClickBackground()
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 &&
		a.renderer.PendingInput() == 0 && !a.importer.Loading() {
		r.done = true
	}
}

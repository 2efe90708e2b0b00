package peel

import (
	"log/slog"
	"time"
)

// debugStats holds per-compose timing and counts.
// Only populated when the renderer is in debug mode.
type debugStats struct {
	composeTime  time.Duration
	commandCount int
	layerCount   int
}

// debugLog reports compose stats.
func (r *Renderer) debugLog(stats debugStats) {
	if !r.debug {
		return
	}
	r.log.Debug("compose",
		"elapsed", stats.composeTime,
		"commands", stats.commandCount,
		"layers", stats.layerCount,
		"skipped", stats.layerCount-stats.commandCount)
}

// debugCheckSelection warns when the store holds a selection that names no
// layer or a locked one. Such selections are never decorated.
func debugCheckSelection(log *slog.Logger, st State) {
	if st.Selected == NoSelection || st.Scene == nil {
		return
	}
	l, ok := st.Scene.Layer(st.Selected)
	switch {
	case !ok:
		log.Warn("selection names no layer", "selected", st.Selected)
	case l.Locked:
		log.Warn("selection names a locked layer", "selected", st.Selected)
	}
}

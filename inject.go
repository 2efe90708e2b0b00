package peel

// syntheticPointerEvent is a queued pointer sample in window coordinates.
// It is converted to canvas coordinates through the viewport exactly like
// real mouse input.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
}

// InjectPress queues a pointer press at the given window coordinates. The
// event is consumed on the next Update.
func (r *Renderer) InjectPress(x, y float64) {
	r.injectQueue = append(r.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: true})
}

// InjectMove queues a pointer move with the button held down.
func (r *Renderer) InjectMove(x, y float64) {
	r.injectQueue = append(r.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: true})
}

// InjectRelease queues a pointer release at the given window coordinates.
func (r *Renderer) InjectRelease(x, y float64) {
	r.injectQueue = append(r.injectQueue, syntheticPointerEvent{screenX: x, screenY: y, pressed: false})
}

// InjectClick queues a press followed by a release. Consumes two frames.
func (r *Renderer) InjectClick(x, y float64) {
	r.InjectPress(x, y)
	r.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 interpolated moves,
// and a release at (toX, toY). Minimum frames is 2.
func (r *Renderer) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	r.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		r.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	r.InjectRelease(toX, toY)
}

// PendingInput reports how many injected events are still queued.
func (r *Renderer) PendingInput() int { return len(r.injectQueue) }

// processInjectedInput pops one queued event and feeds it through
// processPointer. Returns true if an event was consumed, in which case
// real mouse input is skipped for the frame.
func (r *Renderer) processInjectedInput() bool {
	if len(r.injectQueue) == 0 {
		return false
	}
	evt := r.injectQueue[0]
	copy(r.injectQueue, r.injectQueue[1:])
	r.injectQueue = r.injectQueue[:len(r.injectQueue)-1]

	x, y := r.view.ScreenToCanvas(evt.screenX, evt.screenY)
	r.processPointer(x, y, evt.pressed)
	return true
}

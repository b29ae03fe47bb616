package editor

import "math"

// pointerSample is one raw pointer's last known position, keyed by the
// host's pointer id.
type pointerSample struct {
	id   int
	x, y float64
}

// RawPointerDown records a raw pointer contact for gesture detection.
// Hosts feed every pointer here in addition to the single-pointer
// PointerDown/Move/Up stream; zoom gestures are recognized from the cache
// whenever exactly two contacts are live.
func (e *Editor) RawPointerDown(id int, x, y float64) {
	for i := range e.pointers {
		if e.pointers[i].id == id {
			e.pointers[i].x, e.pointers[i].y = x, y
			return
		}
	}
	e.pointers = append(e.pointers, pointerSample{id: id, x: x, y: y})
	if len(e.pointers) == 2 {
		e.pinchBase = e.pinchDistance()
		e.pinchPrev = e.pinchBase
	}
}

// RawPointerMove updates a contact and, with two contacts live, advances
// the pinch gesture.
func (e *Editor) RawPointerMove(id int, x, y float64) {
	found := false
	for i := range e.pointers {
		if e.pointers[i].id == id {
			e.pointers[i].x, e.pointers[i].y = x, y
			found = true
			break
		}
	}
	if !found || len(e.pointers) != 2 {
		return
	}
	e.handlePinch()
}

// RawPointerUp drops a contact and resets the gesture baseline.
func (e *Editor) RawPointerUp(id int) {
	for i := range e.pointers {
		if e.pointers[i].id == id {
			e.pointers = append(e.pointers[:i], e.pointers[i+1:]...)
			break
		}
	}
	if len(e.pointers) < 2 {
		e.pinchBase = 0
		e.pinchPrev = 0
	}
}

func (e *Editor) pinchDistance() float64 {
	a, b := e.pointers[0], e.pointers[1]
	return math.Hypot(a.x-b.x, a.y-b.y)
}

// handlePinch zooms one step in the direction the finger distance changed
// this frame, once the distance has left the dead zone around the gesture
// baseline. The threshold gates activation only; direction always follows
// the latest frame delta, so a reversed gesture reverses the zoom without
// recrossing the baseline.
func (e *Editor) handlePinch() {
	dist := e.pinchDistance()
	if e.pinchBase == 0 {
		e.pinchBase = dist
		e.pinchPrev = dist
		return
	}
	if math.Abs(dist-e.pinchBase) <= e.opts.PinchThreshold {
		e.pinchPrev = dist
		return
	}
	if dist > e.pinchPrev {
		e.ZoomIn()
	} else if dist < e.pinchPrev {
		e.ZoomOut()
	}
	e.pinchPrev = dist
}

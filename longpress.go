package main

import (
	"math"
	"time"
)

// LongPressDetector decides whether a press-and-hold occurred without
// excessive movement. It knows nothing about annotation or zoom state; it is
// pure timing and distance math over one abstract pointer sequence.
//
// The detector holds no timer. It is polled with Update(now) once per frame,
// which keeps it deterministic under test with a fake clock.
type LongPressDetector struct {
	threshold     time.Duration // Hold duration before the press fires
	moveThreshold float64       // Euclidean distance that cancels the press

	onLongPress func(x, y float64)
	onCancel    func()

	active    bool
	fired     bool
	startX    float64
	startY    float64
	startTime time.Time
}

// NewLongPressDetector creates a detector with the given timing and movement
// limits. Either callback may be nil.
func NewLongPressDetector(threshold time.Duration, moveThreshold float64, onLongPress func(x, y float64), onCancel func()) *LongPressDetector {
	return &LongPressDetector{
		threshold:     threshold,
		moveThreshold: moveThreshold,
		onLongPress:   onLongPress,
		onCancel:      onCancel,
	}
}

// PressStart arms the detector at the press position. Presses that begin on
// an interactive control are ignored entirely.
func (d *LongPressDetector) PressStart(x, y float64, interactive bool, now time.Time) {
	if interactive {
		d.active = false
		d.fired = false
		return
	}
	d.active = true
	d.fired = false
	d.startX = x
	d.startY = y
	d.startTime = now
}

// PressMove cancels the press once the pointer strays beyond moveThreshold.
// Movement after firing is irrelevant.
func (d *LongPressDetector) PressMove(x, y float64) {
	if !d.active || d.fired {
		return
	}
	dx := x - d.startX
	dy := y - d.startY
	if math.Hypot(dx, dy) > d.moveThreshold {
		d.cancel(true)
	}
}

// Update fires the long-press callback once the hold duration has elapsed.
// The callback receives the original press position, not the current one.
func (d *LongPressDetector) Update(now time.Time) {
	if !d.active || d.fired {
		return
	}
	if now.Sub(d.startTime) >= d.threshold {
		d.fired = true
		if d.onLongPress != nil {
			d.onLongPress(d.startX, d.startY)
		}
	}
}

// PressEnd finishes the sequence. Ending before the press fired cancels
// silently; no cancellation callback runs. The return value reports whether
// a long-press fired during this sequence, so the caller can suppress its
// short-press (click) handling.
func (d *LongPressDetector) PressEnd() bool {
	fired := d.fired
	d.active = false
	d.fired = false
	return fired
}

// SecondTouch cancels an in-progress detection immediately. The gesture has
// become something else, so the cancellation is signalled like a move-out.
func (d *LongPressDetector) SecondTouch() {
	if d.active && !d.fired {
		d.cancel(true)
	}
}

// IsActive reports whether a press sequence is being tracked
func (d *LongPressDetector) IsActive() bool {
	return d.active
}

// Progress returns how far the current hold is toward firing, in [0, 1].
// Used for the hold indicator ring.
func (d *LongPressDetector) Progress(now time.Time) float64 {
	if !d.active || d.threshold <= 0 {
		return 0
	}
	if d.fired {
		return 1
	}
	p := float64(now.Sub(d.startTime)) / float64(d.threshold)
	return clampFloat(p, 0, 1)
}

// PressPosition returns the original press-down position
func (d *LongPressDetector) PressPosition() (float64, float64) {
	return d.startX, d.startY
}

// HasFired reports whether the current sequence already produced a long-press
func (d *LongPressDetector) HasFired() bool {
	return d.fired
}

func (d *LongPressDetector) cancel(signal bool) {
	d.active = false
	d.fired = false
	if signal && d.onCancel != nil {
		d.onCancel()
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewport holds the pan/zoom state applied to the canvas for
// display. The transform is per editor session and never persisted.
package viewport

const (
	// MinScale and MaxScale bound the zoom factor.
	MinScale = 0.5
	MaxScale = 3.0
	// ZoomStep is the scale change per wheel notch.
	ZoomStep = 0.1
)

// Pt is a 2D point in screen pixels.
type Pt struct{ X, Y float64 }

// Viewport is the canvas display transform: a zoom factor and a pixel
// translation. Translate is unbounded; Scale stays in [MinScale, MaxScale].
type Viewport struct {
	Scale     float64
	Translate Pt

	panning bool
	last    Pt
}

// New returns a viewport at identity (scale 1, no translation).
func New() Viewport { return Viewport{Scale: 1} }

// Zoom adjusts the scale by one step: a positive wheel delta (scroll down)
// zooms out, a negative one zooms in. The result is clamped.
func (v Viewport) Zoom(wheelDelta float64) Viewport {
	step := ZoomStep
	if wheelDelta > 0 {
		step = -ZoomStep
	}
	v.Scale = clamp(v.Scale+step, MinScale, MaxScale)
	return v
}

// PanStart begins a pan gesture. Panning requires the shift modifier held
// at pointer-down; otherwise the gesture is ignored.
func (v Viewport) PanStart(x, y float64, shiftHeld bool) Viewport {
	if !shiftHeld {
		return v
	}
	v.panning = true
	v.last = Pt{X: x, Y: y}
	return v
}

// PanMove accumulates the delta from the last observed pointer position
// into the translation and advances the reference point. No-op when no pan
// gesture is active.
func (v Viewport) PanMove(x, y float64) Viewport {
	if !v.panning {
		return v
	}
	v.Translate.X += x - v.last.X
	v.Translate.Y += y - v.last.Y
	v.last = Pt{X: x, Y: y}
	return v
}

// PanEnd finishes the pan gesture. No snapping, no inertia.
func (v Viewport) PanEnd() Viewport {
	v.panning = false
	return v
}

// Panning reports whether a pan gesture is in progress.
func (v Viewport) Panning() bool { return v.panning }

// ToCanvas maps a screen point into canvas coordinates under the current
// transform (inverse of translate-then-scale).
func (v Viewport) ToCanvas(p Pt) Pt {
	if v.Scale == 0 {
		return p
	}
	return Pt{
		X: (p.X - v.Translate.X) / v.Scale,
		Y: (p.Y - v.Translate.Y) / v.Scale,
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package viewport

import (
	"strconv"
	"strings"

	"invitestudio/internal/domain"
)

// Rect is an axis-aligned rectangle defined by min corner and size, in
// canvas pixels.
type Rect struct {
	X, Y float64
	W, H float64
}

// Contains reports whether p lies inside r (inclusive edges).
func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.W, o.X+o.W)
	maxY := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// BoundsOf computes the bounding box of a placed component from its
// left/top/width/height style keys. ok is false when any of the four is
// missing or unparsable, i.e. the component has not been placed yet.
func BoundsOf(c domain.Component) (Rect, bool) {
	left, ok1 := StyleLength(c.Style, "left")
	top, ok2 := StyleLength(c.Style, "top")
	width, ok3 := StyleLength(c.Style, "width")
	height, ok4 := StyleLength(c.Style, "height")
	if !(ok1 && ok2 && ok3 && ok4) {
		return Rect{}, false
	}
	return Rect{X: left, Y: top, W: width, H: height}, true
}

// StyleLength extracts a pixel length from a style value. Accepts bare
// numbers and "<n>px" strings; percentages and other units do not resolve
// to a fixed pixel length and report false.
func StyleLength(style domain.StyleMap, key string) (float64, bool) {
	v, ok := style[key]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "px"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

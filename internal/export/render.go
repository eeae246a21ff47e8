/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a design to SVG, PDF and PNG. Sections map to
// pages; components are drawn by type. Rendering is deliberately simple:
// box model from the left/top/width/height style keys, fills and strokes
// from the common color keys, text in a built-in font.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"invitestudio/internal/domain"
	"invitestudio/internal/viewport"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

var (
	colorBlack     = Color{0, 0, 0, 255}
	colorSectionBG = Color{0xf9, 0xf9, 0xf9, 255}
)

// parseColor reads "#rgb" and "#rrggbb" style values. ok is false for
// anything else (named colors, rgba() etc. are not resolved).
func parseColor(v any) (Color, bool) {
	s, ok := v.(string)
	if !ok {
		return Color{}, false
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return Color{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, true
}

func (c Color) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// styleColor resolves the first matching color key with a fallback.
func styleColor(style domain.StyleMap, fallback Color, keys ...string) Color {
	for _, k := range keys {
		if c, ok := parseColor(style[k]); ok {
			return c
		}
	}
	return fallback
}

// sectionSize derives the page size of a section from its style, falling
// back to the default editor canvas of 500x800.
func sectionSize(sec domain.Section) (float64, float64) {
	w, okW := viewport.StyleLength(sec.Style, "minWidth")
	if !okW {
		w, okW = viewport.StyleLength(sec.Style, "width")
	}
	h, okH := viewport.StyleLength(sec.Style, "minHeight")
	if !okH {
		h, okH = viewport.StyleLength(sec.Style, "height")
	}
	if !okW || w <= 0 {
		w = 500
	}
	if !okH || h <= 0 {
		h = 800
	}
	return w, h
}

// componentBox returns the draw rect of a component; unplaced components
// report ok=false and are skipped by every renderer.
func componentBox(c domain.Component) (viewport.Rect, bool) {
	return viewport.BoundsOf(c)
}

func fontSize(style domain.StyleMap) float64 {
	if v, ok := viewport.StyleLength(style, "fontSize"); ok && v > 0 {
		return v
	}
	return 14
}

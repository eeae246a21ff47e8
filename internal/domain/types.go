/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for invitation designs: a Design is
// an ordered sequence of Sections, each holding positioned, styled visual
// Components. The JSON shapes mirror the persisted records exactly.

import (
	"strconv"

	"github.com/google/uuid"
)

// ComponentType enumerates the closed set of visual primitives.
type ComponentType string

const (
	TypeText   ComponentType = "text"
	TypeImage  ComponentType = "image"
	TypeCircle ComponentType = "circle"
	TypeRect   ComponentType = "rect"
	TypeLine   ComponentType = "line"
)

// ValidComponentType reports whether t is one of the known primitives.
func ValidComponentType(t ComponentType) bool {
	switch t {
	case TypeText, TypeImage, TypeCircle, TypeRect, TypeLine:
		return true
	}
	return false
}

// StyleMap holds CSS-like style properties. Values are heterogeneous
// (strings such as "500px", bare numbers such as padding 2); unknown keys
// are preserved opaquely for forward compatibility.
type StyleMap map[string]any

// Clone returns a shallow value copy of the map. Style values are scalars
// in practice, so a per-key copy is a full deep copy.
func (s StyleMap) Clone() StyleMap {
	if s == nil {
		return nil
	}
	out := make(StyleMap, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merged returns a copy of s with {key: value} merged in.
func (s StyleMap) Merged(key string, value any) StyleMap {
	out := s.Clone()
	if out == nil {
		out = StyleMap{}
	}
	out[key] = value
	return out
}

// Component is a single visual element placed on a Section.
// The id carries a numeric base plus an optional dash-appended merge-role
// suffix (e.g. "comp3-ten_co_dau") used for downstream personalization.
type Component struct {
	ID    string        `json:"id"`
	Type  ComponentType `json:"type"`
	Style StyleMap      `json:"style"`
	Text  string        `json:"text,omitempty"`
	Src   string        `json:"src,omitempty"`
}

// Clone returns a deep copy of the component.
func (c Component) Clone() Component {
	c.Style = c.Style.Clone()
	return c
}

// Section is an ordered container of components with its own box style.
// Position is the 1-based rank within the design, kept as a string in the
// persisted form; component order is z-order (later entries render on top).
type Section struct {
	ID         string      `json:"id"`
	Position   string      `json:"position"`
	Style      StyleMap    `json:"style"`
	Components []Component `json:"components"`
	Responsive string      `json:"responsive,omitempty"`
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	s.Style = s.Style.Clone()
	if s.Components != nil {
		comps := make([]Component, len(s.Components))
		for i, c := range s.Components {
			comps[i] = c.Clone()
		}
		s.Components = comps
	}
	return s
}

// Rank returns the numeric value of Position, or 0 when unparsable.
func (s Section) Rank() int {
	n, err := strconv.Atoi(s.Position)
	if err != nil {
		return 0
	}
	return n
}

// Design is the top-level aggregate: a Template (reusable) or an Invitation
// (personalized instance). Sections are exclusively owned; no instance is
// shared across designs.
type Design struct {
	ID                 string    `json:"id,omitempty"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	TemplateID         string    `json:"templateId,omitempty"`
	SubscriptionPlanID string    `json:"subscriptionPlanId,omitempty"`
	ThumbnailURL       string    `json:"thumbnailUrl,omitempty"`
	Sections           []Section `json:"sections"`
}

// Clone returns a deep copy of the design.
func (d Design) Clone() Design {
	if d.Sections != nil {
		secs := make([]Section, len(d.Sections))
		for i, s := range d.Sections {
			secs[i] = s.Clone()
		}
		d.Sections = secs
	}
	return d
}

// CloneSections deep-copies a section slice.
func CloneSections(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return out
}

// NewSectionID returns a fresh unique section id.
func NewSectionID() string { return "section-" + uuid.NewString() }

// DefaultSection returns the section created for an empty design: rank 1,
// no components, and the standard invitation surface style.
func DefaultSection() Section {
	return Section{
		ID:       NewSectionID(),
		Position: "1",
		Style: StyleMap{
			"minWidth":        "500px",
			"minHeight":       "800px",
			"backgroundColor": "#f9f9f9",
			"border":          "1px solid #ddd",
			"position":        "relative",
		},
		Components: []Component{},
	}
}

// NewSection returns an appended-section value at the given 1-based rank,
// with the wide canvas style used when growing a design.
func NewSection(rank int) Section {
	return Section{
		ID:       NewSectionID(),
		Position: strconv.Itoa(rank),
		Style: StyleMap{
			"width":           "100%",
			"minWidth":        "800px",
			"height":          "100%",
			"padding":         2,
			"position":        "relative",
			"marginBottom":    2,
			"minHeight":       "500px",
			"backgroundColor": "#f9f9f9",
			"transition":      "border 0.3s ease",
		},
		Components: []Component{},
		Responsive: "",
	}
}

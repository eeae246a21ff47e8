/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas is the single authority for structural and style edits to
// the section/component tree. Every operation takes the current tree and
// returns a new one; input slices are never mutated. Operations that
// reference a missing section or component id are silent no-ops: in an
// interactive editor a stale id is an expected outcome of event races,
// not an error.
package canvas

import (
	"fmt"
	"sort"
	"strconv"

	"invitestudio/internal/domain"
)

// SelectComponent resolves a component selection. On success it returns
// the selection and a working copy of the component's style for the edit
// panel. A missing pair leaves the previous selection untouched.
func SelectComponent(sections []domain.Section, prev Selection, sectionID, componentID string) (Selection, domain.StyleMap) {
	for _, sec := range sections {
		if sec.ID != sectionID {
			continue
		}
		for _, c := range sec.Components {
			if c.ID == componentID {
				return Selection{SectionID: sectionID, ComponentID: componentID}, c.Style.Clone()
			}
		}
	}
	return prev, nil
}

// SelectSection resolves a section-only selection and returns a working
// copy of the section's style.
func SelectSection(sections []domain.Section, prev Selection, sectionID string) (Selection, domain.StyleMap) {
	for _, sec := range sections {
		if sec.ID == sectionID {
			return Selection{SectionID: sectionID}, sec.Style.Clone()
		}
	}
	return prev, nil
}

// ClearSelection resets the active selection; used when the click target
// is the canvas background itself.
func ClearSelection() Selection { return None }

// UpdateStyle merges {key: value} into the selected entity's style.
// With a component selected the owning section's style receives the same
// merge: the dual write is long-standing observed behavior that downstream
// templates depend on, so it is kept. No other section or component is
// touched. Without a selection the tree is returned unchanged.
func UpdateStyle(sections []domain.Section, sel Selection, key string, value any) []domain.Section {
	if sel.IsZero() {
		return sections
	}
	out := make([]domain.Section, len(sections))
	for i, sec := range sections {
		if sec.ID != sel.SectionID {
			out[i] = sec
			continue
		}
		sec = sec.Clone()
		if sel.IsComponent() {
			for j, c := range sec.Components {
				if c.ID == sel.ComponentID {
					sec.Components[j].Style = c.Style.Merged(key, value)
				}
			}
			sec.Style = sec.Style.Merged(key, value)
		} else {
			sec.Style = sec.Style.Merged(key, value)
		}
		out[i] = sec
	}
	return out
}

// MergeBase isolates the numeric base of a component id: trailing
// non-digit characters are stripped until a digit is exposed. Ids with no
// digits at all are kept whole, so the routine always terminates.
func MergeBase(id string) string {
	hasDigit := false
	for i := 0; i < len(id); i++ {
		if id[i] >= '0' && id[i] <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return id
	}
	for len(id) > 0 {
		last := id[len(id)-1]
		if last >= '0' && last <= '9' {
			break
		}
		id = id[:len(id)-1]
	}
	return id
}

// RenameComponentBySuffix rewrites the selected component's id to
// "<numeric base>-<value>", marking it as a personalization merge field.
// The returned selection tracks the new id. No-op without an active
// component selection.
func RenameComponentBySuffix(sections []domain.Section, sel Selection, value string) ([]domain.Section, Selection) {
	if !sel.IsComponent() {
		return sections, sel
	}
	newID := MergeBase(sel.ComponentID) + "-" + value
	out := make([]domain.Section, len(sections))
	renamed := false
	for i, sec := range sections {
		if sec.ID != sel.SectionID {
			out[i] = sec
			continue
		}
		sec = sec.Clone()
		for j, c := range sec.Components {
			if c.ID == sel.ComponentID {
				sec.Components[j].ID = newID
				renamed = true
			}
		}
		out[i] = sec
	}
	if !renamed {
		return sections, sel
	}
	return out, Selection{SectionID: sel.SectionID, ComponentID: newID}
}

// AddSection appends a fresh section ranked after the current last one and
// returns the grown tree together with the new section (for the caller's
// acknowledgment notification).
func AddSection(sections []domain.Section) ([]domain.Section, domain.Section) {
	next := domain.NewSection(len(sections) + 1)
	out := make([]domain.Section, 0, len(sections)+1)
	out = append(out, sections...)
	out = append(out, next)
	return out, next
}

// ReorderSections replaces the sequence with the given permutation and
// renumbers every position to its 1-based index. The input is expected to
// be a permutation of the existing sections; this layer does not create or
// destroy any.
func ReorderSections(newOrder []domain.Section) []domain.Section {
	out := make([]domain.Section, len(newOrder))
	for i, sec := range newOrder {
		sec = sec.Clone()
		sec.Position = strconv.Itoa(i + 1)
		out[i] = sec
	}
	return out
}

// UpdateSections is the wholesale replacement used by external list UIs.
// Structural validity is the caller's responsibility.
func UpdateSections(newSections []domain.Section) []domain.Section {
	return domain.CloneSections(newSections)
}

// SortByPosition orders sections ascending by the numeric value of their
// position field; the in-memory order on load is always derived this way.
func SortByPosition(sections []domain.Section) []domain.Section {
	out := domain.CloneSections(sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank() < out[j].Rank() })
	return out
}

// NextComponentID returns an id like "text1", "image2" unique within the
// section, derived from the highest existing numeric suffix per kind.
func NextComponentID(sec domain.Section, kind domain.ComponentType) string {
	prefix := string(kind)
	maxN := 0
	exists := map[string]struct{}{}
	for _, c := range sec.Components {
		exists[c.ID] = struct{}{}
		var n int
		if _, err := fmt.Sscanf(c.ID, prefix+"%d", &n); err == nil && n > maxN {
			maxN = n
		}
	}
	for n := maxN + 1; n < maxN+10000; n++ {
		id := fmt.Sprintf("%s%d", prefix, n)
		if _, ok := exists[id]; !ok {
			return id
		}
	}
	return fmt.Sprintf("%s%d", prefix, maxN+1)
}

// PlaceComponent inserts a dropped component into the section at the given
// canvas coordinates. An empty id gets a generated unique one; a clashing
// id makes the drop a no-op. The style record is completed so every placed
// component carries left/top/width/height.
func PlaceComponent(sections []domain.Section, sectionID string, comp domain.Component, left, top float64) []domain.Section {
	if !domain.ValidComponentType(comp.Type) {
		return sections
	}
	out := make([]domain.Section, len(sections))
	for i, sec := range sections {
		if sec.ID != sectionID {
			out[i] = sec
			continue
		}
		sec = sec.Clone()
		if comp.ID == "" {
			comp.ID = NextComponentID(sec, comp.Type)
		} else {
			for _, c := range sec.Components {
				if c.ID == comp.ID {
					return sections
				}
			}
		}
		comp = comp.Clone()
		if comp.Style == nil {
			comp.Style = domain.StyleMap{}
		}
		comp.Style["left"] = left
		comp.Style["top"] = top
		if _, ok := comp.Style["width"]; !ok {
			comp.Style["width"] = defaultWidth(comp.Type)
		}
		if _, ok := comp.Style["height"]; !ok {
			comp.Style["height"] = defaultHeight(comp.Type)
		}
		sec.Components = append(sec.Components, comp)
		out[i] = sec
	}
	return out
}

// RemoveComponent deletes a component by id. A selection pointing at the
// removed component is cleared; anything else is preserved.
func RemoveComponent(sections []domain.Section, sel Selection, sectionID, componentID string) ([]domain.Section, Selection) {
	out := make([]domain.Section, len(sections))
	removed := false
	for i, sec := range sections {
		if sec.ID != sectionID {
			out[i] = sec
			continue
		}
		sec = sec.Clone()
		comps := sec.Components[:0]
		for _, c := range sec.Components {
			if c.ID == componentID {
				removed = true
				continue
			}
			comps = append(comps, c)
		}
		sec.Components = comps
		out[i] = sec
	}
	if !removed {
		return sections, sel
	}
	if sel.SectionID == sectionID && sel.ComponentID == componentID {
		sel = None
	}
	return out, sel
}

// RemoveSection deletes a section by id and renumbers the survivors
// contiguously from 1. A selection inside the removed section is cleared.
func RemoveSection(sections []domain.Section, sel Selection, sectionID string) ([]domain.Section, Selection) {
	out := make([]domain.Section, 0, len(sections))
	removed := false
	for _, sec := range sections {
		if sec.ID == sectionID {
			removed = true
			continue
		}
		out = append(out, sec)
	}
	if !removed {
		return sections, sel
	}
	out = ReorderSections(out)
	if sel.SectionID == sectionID {
		sel = None
	}
	return out, sel
}

// SetComponentText replaces the text payload of a component by identity.
func SetComponentText(sections []domain.Section, sectionID, componentID, text string) []domain.Section {
	return mapComponent(sections, sectionID, componentID, func(c *domain.Component) { c.Text = text })
}

// SetComponentSrc replaces the image source of a component by identity.
// Applied on upload completion; a component deleted while the upload was
// in flight simply fails the id match and nothing changes.
func SetComponentSrc(sections []domain.Section, sectionID, componentID, src string) []domain.Section {
	return mapComponent(sections, sectionID, componentID, func(c *domain.Component) { c.Src = src })
}

func mapComponent(sections []domain.Section, sectionID, componentID string, fn func(*domain.Component)) []domain.Section {
	out := make([]domain.Section, len(sections))
	for i, sec := range sections {
		if sec.ID != sectionID {
			out[i] = sec
			continue
		}
		sec = sec.Clone()
		for j := range sec.Components {
			if sec.Components[j].ID == componentID {
				fn(&sec.Components[j])
			}
		}
		out[i] = sec
	}
	return out
}

func defaultWidth(t domain.ComponentType) float64 {
	switch t {
	case domain.TypeText:
		return 160
	case domain.TypeLine:
		return 120
	case domain.TypeCircle:
		return 80
	default:
		return 100
	}
}

func defaultHeight(t domain.ComponentType) float64 {
	switch t {
	case domain.TypeText:
		return 32
	case domain.TypeLine:
		return 2
	case domain.TypeCircle:
		return 80
	default:
		return 100
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package metadata converts between the in-memory ordered section tree and
// the persisted parallel-array shape {style: [...], components: [...]}
// where the array index denotes section order. Section id, position and
// responsive live on the section record, outside this encoding; ids are
// regenerated on decode ("section-<index>") and therefore do not survive a
// round trip. That loss is an accepted property of the persisted format,
// not something this package tries to repair.
package metadata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"invitestudio/internal/domain"
)

//go:embed metadata.schema.json
var schemaBytes []byte

// Metadata is the persisted encoding of a design's sections.
type Metadata struct {
	Style      []domain.StyleMap    `json:"style"`
	Components [][]domain.Component `json:"components"`
}

// ToMetadata encodes sections into the parallel-array shape. The result
// holds deep copies, so later edits to the tree do not leak into an
// encoding already handed to a save call.
func ToMetadata(sections []domain.Section) Metadata {
	m := Metadata{
		Style:      make([]domain.StyleMap, len(sections)),
		Components: make([][]domain.Component, len(sections)),
	}
	for i, sec := range sections {
		m.Style[i] = sec.Style.Clone()
		comps := make([]domain.Component, len(sec.Components))
		for j, c := range sec.Components {
			comps[j] = c.Clone()
		}
		m.Components[i] = comps
	}
	return m
}

// FromMetadata reconstructs sections per array index. The style array is
// authoritative for section count; indices beyond the components array
// yield an empty component list. Positions are assigned 1-based from the
// index so the result already satisfies the contiguous-rank invariant.
func FromMetadata(m Metadata) []domain.Section {
	out := make([]domain.Section, len(m.Style))
	for i := range m.Style {
		sec := domain.Section{
			ID:       "section-" + strconv.Itoa(i),
			Position: strconv.Itoa(i + 1),
			Style:    m.Style[i].Clone(),
		}
		if i < len(m.Components) && m.Components[i] != nil {
			comps := make([]domain.Component, len(m.Components[i]))
			for j, c := range m.Components[i] {
				comps[j] = c.Clone()
			}
			sec.Components = comps
		} else {
			sec.Components = []domain.Component{}
		}
		out[i] = sec
	}
	return out
}

// Encode marshals the metadata to JSON.
func Encode(m Metadata) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return data, nil
}

// Decode validates raw metadata JSON against the embedded schema and
// unmarshals it. Any failure is returned as an error for the caller's
// load-failure path; this function never panics on malformed input.
func Decode(data []byte) (Metadata, error) {
	if err := Validate(data); err != nil {
		return Metadata{}, err
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

// Validate checks raw JSON against the metadata schema.
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("validate metadata: %w", err)
	}
	if !result.Valid() {
		var b strings.Builder
		for i, e := range result.Errors() {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(e.String())
		}
		return fmt.Errorf("metadata does not conform to schema: %s", b.String())
	}
	return nil
}

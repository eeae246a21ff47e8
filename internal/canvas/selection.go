/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

// Selection identifies the entity currently targeted for style editing:
// a component within a section, a section alone, or nothing. It is an
// explicit immutable value passed into and returned from operations,
// never ambient state, so every operation stays a pure function.
type Selection struct {
	SectionID   string
	ComponentID string
}

// None is the empty selection.
var None = Selection{}

// IsZero reports whether nothing is selected.
func (s Selection) IsZero() bool { return s.SectionID == "" && s.ComponentID == "" }

// IsComponent reports whether a component (not just a section) is selected.
func (s Selection) IsComponent() bool { return s.SectionID != "" && s.ComponentID != "" }

// IsSection reports whether a section alone is selected.
func (s Selection) IsSection() bool { return s.SectionID != "" && s.ComponentID == "" }

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Merge roles mark a component as a personalization slot: the role token is
// appended to the component id ("comp3-ten_co_dau") and matched when guest
// data is merged into an invitation.

// MergeRole is the semantic role suffix appended to a component id.
type MergeRole string

const (
	RoleDefault   MergeRole = "default"
	RoleBrideName MergeRole = "ten_co_dau"
	RoleGroomName MergeRole = "ten_chu_re"
	RoleEventTime MergeRole = "thoi_gian"
	RoleVenue     MergeRole = "dia_diem"
	RoleGuestName MergeRole = "ten_khach"
)

// MergeRoles lists every selectable role in display order.
func MergeRoles() []MergeRole {
	return []MergeRole{RoleDefault, RoleBrideName, RoleGroomName, RoleEventTime, RoleVenue, RoleGuestName}
}

// ValidMergeRole reports whether r is one of the known roles.
func ValidMergeRole(r MergeRole) bool {
	for _, known := range MergeRoles() {
		if r == known {
			return true
		}
	}
	return false
}

// RoleOfComponentID extracts the merge role from a suffixed component id
// ("comp3-ten_co_dau" yields ten_co_dau). The bare "default" role is never
// written as a suffix, so it is not reported here.
func RoleOfComponentID(id string) (MergeRole, bool) {
	for _, r := range MergeRoles() {
		if r == RoleDefault {
			continue
		}
		suffix := "-" + string(r)
		if len(id) > len(suffix) && id[len(id)-len(suffix):] == suffix {
			return r, true
		}
	}
	return "", false
}

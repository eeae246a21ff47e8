package domain

import (
	"encoding/json"
	"testing"
)

func TestDefaultSectionShape(t *testing.T) {
	s := DefaultSection()
	if s.ID == "" {
		t.Fatalf("default section must have an id")
	}
	if s.Position != "1" {
		t.Fatalf("position = %q, want \"1\"", s.Position)
	}
	if len(s.Components) != 0 {
		t.Fatalf("default section must start empty")
	}
	for _, key := range []string{"minWidth", "minHeight", "backgroundColor", "border"} {
		if _, ok := s.Style[key]; !ok {
			t.Fatalf("default style missing %q", key)
		}
	}
}

func TestNewSectionRank(t *testing.T) {
	s := NewSection(4)
	if s.Position != "4" {
		t.Fatalf("position = %q, want \"4\"", s.Position)
	}
	if s.Rank() != 4 {
		t.Fatalf("Rank() = %d, want 4", s.Rank())
	}
	if (Section{Position: "abc"}).Rank() != 0 {
		t.Fatalf("unparsable position must rank 0")
	}
}

func TestStyleMapMergedDoesNotMutateReceiver(t *testing.T) {
	base := StyleMap{"color": "#000"}
	merged := base.Merged("color", "#f00")
	if base["color"] != "#000" {
		t.Fatalf("receiver mutated: %v", base)
	}
	if merged["color"] != "#f00" {
		t.Fatalf("merged value = %v", merged["color"])
	}
	var nilMap StyleMap
	out := nilMap.Merged("left", 10)
	if out["left"] != 10 {
		t.Fatalf("merge into nil map failed: %v", out)
	}
}

func TestCloneIsDeep(t *testing.T) {
	sec := Section{
		ID:       "s1",
		Position: "1",
		Style:    StyleMap{"backgroundColor": "#fff"},
		Components: []Component{
			{ID: "c1", Type: TypeText, Style: StyleMap{"left": 10}, Text: "Hi"},
		},
	}
	cp := sec.Clone()
	cp.Style["backgroundColor"] = "#000"
	cp.Components[0].Style["left"] = 99
	cp.Components[0].Text = "Bye"
	if sec.Style["backgroundColor"] != "#fff" {
		t.Fatalf("section style aliased")
	}
	if sec.Components[0].Style["left"] != 10 {
		t.Fatalf("component style aliased")
	}
	if sec.Components[0].Text != "Hi" {
		t.Fatalf("component text aliased")
	}
}

func TestComponentJSONOmitsEmptyPayloads(t *testing.T) {
	b, err := json.Marshal(Component{ID: "c1", Type: TypeRect, Style: StyleMap{"left": 0}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["text"]; ok {
		t.Fatalf("empty text must be omitted: %s", b)
	}
	if _, ok := m["src"]; ok {
		t.Fatalf("empty src must be omitted: %s", b)
	}
}

func TestUnknownStyleKeysSurviveJSONRoundTrip(t *testing.T) {
	in := []byte(`{"id":"c1","type":"text","style":{"left":10,"someFutureKey":"kept"}}`)
	var c Component
	if err := json.Unmarshal(in, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Component
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if back.Style["someFutureKey"] != "kept" {
		t.Fatalf("unknown key dropped: %v", back.Style)
	}
}

func TestValidComponentType(t *testing.T) {
	for _, ct := range []ComponentType{TypeText, TypeImage, TypeCircle, TypeRect, TypeLine} {
		if !ValidComponentType(ct) {
			t.Fatalf("%q should be valid", ct)
		}
	}
	if ValidComponentType("polygon") {
		t.Fatalf("polygon is not in the closed set")
	}
}

func TestMergeRoles(t *testing.T) {
	if !ValidMergeRole(RoleBrideName) || !ValidMergeRole(RoleGuestName) {
		t.Fatalf("known roles must validate")
	}
	if ValidMergeRole("unknown_role") {
		t.Fatalf("unknown role must not validate")
	}
	if len(MergeRoles()) != 6 {
		t.Fatalf("expected 6 roles, got %d", len(MergeRoles()))
	}
}

func TestRoleOfComponentID(t *testing.T) {
	cases := []struct {
		id   string
		want MergeRole
		ok   bool
	}{
		{"comp3-ten_co_dau", RoleBrideName, true},
		{"text1-ten_khach", RoleGuestName, true},
		{"text1", "", false},
		{"-ten_khach", "", false},
		{"text1-default", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := RoleOfComponentID(c.id)
		if got != c.want || ok != c.ok {
			t.Fatalf("RoleOfComponentID(%q) = %q,%v want %q,%v", c.id, got, ok, c.want, c.ok)
		}
	}
}

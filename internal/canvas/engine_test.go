package canvas

import (
	"strconv"
	"testing"

	"invitestudio/internal/domain"
)

func twoSections() []domain.Section {
	return []domain.Section{
		{
			ID:       "sec-a",
			Position: "1",
			Style:    domain.StyleMap{"backgroundColor": "#fff"},
			Components: []domain.Component{
				{ID: "text1", Type: domain.TypeText, Style: domain.StyleMap{"left": 10, "top": 10, "width": 100, "height": 20, "color": "#000"}, Text: "Hi"},
				{ID: "text2", Type: domain.TypeText, Style: domain.StyleMap{"left": 40, "top": 40, "width": 100, "height": 20, "color": "#00f"}},
			},
		},
		{
			ID:       "sec-b",
			Position: "2",
			Style:    domain.StyleMap{"backgroundColor": "#eee"},
			Components: []domain.Component{
				{ID: "image1", Type: domain.TypeImage, Style: domain.StyleMap{"left": 0, "top": 0, "width": 50, "height": 50}},
			},
		},
	}
}

func TestSelectComponentPopulatesWorkingStyle(t *testing.T) {
	secs := twoSections()
	sel, style := SelectComponent(secs, None, "sec-a", "text1")
	if !sel.IsComponent() || sel.SectionID != "sec-a" || sel.ComponentID != "text1" {
		t.Fatalf("selection = %+v", sel)
	}
	if style["color"] != "#000" {
		t.Fatalf("working style = %v", style)
	}
	// The working copy must not alias the live tree.
	style["color"] = "#123"
	if secs[0].Components[0].Style["color"] != "#000" {
		t.Fatalf("working style aliases the tree")
	}
}

func TestSelectMissingPairKeepsPreviousSelection(t *testing.T) {
	secs := twoSections()
	prev := Selection{SectionID: "sec-a", ComponentID: "text1"}
	sel, style := SelectComponent(secs, prev, "sec-a", "nope")
	if sel != prev {
		t.Fatalf("selection changed on missing id: %+v", sel)
	}
	if style != nil {
		t.Fatalf("expected nil style for missing pair")
	}
	sel, _ = SelectSection(secs, prev, "ghost")
	if sel != prev {
		t.Fatalf("section selection changed on missing id: %+v", sel)
	}
}

func TestClearSelection(t *testing.T) {
	if !ClearSelection().IsZero() {
		t.Fatalf("cleared selection must be zero")
	}
}

// Scenario D plus property P5: only the selected component (and its owning
// section via the documented dual write) may change.
func TestUpdateStyleComponentDualWrite(t *testing.T) {
	secs := twoSections()
	sel := Selection{SectionID: "sec-a", ComponentID: "text1"}
	out := UpdateStyle(secs, sel, "color", "#f00")

	if got := out[0].Components[0].Style["color"]; got != "#f00" {
		t.Fatalf("c1 color = %v, want #f00", got)
	}
	// Sibling keeps its prior color.
	if got := out[0].Components[1].Style["color"]; got != "#00f" {
		t.Fatalf("sibling color = %v, want #00f", got)
	}
	// Owning section receives the same merge (documented dual write).
	if got := out[0].Style["color"]; got != "#f00" {
		t.Fatalf("owning section color = %v, want #f00", got)
	}
	// The other section is untouched.
	if _, ok := out[1].Style["color"]; ok {
		t.Fatalf("unrelated section mutated")
	}
	if _, ok := out[1].Components[0].Style["color"]; ok {
		t.Fatalf("unrelated component mutated")
	}
	// Input tree untouched (operations are pure).
	if _, ok := secs[0].Style["color"]; ok {
		t.Fatalf("input tree mutated")
	}
}

func TestUpdateStyleSectionOnlyNeverTouchesComponents(t *testing.T) {
	secs := twoSections()
	sel := Selection{SectionID: "sec-b"}
	out := UpdateStyle(secs, sel, "backgroundColor", "#abc")
	if out[1].Style["backgroundColor"] != "#abc" {
		t.Fatalf("section style not updated")
	}
	if _, ok := out[1].Components[0].Style["backgroundColor"]; ok {
		t.Fatalf("component style must not change on section-only selection")
	}
}

func TestUpdateStyleNoSelectionIsNoop(t *testing.T) {
	secs := twoSections()
	out := UpdateStyle(secs, None, "color", "#f00")
	if len(out) != 2 {
		t.Fatalf("tree shape changed")
	}
	if _, ok := out[0].Style["color"]; ok {
		t.Fatalf("style changed without selection")
	}
}

// Property P6: numeric-base extraction with the no-digit fallback.
func TestMergeBase(t *testing.T) {
	cases := []struct{ in, want string }{
		{"comp3", "comp3"},
		{"comp3-ten_co_dau", "comp3"},
		{"text12-old_suffix", "text12"},
		{"abc", "abc"},
		{"", ""},
		{"7", "7"},
	}
	for _, c := range cases {
		if got := MergeBase(c.in); got != c.want {
			t.Fatalf("MergeBase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRenameComponentBySuffix(t *testing.T) {
	secs := []domain.Section{{
		ID:       "sec-a",
		Position: "1",
		Components: []domain.Component{
			{ID: "comp3", Type: domain.TypeText, Style: domain.StyleMap{"left": 0, "top": 0, "width": 1, "height": 1}},
		},
	}}
	sel := Selection{SectionID: "sec-a", ComponentID: "comp3"}
	out, newSel := RenameComponentBySuffix(secs, sel, "ten_co_dau")
	if out[0].Components[0].ID != "comp3-ten_co_dau" {
		t.Fatalf("id = %q", out[0].Components[0].ID)
	}
	if newSel.ComponentID != "comp3-ten_co_dau" {
		t.Fatalf("selection not retargeted: %+v", newSel)
	}

	// Renaming again replaces the suffix, never stacks it.
	out, newSel = RenameComponentBySuffix(out, newSel, "ten_khach")
	if out[0].Components[0].ID != "comp3-ten_khach" {
		t.Fatalf("id = %q", out[0].Components[0].ID)
	}
	_ = newSel
}

func TestRenameNoDigitsTerminates(t *testing.T) {
	secs := []domain.Section{{
		ID:         "sec-a",
		Components: []domain.Component{{ID: "abc", Type: domain.TypeText}},
	}}
	sel := Selection{SectionID: "sec-a", ComponentID: "abc"}
	out, _ := RenameComponentBySuffix(secs, sel, "ten_co_dau")
	if out[0].Components[0].ID != "abc-ten_co_dau" {
		t.Fatalf("id = %q", out[0].Components[0].ID)
	}
}

func TestRenameWithoutComponentSelectionIsNoop(t *testing.T) {
	secs := twoSections()
	out, sel := RenameComponentBySuffix(secs, Selection{SectionID: "sec-a"}, "x")
	if sel != (Selection{SectionID: "sec-a"}) {
		t.Fatalf("selection changed: %+v", sel)
	}
	if out[0].Components[0].ID != "text1" {
		t.Fatalf("component renamed without selection")
	}
}

// Scenario C: three appended sections rank "1","2","3".
func TestAddSectionRanks(t *testing.T) {
	var secs []domain.Section
	for i := 0; i < 3; i++ {
		var added domain.Section
		secs, added = AddSection(secs)
		if added.ID == "" {
			t.Fatalf("added section must have an id")
		}
	}
	if len(secs) != 3 {
		t.Fatalf("len = %d", len(secs))
	}
	for i, sec := range secs {
		if want := strconv.Itoa(i + 1); sec.Position != want {
			t.Fatalf("position[%d] = %q, want %q", i, sec.Position, want)
		}
	}
	ids := map[string]bool{}
	for _, sec := range secs {
		if ids[sec.ID] {
			t.Fatalf("duplicate section id %q", sec.ID)
		}
		ids[sec.ID] = true
	}
}

// Property P2: any permutation renumbers to exactly "1".."N".
func TestReorderSectionsRenumbers(t *testing.T) {
	secs := twoSections()
	third := domain.NewSection(3)
	third.ID = "sec-c"
	secs = append(secs, third)

	perm := []domain.Section{secs[2], secs[0], secs[1]}
	out := ReorderSections(perm)
	if len(out) != 3 {
		t.Fatalf("len = %d", len(out))
	}
	wantIDs := []string{"sec-c", "sec-a", "sec-b"}
	for i, sec := range out {
		if sec.ID != wantIDs[i] {
			t.Fatalf("order[%d] = %q, want %q", i, sec.ID, wantIDs[i])
		}
		if want := strconv.Itoa(i + 1); sec.Position != want {
			t.Fatalf("position[%d] = %q, want %q", i, sec.Position, want)
		}
	}
}

func TestSortByPosition(t *testing.T) {
	secs := []domain.Section{
		{ID: "b", Position: "10"},
		{ID: "a", Position: "2"},
		{ID: "c", Position: "1"},
	}
	out := SortByPosition(secs)
	if out[0].ID != "c" || out[1].ID != "a" || out[2].ID != "b" {
		t.Fatalf("order = %v %v %v", out[0].ID, out[1].ID, out[2].ID)
	}
}

// Property P1: generated ids stay unique through add and rename sequences.
func TestPlaceComponentGeneratesUniqueIDs(t *testing.T) {
	secs := []domain.Section{{ID: "sec-a", Position: "1", Components: []domain.Component{}}}
	for i := 0; i < 5; i++ {
		secs = PlaceComponent(secs, "sec-a", domain.Component{Type: domain.TypeText}, float64(i*10), 0)
	}
	secs = PlaceComponent(secs, "sec-a", domain.Component{Type: domain.TypeImage}, 0, 0)
	seen := map[string]bool{}
	for _, c := range secs[0].Components {
		if seen[c.ID] {
			t.Fatalf("duplicate component id %q", c.ID)
		}
		seen[c.ID] = true
	}
	if len(secs[0].Components) != 6 {
		t.Fatalf("len = %d", len(secs[0].Components))
	}
}

func TestPlaceComponentCompletesStyle(t *testing.T) {
	secs := []domain.Section{{ID: "sec-a", Position: "1"}}
	secs = PlaceComponent(secs, "sec-a", domain.Component{Type: domain.TypeCircle, Style: domain.StyleMap{"fillColor": "#fadadd"}}, 25, 35)
	c := secs[0].Components[0]
	if c.Style["left"] != 25.0 || c.Style["top"] != 35.0 {
		t.Fatalf("position not set: %v", c.Style)
	}
	for _, key := range []string{"width", "height"} {
		if _, ok := c.Style[key]; !ok {
			t.Fatalf("style missing %q after placement", key)
		}
	}
	if c.Style["fillColor"] != "#fadadd" {
		t.Fatalf("caller style lost: %v", c.Style)
	}
}

func TestPlaceComponentRejectsDuplicateAndUnknownType(t *testing.T) {
	secs := twoSections()
	out := PlaceComponent(secs, "sec-a", domain.Component{ID: "text1", Type: domain.TypeText}, 0, 0)
	if len(out[0].Components) != 2 {
		t.Fatalf("duplicate id placed")
	}
	out = PlaceComponent(secs, "sec-a", domain.Component{Type: "polygon"}, 0, 0)
	if len(out[0].Components) != 2 {
		t.Fatalf("unknown type placed")
	}
}

func TestRemoveComponentClearsMatchingSelection(t *testing.T) {
	secs := twoSections()
	sel := Selection{SectionID: "sec-a", ComponentID: "text1"}
	out, newSel := RemoveComponent(secs, sel, "sec-a", "text1")
	if len(out[0].Components) != 1 || out[0].Components[0].ID != "text2" {
		t.Fatalf("components = %+v", out[0].Components)
	}
	if !newSel.IsZero() {
		t.Fatalf("selection not cleared: %+v", newSel)
	}

	// Removing something else leaves the selection alone.
	out2, keep := RemoveComponent(secs, sel, "sec-a", "text2")
	if keep != sel {
		t.Fatalf("selection lost: %+v", keep)
	}
	if len(out2[0].Components) != 1 {
		t.Fatalf("components = %+v", out2[0].Components)
	}
}

func TestRemoveComponentMissingIsNoop(t *testing.T) {
	secs := twoSections()
	out, sel := RemoveComponent(secs, None, "sec-a", "ghost")
	if len(out[0].Components) != 2 || !sel.IsZero() {
		t.Fatalf("no-op violated")
	}
}

func TestRemoveSectionRenumbersAndClearsSelection(t *testing.T) {
	secs := twoSections()
	sel := Selection{SectionID: "sec-a", ComponentID: "text1"}
	out, newSel := RemoveSection(secs, sel, "sec-a")
	if len(out) != 1 || out[0].ID != "sec-b" {
		t.Fatalf("sections = %+v", out)
	}
	if out[0].Position != "1" {
		t.Fatalf("position = %q, want \"1\"", out[0].Position)
	}
	if !newSel.IsZero() {
		t.Fatalf("selection not cleared")
	}
}

func TestSetComponentSrcByIdentity(t *testing.T) {
	secs := twoSections()
	out := SetComponentSrc(secs, "sec-b", "image1", "https://cdn.example/u.png")
	if out[1].Components[0].Src != "https://cdn.example/u.png" {
		t.Fatalf("src = %q", out[1].Components[0].Src)
	}
	// Deleted component while the upload was in flight: id match fails safely.
	out = SetComponentSrc(secs, "sec-b", "deleted", "https://cdn.example/u.png")
	if out[1].Components[0].Src != "" {
		t.Fatalf("src set on missing id")
	}
}

func TestSetComponentText(t *testing.T) {
	secs := twoSections()
	out := SetComponentText(secs, "sec-a", "text2", "Save the date")
	if out[0].Components[1].Text != "Save the date" {
		t.Fatalf("text = %q", out[0].Components[1].Text)
	}
	if secs[0].Components[1].Text != "" {
		t.Fatalf("input mutated")
	}
}

func TestNextComponentIDSkipsExisting(t *testing.T) {
	sec := domain.Section{Components: []domain.Component{
		{ID: "text1"}, {ID: "text3"},
	}}
	if got := NextComponentID(sec, domain.TypeText); got != "text4" {
		t.Fatalf("next id = %q, want text4", got)
	}
	if got := NextComponentID(domain.Section{}, domain.TypeLine); got != "line1" {
		t.Fatalf("next id = %q, want line1", got)
	}
}

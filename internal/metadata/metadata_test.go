package metadata

import (
	"reflect"
	"testing"

	"invitestudio/internal/domain"
)

func sampleSections() []domain.Section {
	return []domain.Section{
		{
			ID:       "sec-a",
			Position: "1",
			Style:    domain.StyleMap{"backgroundColor": "#fff", "minHeight": "800px"},
			Components: []domain.Component{
				{ID: "text1", Type: domain.TypeText, Style: domain.StyleMap{"left": 10.0, "top": 10.0}, Text: "Hi"},
			},
		},
		{
			ID:         "sec-b",
			Position:   "2",
			Style:      domain.StyleMap{"backgroundColor": "#eee"},
			Components: []domain.Component{},
		},
	}
}

// Round-trip law: style and component content survive per index; ids are
// regenerated and deliberately do not.
func TestRoundTripPreservesContentPerIndex(t *testing.T) {
	secs := sampleSections()
	got := FromMetadata(ToMetadata(secs))
	if len(got) != len(secs) {
		t.Fatalf("len = %d, want %d", len(got), len(secs))
	}
	for i := range secs {
		if !reflect.DeepEqual(got[i].Style, secs[i].Style) {
			t.Fatalf("style[%d] = %v, want %v", i, got[i].Style, secs[i].Style)
		}
		if !reflect.DeepEqual(got[i].Components, secs[i].Components) {
			t.Fatalf("components[%d] = %v, want %v", i, got[i].Components, secs[i].Components)
		}
	}
	if got[0].ID != "section-0" || got[1].ID != "section-1" {
		t.Fatalf("ids = %q,%q", got[0].ID, got[1].ID)
	}
	if got[0].Position != "1" || got[1].Position != "2" {
		t.Fatalf("positions = %q,%q", got[0].Position, got[1].Position)
	}
}

func TestToMetadataDetachesFromTree(t *testing.T) {
	secs := sampleSections()
	m := ToMetadata(secs)
	secs[0].Style["backgroundColor"] = "#000"
	secs[0].Components[0].Text = "changed"
	if m.Style[0]["backgroundColor"] != "#fff" {
		t.Fatalf("encoded style aliases the tree")
	}
	if m.Components[0][0].Text != "Hi" {
		t.Fatalf("encoded components alias the tree")
	}
}

func TestFromMetadataLengthMismatch(t *testing.T) {
	m := Metadata{
		Style:      []domain.StyleMap{{"a": "1"}, {"b": "2"}, {"c": "3"}},
		Components: [][]domain.Component{{{ID: "text1", Type: domain.TypeText}}},
	}
	got := FromMetadata(m)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (style array is authoritative)", len(got))
	}
	if len(got[0].Components) != 1 {
		t.Fatalf("components[0] = %v", got[0].Components)
	}
	for i := 1; i < 3; i++ {
		if got[i].Components == nil || len(got[i].Components) != 0 {
			t.Fatalf("components[%d] = %v, want empty list", i, got[i].Components)
		}
	}
}

// One section, one fully styled text component reproduced exactly.
func TestDecodeLoadedDesign(t *testing.T) {
	raw := []byte(`{
		"style": [{"bg": "#fff"}],
		"components": [[{"id": "c1", "type": "text", "style": {"left": 10, "top": 10, "width": 100, "height": 20}, "text": "Hi"}]]
	}`)
	m, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	secs := FromMetadata(m)
	if len(secs) != 1 {
		t.Fatalf("len = %d, want 1", len(secs))
	}
	if secs[0].Style["bg"] != "#fff" {
		t.Fatalf("style = %v", secs[0].Style)
	}
	if len(secs[0].Components) != 1 {
		t.Fatalf("components = %v", secs[0].Components)
	}
	c := secs[0].Components[0]
	if c.ID != "c1" || c.Type != domain.TypeText || c.Text != "Hi" {
		t.Fatalf("component = %+v", c)
	}
	for key, want := range map[string]float64{"left": 10, "top": 10, "width": 100, "height": 20} {
		if got, ok := c.Style[key].(float64); !ok || got != want {
			t.Fatalf("style[%q] = %v, want %v", key, c.Style[key], want)
		}
	}
}

func TestDecodeRejectsMalformedMetadata(t *testing.T) {
	cases := []string{
		`{"style": "not-an-array", "components": []}`,
		`{"components": []}`,
		`{"style": [{}], "components": [[{"type": "text"}]]}`,
		`{"style": [{}], "components": [[{"id": "c1", "type": "polygon"}]]}`,
		`not json at all`,
	}
	for _, raw := range cases {
		if _, err := Decode([]byte(raw)); err == nil {
			t.Fatalf("Decode(%s) succeeded, want error", raw)
		}
	}
}

func TestDecodeAllowsNullComponentEntry(t *testing.T) {
	raw := []byte(`{"style": [{}, {}], "components": [null, []]}`)
	m, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	secs := FromMetadata(m)
	if len(secs[0].Components) != 0 || len(secs[1].Components) != 0 {
		t.Fatalf("components = %v / %v", secs[0].Components, secs[1].Components)
	}
}

func TestEncodeDecode(t *testing.T) {
	m := ToMetadata(sampleSections())
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(back.Style) != 2 || len(back.Components) != 2 {
		t.Fatalf("shape = %d/%d", len(back.Style), len(back.Components))
	}
}

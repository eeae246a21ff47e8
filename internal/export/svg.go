/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"invitestudio/internal/domain"
	"invitestudio/internal/storage"
)

// SVGOptions controls SVG export behavior.
type SVGOptions struct {
	Sections []int // 1-based ranks; if empty, export all sections
}

// ExportDesignSVGPages writes each section of the design as a separate SVG
// file named section-<rank>.svg under outDir. A relative outDir resolves
// below the workspace's exports folder.
func ExportDesignSVGPages(wh *storage.WorkspaceHandle, outDir string, opt SVGOptions) error {
	if wh == nil {
		return fmt.Errorf("workspace handle is nil")
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(wh.Root, "exports", outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	for _, sec := range selectedSections(wh.Design.Sections, opt.Sections) {
		var buf bytes.Buffer
		renderSectionSVG(&buf, sec)
		name := fmt.Sprintf("section-%s.svg", sec.Position)
		if err := os.WriteFile(filepath.Join(outDir, name), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// selectedSections filters sections by their 1-based rank; empty selection
// means all of them.
func selectedSections(sections []domain.Section, ranks []int) []domain.Section {
	if len(ranks) == 0 {
		return sections
	}
	want := map[int]bool{}
	for _, r := range ranks {
		want[r] = true
	}
	var out []domain.Section
	for _, sec := range sections {
		if want[sec.Rank()] {
			out = append(out, sec)
		}
	}
	return out
}

func renderSectionSVG(buf *bytes.Buffer, sec domain.Section) {
	w, h := sectionSize(sec)
	bg := styleColor(sec.Style, colorSectionBG, "backgroundColor", "background")

	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n", w, h, w, h)
	fmt.Fprintf(buf, `  <rect x="0" y="0" width="%g" height="%g" fill="%s"/>`+"\n", w, h, bg.hex())

	for _, c := range sec.Components {
		box, ok := componentBox(c)
		if !ok {
			continue
		}
		fill := styleColor(c.Style, colorBlack, "backgroundColor", "fill", "color")
		stroke := styleColor(c.Style, colorBlack, "borderColor", "stroke")
		switch c.Type {
		case domain.TypeRect:
			fmt.Fprintf(buf, `  <rect x="%g" y="%g" width="%g" height="%g" fill="%s" stroke="%s"/>`+"\n",
				box.X, box.Y, box.W, box.H, fill.hex(), stroke.hex())
		case domain.TypeCircle:
			fmt.Fprintf(buf, `  <ellipse cx="%g" cy="%g" rx="%g" ry="%g" fill="%s" stroke="%s"/>`+"\n",
				box.X+box.W/2, box.Y+box.H/2, box.W/2, box.H/2, fill.hex(), stroke.hex())
		case domain.TypeLine:
			fmt.Fprintf(buf, `  <line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="%g"/>`+"\n",
				box.X, box.Y+box.H/2, box.X+box.W, box.Y+box.H/2, stroke.hex(), maxf(box.H, 1))
		case domain.TypeText:
			col := styleColor(c.Style, colorBlack, "color")
			fmt.Fprintf(buf, `  <text x="%g" y="%g" font-size="%g" fill="%s">%s</text>`+"\n",
				box.X, box.Y+fontSize(c.Style), fontSize(c.Style), col.hex(), xmlEscape(c.Text))
		case domain.TypeImage:
			if c.Src != "" {
				fmt.Fprintf(buf, `  <image x="%g" y="%g" width="%g" height="%g" href="%s"/>`+"\n",
					box.X, box.Y, box.W, box.H, xmlEscape(c.Src))
			} else {
				fmt.Fprintf(buf, `  <rect x="%g" y="%g" width="%g" height="%g" fill="none" stroke="%s" stroke-dasharray="4 2"/>`+"\n",
					box.X, box.Y, box.W, box.H, stroke.hex())
			}
		}
	}
	buf.WriteString("</svg>\n")
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

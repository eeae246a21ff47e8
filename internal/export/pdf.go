/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"invitestudio/internal/domain"
	"invitestudio/internal/storage"
)

// PDFOptions controls PDF export behavior.
// Canvas pixels map 1:1 to PDF points; built-in Helvetica keeps text vector
// without font embedding.
type PDFOptions struct {
	Sections []int // 1-based ranks; if empty, export all sections
}

// ExportDesignPDF exports the design to a single PDF at outPath, one page
// per section. A relative outPath resolves below the workspace's exports
// folder.
func ExportDesignPDF(wh *storage.WorkspaceHandle, outPath string, opt PDFOptions) error {
	if wh == nil {
		return fmt.Errorf("workspace handle is nil")
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(wh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}

	sections := selectedSections(wh.Design.Sections, opt.Sections)
	if len(sections) == 0 {
		return fmt.Errorf("nothing to export")
	}

	w0, h0 := sectionSize(sections[0])
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w0, Ht: h0},
		OrientationStr: "",
	})
	pdf.SetTitle(wh.Design.Title, true)
	pdf.SetFont("Helvetica", "", 12)

	for _, sec := range sections {
		w, h := sectionSize(sec)
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})

		bg := styleColor(sec.Style, colorSectionBG, "backgroundColor", "background")
		pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		pdf.Rect(0, 0, w, h, "F")

		for _, c := range sec.Components {
			box, ok := componentBox(c)
			if !ok {
				continue
			}
			fill := styleColor(c.Style, colorBlack, "backgroundColor", "fill", "color")
			stroke := styleColor(c.Style, colorBlack, "borderColor", "stroke")
			pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
			pdf.SetDrawColor(int(stroke.R), int(stroke.G), int(stroke.B))
			switch c.Type {
			case domain.TypeRect:
				pdf.Rect(box.X, box.Y, box.W, box.H, "FD")
			case domain.TypeCircle:
				pdf.Ellipse(box.X+box.W/2, box.Y+box.H/2, box.W/2, box.H/2, 0, "FD")
			case domain.TypeLine:
				pdf.SetLineWidth(maxf(box.H, 1))
				pdf.Line(box.X, box.Y+box.H/2, box.X+box.W, box.Y+box.H/2)
			case domain.TypeText:
				col := styleColor(c.Style, colorBlack, "color")
				pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
				size := fontSize(c.Style)
				pdf.SetFontSize(size)
				pdf.Text(box.X, box.Y+size, c.Text)
			case domain.TypeImage:
				// Remote sources are not fetched; draw the placeholder frame.
				pdf.SetLineWidth(0.5)
				pdf.Rect(box.X, box.Y, box.W, box.H, "D")
			}
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	defer f.Close()
	if err := pdf.Output(f); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

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
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"invitestudio/internal/domain"
	"invitestudio/internal/storage"
)

// ThumbnailOptions controls PNG thumbnail rendering.
type ThumbnailOptions struct {
	Width   int // target pixel width; default 300
	Section int // 1-based rank of the section to render; default first
}

// ExportDesignThumbnail renders one section to a scaled PNG at outPath,
// the preview image stored as a design's thumbnail. A relative outPath
// resolves below the workspace's exports folder.
func ExportDesignThumbnail(wh *storage.WorkspaceHandle, outPath string, opt ThumbnailOptions) error {
	if wh == nil {
		return fmt.Errorf("workspace handle is nil")
	}
	if len(wh.Design.Sections) == 0 {
		return fmt.Errorf("nothing to render")
	}
	sec := wh.Design.Sections[0]
	if opt.Section > 0 {
		found := false
		for _, s := range wh.Design.Sections {
			if s.Rank() == opt.Section {
				sec = s
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no section with rank %d", opt.Section)
		}
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(wh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}

	full := renderSectionImage(sec)

	width := opt.Width
	if width <= 0 {
		width = 300
	}
	fw := full.Bounds().Dx()
	fh := full.Bounds().Dy()
	height := int(math.Round(float64(fh) * float64(width) / float64(fw)))
	if height < 1 {
		height = 1
	}
	thumb := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), full, full.Bounds(), xdraw.Over, nil)

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, thumb); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// renderSectionImage rasterizes a section at canvas resolution: background
// fill plus solid component boxes. Text is drawn as a box the size of its
// bounds; glyph rendering is out of scope for previews.
func renderSectionImage(sec domain.Section) *image.RGBA {
	w, h := sectionSize(sec)
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	bg := styleColor(sec.Style, colorSectionBG, "backgroundColor", "background")
	fillRect(img, img.Bounds(), bg)

	for _, c := range sec.Components {
		box, ok := componentBox(c)
		if !ok {
			continue
		}
		col := styleColor(c.Style, colorBlack, "backgroundColor", "fill", "color")
		r := image.Rect(int(box.X), int(box.Y), int(box.X+box.W), int(box.Y+box.H))
		r = r.Intersect(img.Bounds())
		if r.Empty() {
			continue
		}
		switch c.Type {
		case domain.TypeLine:
			mid := (r.Min.Y + r.Max.Y) / 2
			fillRect(img, image.Rect(r.Min.X, mid, r.Max.X, mid+1), col)
		default:
			fillRect(img, r, col)
		}
	}
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c Color) {
	src := image.NewUniform(color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
	xdraw.Draw(img, r, src, image.Point{}, xdraw.Src)
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the session shell around the canvas engine: it loads a
// design from the backend, routes user edits through the pure canvas
// operations, and saves the design and its sections back. All failures are
// converted to non-blocking notifications; nothing here ends the session.
package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"log/slog"

	"invitestudio/internal/backend"
	"invitestudio/internal/canvas"
	"invitestudio/internal/domain"
	applog "invitestudio/internal/log"
	"invitestudio/internal/metadata"
	"invitestudio/internal/viewport"
)

// Severity ranks a notification.
type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Notification is a transient, dismissible message for the user.
type Notification struct {
	Severity Severity
	Message  string
}

// Notifier receives notifications. Implementations must not block; the
// session calls it inline on the event path.
type Notifier func(Notification)

// API is the slice of the backend client the session needs. *backend.Client
// satisfies it.
type API interface {
	LoadDesign(ctx context.Context, id string) (*backend.DesignRecord, error)
	SaveDesign(ctx context.Context, rec backend.DesignRecord) (*backend.DesignRecord, error)
	ListSections(ctx context.Context, designID string) ([]backend.SectionRecord, error)
	CreateSection(ctx context.Context, rec backend.SectionRecord) (*backend.SectionRecord, error)
	UpdateSection(ctx context.Context, rec backend.SectionRecord) (*backend.SectionRecord, error)
	UploadImage(ctx context.Context, filename string, data io.Reader) (string, error)
}

// Session is one editing session over a single design. It owns the section
// tree exclusively; all mutations pass through its methods in event order.
type Session struct {
	DesignID    string
	Title       string
	Description string

	TemplateID         string
	SubscriptionPlanID string
	ThumbnailURL       string

	Sections []domain.Section
	Sel      canvas.Selection
	View     viewport.Viewport

	// WorkingStyle is the toolbar's copy of the selected entity's style.
	WorkingStyle domain.StyleMap

	api    API
	notify Notifier
	log    *slog.Logger

	// remote ids of persisted section records, keyed by local section id.
	sectionRecords map[string]string
}

// NewSession creates an empty session bound to an API and a notifier.
// notify may be nil.
func NewSession(api API, notify Notifier) *Session {
	if notify == nil {
		notify = func(Notification) {}
	}
	return &Session{
		api:            api,
		notify:         notify,
		View:           viewport.New(),
		log:            applog.WithComponent("editor"),
		sectionRecords: map[string]string{},
	}
}

func (s *Session) notifyf(sev Severity, format string, args ...any) {
	s.notify(Notification{Severity: sev, Message: fmt.Sprintf(format, args...)})
}

// Load fetches the design and reconstructs the section tree. A missing
// design or any load failure falls back to a single default section with a
// transient notice; Load never returns an error to the caller.
//
// DesignID is kept only when a record is known to exist, so a later Save
// takes the create path for fresh designs and the update path otherwise.
func (s *Session) Load(ctx context.Context, designID string) {
	rec, err := s.api.LoadDesign(ctx, designID)
	if err != nil {
		s.log.Warn("design load failed", slog.String("design", designID), slog.Any("err", err))
		s.DesignID = ""
		s.fallbackToDefault("could not load the design, starting fresh")
		return
	}
	if rec == nil {
		s.DesignID = ""
		s.fallbackToDefault("no saved design found, starting a new one")
		return
	}
	s.DesignID = rec.ID
	s.Title = rec.Title
	s.Description = rec.Description
	s.TemplateID = rec.TemplateID
	s.SubscriptionPlanID = rec.SubscriptionPlanID
	s.ThumbnailURL = rec.ThumbnailURL
	if len(rec.Metadata) == 0 {
		s.fallbackToDefault("the design has no content yet, starting with a blank section")
		return
	}
	m, err := metadata.Decode(rec.Metadata)
	if err != nil {
		s.log.Warn("design metadata invalid", slog.String("design", designID), slog.Any("err", err))
		s.fallbackToDefault("saved design could not be read, starting fresh")
		return
	}
	s.Sections = canvas.SortByPosition(metadata.FromMetadata(m))
	s.Sel = canvas.None
	s.WorkingStyle = nil
	s.sectionRecords = map[string]string{}

	// Remember persisted section record ids so Save can update instead of
	// re-create. Matched by rank; the metadata encoding regenerates local ids.
	if recs, err := s.api.ListSections(ctx, designID); err == nil {
		for _, sr := range recs {
			for _, sec := range s.Sections {
				if sec.Position == sr.Position {
					s.sectionRecords[sec.ID] = sr.ID
					break
				}
			}
		}
	}
}

func (s *Session) fallbackToDefault(msg string) {
	s.Sections = []domain.Section{domain.DefaultSection()}
	s.Sel = canvas.None
	s.WorkingStyle = nil
	s.sectionRecords = map[string]string{}
	s.notifyf(Info, "%s", msg)
}

// Save persists the design record and then each section record. The calls
// are independent; a failure leaves the in-memory tree untouched so the
// user can retry, and partial persistence across records is accepted.
func (s *Session) Save(ctx context.Context) {
	m := metadata.ToMetadata(s.Sections)
	raw, err := metadata.Encode(m)
	if err != nil {
		s.notifyf(Error, "could not encode the design: %v", err)
		return
	}
	rec := backend.DesignRecord{
		ID:                 s.DesignID,
		Title:              s.Title,
		Description:        s.Description,
		TemplateID:         s.TemplateID,
		SubscriptionPlanID: s.SubscriptionPlanID,
		ThumbnailURL:       s.ThumbnailURL,
		Metadata:           json.RawMessage(raw),
	}
	saved, err := s.api.SaveDesign(ctx, rec)
	if err != nil {
		s.notifyf(Error, "%s", saveFailureMessage(err))
		return
	}
	s.DesignID = saved.ID

	for _, sec := range s.Sections {
		secRaw, err := metadata.Encode(metadata.ToMetadata([]domain.Section{sec}))
		if err != nil {
			s.notifyf(Error, "could not encode section %s: %v", sec.Position, err)
			continue
		}
		sr := backend.SectionRecord{
			DesignID:   saved.ID,
			Position:   sec.Position,
			Responsive: sec.Responsive,
			Metadata:   json.RawMessage(secRaw),
		}
		if remoteID, ok := s.sectionRecords[sec.ID]; ok {
			sr.ID = remoteID
			if _, err := s.api.UpdateSection(ctx, sr); err != nil {
				s.notifyf(Error, "%s", saveFailureMessage(err))
			}
			continue
		}
		created, err := s.api.CreateSection(ctx, sr)
		if err != nil {
			s.notifyf(Error, "%s", saveFailureMessage(err))
			continue
		}
		s.sectionRecords[sec.ID] = created.ID
	}
	s.notifyf(Success, "design saved")
}

func saveFailureMessage(err error) string {
	if msg, ok := backend.ServerMessage(err); ok {
		return msg
	}
	return "save failed, please try again"
}

// UploadImage sends the image and, on completion, writes the returned URL
// into the component's src by identity match. A component deleted while the
// upload was in flight fails the match and nothing changes.
func (s *Session) UploadImage(ctx context.Context, sectionID, componentID, filename string, data io.Reader) {
	url, err := s.api.UploadImage(ctx, filename, data)
	if err != nil {
		s.notifyf(Error, "image upload failed")
		s.log.Warn("upload failed", slog.String("component", componentID), slog.Any("err", err))
		return
	}
	s.Sections = canvas.SetComponentSrc(s.Sections, sectionID, componentID, url)
}

// --- selection and mutation wrappers ---

// SelectComponent targets a component for style editing.
func (s *Session) SelectComponent(sectionID, componentID string) {
	sel, style := canvas.SelectComponent(s.Sections, s.Sel, sectionID, componentID)
	s.Sel = sel
	if style != nil {
		s.WorkingStyle = style
	}
}

// SelectSection targets a section alone.
func (s *Session) SelectSection(sectionID string) {
	sel, style := canvas.SelectSection(s.Sections, s.Sel, sectionID)
	s.Sel = sel
	if style != nil {
		s.WorkingStyle = style
	}
}

// ClearSelection drops the active selection (canvas background click).
func (s *Session) ClearSelection() {
	s.Sel = canvas.ClearSelection()
	s.WorkingStyle = nil
}

// UpdateStyle merges one key into the selected entity's style and keeps the
// toolbar's working copy in step.
func (s *Session) UpdateStyle(key string, value any) {
	s.Sections = canvas.UpdateStyle(s.Sections, s.Sel, key, value)
	if s.WorkingStyle != nil {
		s.WorkingStyle = s.WorkingStyle.Merged(key, value)
	}
}

// Rename marks the selected component as a merge field for the given role.
func (s *Session) Rename(role domain.MergeRole) {
	if !domain.ValidMergeRole(role) {
		return
	}
	if role == domain.RoleDefault {
		return
	}
	s.Sections, s.Sel = canvas.RenameComponentBySuffix(s.Sections, s.Sel, string(role))
}

// AddSection appends a section and acknowledges it.
func (s *Session) AddSection() {
	var added domain.Section
	s.Sections, added = canvas.AddSection(s.Sections)
	s.notifyf(Success, "section %s added", added.Position)
}

// ReorderSections applies a new permutation.
func (s *Session) ReorderSections(newOrder []domain.Section) {
	s.Sections = canvas.ReorderSections(newOrder)
}

// PlaceComponent drops a component at viewport coordinates, converting them
// into canvas space first.
func (s *Session) PlaceComponent(sectionID string, comp domain.Component, at viewport.Pt) {
	p := s.View.ToCanvas(at)
	s.Sections = canvas.PlaceComponent(s.Sections, sectionID, comp, p.X, p.Y)
}

// RemoveComponent deletes a component, clearing a matching selection.
func (s *Session) RemoveComponent(sectionID, componentID string) {
	s.Sections, s.Sel = canvas.RemoveComponent(s.Sections, s.Sel, sectionID, componentID)
	if s.Sel.IsZero() {
		s.WorkingStyle = nil
	}
}

// RemoveSection deletes a section and renumbers the survivors.
func (s *Session) RemoveSection(sectionID string) {
	s.Sections, s.Sel = canvas.RemoveSection(s.Sections, s.Sel, sectionID)
	if s.Sel.IsZero() {
		s.WorkingStyle = nil
	}
}

// SetText replaces a text component's content.
func (s *Session) SetText(sectionID, componentID, text string) {
	s.Sections = canvas.SetComponentText(s.Sections, sectionID, componentID, text)
}

// --- viewport wrappers ---

// Zoom applies one wheel step.
func (s *Session) Zoom(wheelDelta float64) { s.View = s.View.Zoom(wheelDelta) }

// PanStart begins a pan if shift is held.
func (s *Session) PanStart(x, y float64, shift bool) { s.View = s.View.PanStart(x, y, shift) }

// PanMove continues an active pan.
func (s *Session) PanMove(x, y float64) { s.View = s.View.PanMove(x, y) }

// PanEnd finishes a pan.
func (s *Session) PanEnd() { s.View = s.View.PanEnd() }

// ChanNotifier returns a Notifier that sends into a buffered channel and
// drops on overflow, plus the channel to drain. Dropping keeps the event
// path non-blocking when nobody is reading.
func ChanNotifier(buffer int) (Notifier, <-chan Notification) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Notification, buffer)
	return func(n Notification) {
		select {
		case ch <- n:
		default:
		}
	}, ch
}

// Design snapshots the session into a domain design, for exports and the
// local workspace manifest.
func (s *Session) Design() domain.Design {
	return domain.Design{
		ID:                 s.DesignID,
		Title:              s.Title,
		Description:        s.Description,
		TemplateID:         s.TemplateID,
		SubscriptionPlanID: s.SubscriptionPlanID,
		ThumbnailURL:       s.ThumbnailURL,
		Sections:           domain.CloneSections(s.Sections),
	}
}

// WaitNotification drains one notification with a timeout; a test helper
// exported for the CLI's synchronous flows as well.
func WaitNotification(ch <-chan Notification, d time.Duration) (Notification, bool) {
	select {
	case n := <-ch:
		return n, true
	case <-time.After(d):
		return Notification{}, false
	}
}

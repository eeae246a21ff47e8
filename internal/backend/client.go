/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is the HTTP client for the backend API. The editor shell uses the
// design/section/upload calls; the admin CLI additionally uses the plan,
// order and user calls.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing
// slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SetTimeout overrides the default request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.client.Timeout = d
	}
}

// apiError carries the server-provided message so callers can surface it
// verbatim in a notification.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// ServerMessage extracts the server-provided message from an API error, if
// err came from this client. ok is false for transport-level failures.
func ServerMessage(err error) (string, bool) {
	var ae *apiError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message, true
	}
	return "", false
}

func isNotFound(err error) bool {
	var ae *apiError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

func (c *Client) doJSON(ctx context.Context, method, p string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + p)
	if err != nil {
		return err
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

func decodeAPIError(resp *http.Response) error {
	ae := &apiError{Status: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var env struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &env) == nil && env.Error != "" {
		ae.Message = env.Error
	}
	return ae
}

// DesignRecord mirrors the server's design row.
type DesignRecord struct {
	ID                 string          `json:"id,omitempty"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	TemplateID         string          `json:"templateId,omitempty"`
	SubscriptionPlanID string          `json:"subscriptionPlanId,omitempty"`
	ThumbnailURL       string          `json:"thumbnailUrl,omitempty"`
	Metadata           json.RawMessage `json:"metadata,omitempty"`
	// omitzero: a zero time must vanish from create payloads, omitempty
	// would still marshal it as 0001-01-01T00:00:00Z.
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// SectionRecord mirrors the server's section row: one section's position,
// responsive hint and metadata, persisted independently of the design.
type SectionRecord struct {
	ID         string          `json:"id,omitempty"`
	DesignID   string          `json:"design_id"`
	Position   string          `json:"position"`
	Responsive string          `json:"responsive,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// PlanRecord is a subscription plan.
type PlanRecord struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"duration_days"`
	Description  string  `json:"description,omitempty"`
}

// OrderRecord is a subscription order.
type OrderRecord struct {
	ID                 string `json:"id,omitempty"`
	UserID             string `json:"user_id"`
	SubscriptionPlanID string `json:"subscription_plan_id"`
	Status             string `json:"status,omitempty"`
}

// UserRecord is a registered account (admin listing only).
type UserRecord struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

// LoadDesign fetches a persisted design. A missing design returns
// (nil, nil): absence signals "create new" to the editor shell, not an
// error.
func (c *Client) LoadDesign(ctx context.Context, id string) (*DesignRecord, error) {
	var d DesignRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/designs/"+url.PathEscape(id), nil, &d); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// ListDesigns returns all designs.
func (c *Client) ListDesigns(ctx context.Context) ([]DesignRecord, error) {
	var list []DesignRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/designs", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SaveDesign creates or updates a design. On create (empty ID) the
// transient server-managed fields are stripped from the payload; on update
// the record is sent to its id.
func (c *Client) SaveDesign(ctx context.Context, rec DesignRecord) (*DesignRecord, error) {
	var saved DesignRecord
	if rec.ID == "" {
		payload := rec
		payload.CreatedAt, payload.UpdatedAt = time.Time{}, time.Time{}
		if err := c.doJSON(ctx, http.MethodPost, "/api/designs", payload, &saved); err != nil {
			return nil, err
		}
		return &saved, nil
	}
	if err := c.doJSON(ctx, http.MethodPut, "/api/designs/"+url.PathEscape(rec.ID), rec, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteDesign removes a design and, through the schema, its sections.
func (c *Client) DeleteDesign(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/designs/"+url.PathEscape(id), nil, nil)
}

// ListSections returns the persisted sections of a design in rank order.
func (c *Client) ListSections(ctx context.Context, designID string) ([]SectionRecord, error) {
	var list []SectionRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/designs/"+url.PathEscape(designID)+"/sections", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateSection persists one new section record.
func (c *Client) CreateSection(ctx context.Context, rec SectionRecord) (*SectionRecord, error) {
	var saved SectionRecord
	if err := c.doJSON(ctx, http.MethodPost, "/api/sections", rec, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateSection updates an existing section record by id.
func (c *Client) UpdateSection(ctx context.Context, rec SectionRecord) (*SectionRecord, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("section id is required for update")
	}
	var saved SectionRecord
	if err := c.doJSON(ctx, http.MethodPut, "/api/sections/"+url.PathEscape(rec.ID), rec, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteSection removes one section record.
func (c *Client) DeleteSection(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/sections/"+url.PathEscape(id), nil, nil)
}

// UploadImage sends an image as multipart form data and returns the URL the
// server stored it under.
func (c *Client) UploadImage(ctx context.Context, filename string, data io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, data); err != nil {
		return "", fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/uploads", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeAPIError(resp)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// FetchToken requests a bearer token and stores it on the client.
func (c *Client) FetchToken(ctx context.Context, subject string, ttl time.Duration) (string, error) {
	var out struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	req := map[string]any{"subject": subject, "ttl_seconds": int64(ttl / time.Second)}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", req, &out); err != nil {
		return "", err
	}
	c.Token = out.Token
	return out.Token, nil
}

// ListPlans returns all subscription plans.
func (c *Client) ListPlans(ctx context.Context) ([]PlanRecord, error) {
	var list []PlanRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/subscription-plans", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreatePlan creates a subscription plan.
func (c *Client) CreatePlan(ctx context.Context, rec PlanRecord) (*PlanRecord, error) {
	var saved PlanRecord
	if err := c.doJSON(ctx, http.MethodPost, "/api/subscription-plans", rec, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdatePlan updates a subscription plan by id.
func (c *Client) UpdatePlan(ctx context.Context, rec PlanRecord) (*PlanRecord, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("plan id is required for update")
	}
	var saved PlanRecord
	if err := c.doJSON(ctx, http.MethodPut, "/api/subscription-plans/"+url.PathEscape(rec.ID), rec, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeletePlan removes a subscription plan.
func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/subscription-plans/"+url.PathEscape(id), nil, nil)
}

// ListOrders returns all orders.
func (c *Client) ListOrders(ctx context.Context) ([]OrderRecord, error) {
	var list []OrderRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateOrder creates an order for a plan.
func (c *Client) CreateOrder(ctx context.Context, rec OrderRecord) (*OrderRecord, error) {
	var saved OrderRecord
	if err := c.doJSON(ctx, http.MethodPost, "/api/orders", rec, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/orders/"+url.PathEscape(id), nil, nil)
}

// ListUsers returns all users (admin).
func (c *Client) ListUsers(ctx context.Context) ([]UserRecord, error) {
	var list []UserRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/users", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteUser removes a user account (admin).
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil)
}

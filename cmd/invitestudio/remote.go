/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"invitestudio/internal/backend"
	"invitestudio/internal/config"
	"invitestudio/internal/editor"
	"invitestudio/internal/storage"
)

// remoteClient builds the backend client from the user config (YAML file,
// IVS_* env overrides) and the keyring-stored token.
func remoteClient() (*backend.Client, error) {
	cfg, token, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Backend.BaseURL == "" {
		return nil, errors.New("no backend configured: set backend.base_url in the config file or " + config.EnvBackendURL)
	}
	c := backend.NewClient(cfg.Backend.BaseURL, token)
	if cfg.Backend.TimeoutMs > 0 {
		c.SetTimeout(time.Duration(cfg.Backend.TimeoutMs) * time.Millisecond)
	}
	return c, nil
}

// pullDesign fetches a remote design into a local workspace at dir, creating
// the workspace if it does not exist yet. The editor session's fallback
// behavior applies: a missing design yields one default section.
func pullDesign(ctx context.Context, api editor.API, dir, designID string) (*storage.WorkspaceHandle, []editor.Notification, error) {
	notify, ch := editor.ChanNotifier(16)
	s := editor.NewSession(api, notify)
	s.Load(ctx, designID)
	d := s.Design()

	wh, err := storage.Open(dir)
	if err != nil {
		wh, err = storage.InitWorkspace(dir, d)
		if err != nil {
			return nil, drain(ch), err
		}
	} else {
		wh.Design = d
		if err := storage.Save(wh); err != nil {
			return nil, drain(ch), err
		}
	}
	if err := storage.UpdateIndex(ctx, wh.Root, wh.Design); err != nil {
		return wh, drain(ch), err
	}
	return wh, drain(ch), nil
}

// pushDesign saves the workspace design to the backend through an editor
// session and records the adopted server id back into the manifest.
func pushDesign(ctx context.Context, api editor.API, wh *storage.WorkspaceHandle) ([]editor.Notification, error) {
	notify, ch := editor.ChanNotifier(16)
	s := editor.NewSession(api, notify)
	s.DesignID = wh.Design.ID
	s.Title = wh.Design.Title
	s.Description = wh.Design.Description
	s.TemplateID = wh.Design.TemplateID
	s.SubscriptionPlanID = wh.Design.SubscriptionPlanID
	s.ThumbnailURL = wh.Design.ThumbnailURL
	s.Sections = wh.Design.Sections
	s.Save(ctx)

	if s.DesignID != wh.Design.ID {
		wh.Design.ID = s.DesignID
		if err := storage.Save(wh); err != nil {
			return drain(ch), err
		}
	}
	return drain(ch), nil
}

func drain(ch <-chan editor.Notification) []editor.Notification {
	var out []editor.Notification
	for {
		select {
		case n := <-ch:
			out = append(out, n)
		default:
			return out
		}
	}
}

func printNotifications(ns []editor.Notification) {
	for _, n := range ns {
		fmt.Printf("%s: %s\n", n.Severity, n.Message)
	}
}

// runAdmin dispatches the admin subcommands over subscription plans, orders
// and users.
func runAdmin(ctx context.Context, c *backend.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("admin requires a resource: plans, orders or users")
	}
	switch args[0] {
	case "plans":
		if len(args) >= 2 && args[1] == "add" {
			if len(args) < 5 {
				return errors.New("admin plans add requires <name> <price> <duration-days>")
			}
			price, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("bad price %q: %w", args[3], err)
			}
			days, err := strconv.Atoi(args[4])
			if err != nil {
				return fmt.Errorf("bad duration %q: %w", args[4], err)
			}
			p, err := c.CreatePlan(ctx, backend.PlanRecord{Name: args[2], Price: price, DurationDays: days})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "created plan %s\n", p.ID)
			return nil
		}
		if len(args) >= 3 && args[1] == "rm" {
			return c.DeletePlan(ctx, args[2])
		}
		plans, err := c.ListPlans(ctx)
		if err != nil {
			return err
		}
		for _, p := range plans {
			fmt.Fprintf(out, "%s\t%s\t%.2f\t%dd\n", p.ID, p.Name, p.Price, p.DurationDays)
		}
		fmt.Fprintf(out, "%d plan(s)\n", len(plans))
		return nil
	case "orders":
		if len(args) >= 3 && args[1] == "rm" {
			return c.DeleteOrder(ctx, args[2])
		}
		orders, err := c.ListOrders(ctx)
		if err != nil {
			return err
		}
		for _, o := range orders {
			fmt.Fprintf(out, "%s\tuser=%s\tplan=%s\t%s\n", o.ID, o.UserID, o.SubscriptionPlanID, o.Status)
		}
		fmt.Fprintf(out, "%d order(s)\n", len(orders))
		return nil
	case "users":
		if len(args) >= 3 && args[1] == "rm" {
			return c.DeleteUser(ctx, args[2])
		}
		users, err := c.ListUsers(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Fprintf(out, "%s\t%s\t%s\n", u.ID, u.Email, u.Role)
		}
		fmt.Fprintf(out, "%d user(s)\n", len(users))
		return nil
	}
	return fmt.Errorf("unknown admin resource %q", args[0])
}

func mustRemoteClient() *backend.Client {
	c, err := remoteClient()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return c
}

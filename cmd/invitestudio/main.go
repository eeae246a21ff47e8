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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"invitestudio/internal/backend"
	"invitestudio/internal/config"
	"invitestudio/internal/crash"
	"invitestudio/internal/domain"
	"invitestudio/internal/export"
	applog "invitestudio/internal/log"
	"invitestudio/internal/storage"
	"invitestudio/internal/version"
)

func usage() {
	fmt.Println("InviteStudio — wedding invitation designer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  invitestudio version|-v|--version           Show version")
	fmt.Println("  invitestudio init <dir> <title>             Create a new design workspace at <dir>")
	fmt.Println("  invitestudio open <dir>                     Open workspace at <dir> and print summary")
	fmt.Println("  invitestudio save <dir>                     Save workspace at <dir> (creates backup)")
	fmt.Println("  invitestudio export <dir> svg|pdf|thumb [out]   Render the design under <dir>/exports")
	fmt.Println("  invitestudio search <dir> <query>           Full-text search over the design index")
	fmt.Println("  invitestudio pull <dir> <design-id>         Fetch a design from the backend into <dir>")
	fmt.Println("  invitestudio push <dir>                     Save the design under <dir> to the backend")
	fmt.Println("  invitestudio admin plans|orders|users ...   Manage backend resources (list, add, rm)")
	fmt.Println("  invitestudio serve                          Run the design backend (IVS_PG_DSN, PORT)")
	fmt.Println()
	fmt.Println("Remote commands read the backend URL and token from the user config")
	fmt.Println("file, the OS keychain and the " + config.EnvBackendURL + " override.")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var wh *storage.WorkspaceHandle
	defer func() { crash.Recover(wh) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <title>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			title := args[3]
			l.Info("init workspace", slog.String("root", abs), slog.String("title", title))
			d := domain.Design{Title: title, Sections: []domain.Section{domain.DefaultSection()}}
			h, err := storage.InitWorkspace(abs, d)
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			wh = h
			if err := storage.BuildIndexIfEmpty(context.Background(), abs, h.Design); err != nil {
				l.Warn("index build failed", slog.Any("err", err))
			}
			fmt.Println("Created workspace at", abs)
			return
		case "open":
			wh = mustOpen(l, args)
			fmt.Printf("Opened design: %s\n", wh.Design.Title)
			fmt.Printf("Sections: %d\n", len(wh.Design.Sections))
			fmt.Println("Root:", wh.Root)
			return
		case "save":
			wh = mustOpen(l, args)
			if err := storage.Save(wh); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if err := storage.UpdateIndex(context.Background(), wh.Root, wh.Design); err != nil {
				l.Warn("index update failed", slog.Any("err", err))
			}
			fmt.Println("Saved design and created a backup of the previous manifest (if any).")
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <dir> and a format (svg, pdf or thumb)")
				usage()
				os.Exit(2)
			}
			wh = mustOpen(l, args)
			format := args[3]
			out := ""
			if len(args) > 4 {
				out = args[4]
			}
			var err error
			switch format {
			case "svg":
				if out == "" {
					out = "svg"
				}
				err = export.ExportDesignSVGPages(wh, out, export.SVGOptions{})
			case "pdf":
				if out == "" {
					out = "design.pdf"
				}
				err = export.ExportDesignPDF(wh, out, export.PDFOptions{})
			case "thumb":
				if out == "" {
					out = "thumbnail.png"
				}
				err = export.ExportDesignThumbnail(wh, out, export.ThumbnailOptions{})
			default:
				fmt.Println("unknown export format:", format)
				os.Exit(2)
			}
			if err != nil {
				l.Error("export failed", slog.String("format", format), slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported", format, "to", filepath.Join(wh.Root, "exports", out))
			return
		case "search":
			if len(args) < 4 {
				fmt.Println("search requires <dir> and <query>")
				usage()
				os.Exit(2)
			}
			wh = mustOpen(l, args)
			ctx := context.Background()
			if _, err := storage.DetectAndRebuildIndex(ctx, wh.Root, wh.Design); err != nil {
				l.Warn("index check failed", slog.Any("err", err))
			}
			if err := storage.BuildIndexIfEmpty(ctx, wh.Root, wh.Design); err != nil {
				l.Error("index build failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			results, err := storage.Search(ctx, wh.Root, storage.SearchQuery{Text: args[3], Limit: 50})
			if err != nil {
				l.Error("search failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, r := range results {
				rank := ""
				if r.SectionRank > 0 {
					rank = "section " + strconv.Itoa(r.SectionRank) + " "
				}
				fmt.Printf("%s%s (%s): %s\n", rank, r.Path, r.Type, r.Snippet)
			}
			fmt.Printf("%d match(es)\n", len(results))
			return
		case "pull":
			if len(args) < 4 {
				fmt.Println("pull requires <dir> and <design-id>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			h, ns, err := pullDesign(context.Background(), mustRemoteClient(), abs, args[3])
			printNotifications(ns)
			if err != nil {
				l.Error("pull failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			wh = h
			fmt.Printf("Pulled design %q into %s\n", wh.Design.Title, wh.Root)
			return
		case "push":
			wh = mustOpen(l, args)
			ns, err := pushDesign(context.Background(), mustRemoteClient(), wh)
			printNotifications(ns)
			if err != nil {
				l.Error("push failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Pushed design", wh.Design.ID)
			return
		case "admin":
			if err := runAdmin(context.Background(), mustRemoteClient(), args[2:], os.Stdout); err != nil {
				l.Error("admin command failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "serve":
			if err := backend.Start(); err != nil {
				l.Error("backend failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func mustOpen(l *slog.Logger, args []string) *storage.WorkspaceHandle {
	if len(args) < 3 {
		fmt.Println(args[1], "requires <dir>")
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[2])
	l.Info("open workspace", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return h
}

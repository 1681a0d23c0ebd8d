// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Saved transcript management commands.
//
// Command: sessions (alias: session)
// Short:   List, show, export, search, and delete saved transcripts
//
// Examples:
//   operator-tui sessions list
//   operator-tui sessions show <agent-id>
//   operator-tui sessions export <agent-id> --format md > chat.md
//   operator-tui sessions delete <agent-id>
package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/operator-tui/internal/storage"
)

// HandleSessions handles the "sessions" command.
func HandleSessions(args Args) {
	Exit(handleSessions(args))
}

func handleSessions(args Args) error {
	store, err := storage.NewTranscriptStore()
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "list", "ls", "l":
		metas, err := store.List()
		if err != nil {
			return err
		}
		fmt.Print(storage.FormatList(metas))
		return nil

	case "show":
		if len(args.Raw) == 0 {
			return ErrMissingArgument("agent id", "operator-tui sessions show ID")
		}
		tr, err := store.Load(args.Raw[0])
		if err != nil {
			return err
		}
		fmt.Print(tr.ExportMarkdown())
		return nil

	case "export":
		return exportSession(store, args)

	case "search":
		if len(args.Raw) == 0 {
			return ErrMissingArgument("search text", "operator-tui sessions search TEXT")
		}
		metas, err := store.Search(strings.Join(args.Raw, " "))
		if err != nil {
			return err
		}
		fmt.Print(storage.FormatList(metas))
		return nil

	case "delete", "rm":
		if len(args.Raw) == 0 {
			return ErrMissingArgument("agent id", "operator-tui sessions delete ID")
		}
		if err := store.Delete(args.Raw[0]); err != nil {
			return err
		}
		fmt.Printf("%s Deleted transcript %s\n", okStyle.Render("[OK]"), args.Raw[0])
		return nil

	default:
		return &UsageError{Message: fmt.Sprintf("unknown sessions subcommand %q (list, show, export, search, delete)", args.Subcommand)}
	}
}

func exportSession(store *storage.TranscriptStore, args Args) error {
	if len(args.Raw) == 0 {
		return ErrMissingArgument("agent id", "operator-tui sessions export ID [--format md|json]")
	}
	tr, err := store.Load(args.Raw[0])
	if err != nil {
		return err
	}

	format := "md"
	for i, arg := range args.Raw[1:] {
		switch {
		case arg == "--format" && i+2 < len(args.Raw):
			format = args.Raw[i+2]
		case strings.HasPrefix(arg, "--format="):
			format = strings.TrimPrefix(arg, "--format=")
		}
	}

	switch format {
	case "md", "markdown":
		fmt.Print(tr.ExportMarkdown())
		return nil
	case "json":
		data, err := tr.ExportJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	default:
		return &UsageError{Message: fmt.Sprintf("unsupported format %q (md, json)", format)}
	}
}

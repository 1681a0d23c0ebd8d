// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration inspection and editing commands.
//
// Command: config
// Short:   Show or change persisted configuration
//
// Examples:
//   operator-tui config show
//   operator-tui config path
//   operator-tui config set host http://127.0.0.1:2222
//   operator-tui config set radient_api_key rk-...
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/operator-tui/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) {
	Exit(handleConfig(args))
}

func handleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return showConfig()

	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return ErrMissingArgument("key and value", "operator-tui config set KEY VALUE")
		}
		return setConfig(args.ConfigKey, args.ConfigVal)

	default:
		return &UsageError{Message: fmt.Sprintf("unknown config subcommand %q (show, path, set)", args.Subcommand)}
	}
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Configuration"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Printf("  %s %s\n", infoStyle.Render("host:"), cfg.Server.BaseURL)
	fmt.Printf("  %s %d\n", infoStyle.Render("timeout_secs:"), cfg.Server.TimeoutSecs)
	fmt.Printf("  %s %d\n", infoStyle.Render("poll_interval_secs:"), cfg.Server.PollIntervalSecs)
	fmt.Printf("  %s %d\n", infoStyle.Render("per_page:"), cfg.Server.PerPage)
	fmt.Printf("  %s %s\n", infoStyle.Render("hosting:"), cfg.Chat.Hosting)
	fmt.Printf("  %s %s\n", infoStyle.Render("model:"), cfg.Chat.Model)
	fmt.Printf("  %s %s\n", infoStyle.Render("theme:"), cfg.UI.Theme)
	fmt.Printf("  %s %t\n", infoStyle.Render("markdown:"), cfg.UI.Markdown)

	// Never print the key itself.
	if cfg.Radient.APIKey != "" {
		fmt.Printf("  %s %s\n", infoStyle.Render("radient_api_key:"), okStyle.Render("configured"))
	} else {
		fmt.Printf("  %s %s\n", infoStyle.Render("radient_api_key:"), warningStyle.Render("not set"))
	}
	fmt.Println()
	return nil
}

func setConfig(key, value string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch strings.ToLower(key) {
	case "host", "base_url":
		cfg.Server.BaseURL = value
	case "timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return &UsageError{Message: "timeout_secs must be a positive integer"}
		}
		cfg.Server.TimeoutSecs = n
	case "poll_interval_secs":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return &UsageError{Message: "poll_interval_secs must be a positive integer"}
		}
		cfg.Server.PollIntervalSecs = n
	case "per_page":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return &UsageError{Message: "per_page must be a positive integer"}
		}
		cfg.Server.PerPage = n
	case "hosting":
		cfg.Chat.Hosting = value
	case "model":
		cfg.Chat.Model = value
	case "theme":
		if value != "dark" && value != "light" && value != "auto" {
			return &UsageError{Message: "theme must be dark, light, or auto"}
		}
		cfg.UI.Theme = value
	case "markdown":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &UsageError{Message: "markdown must be true or false"}
		}
		cfg.UI.Markdown = b
	case "radient_api_key":
		cfg.Radient.APIKey = value
	default:
		return &UsageError{Message: fmt.Sprintf("unknown config key %q", key)}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("%s %s updated\n", okStyle.Render("[OK]"), key)
	return nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend and cloud account status command.
//
// Command: status (alias: s)
// Short:   Show backend reachability, agents, and Radient account state
//
// Examples:
//   operator-tui status
//   operator-tui status --json
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// statusReport is the JSON shape of the status command output.
type statusReport struct {
	Backend struct {
		URL       string `json:"url"`
		Reachable bool   `json:"reachable"`
		Error     string `json:"error,omitempty"`
		Agents    int    `json:"agents"`
	} `json:"backend"`
	Radient struct {
		Configured  bool    `json:"configured"`
		Fingerprint string  `json:"key_fingerprint,omitempty"`
		Credits     float64 `json:"credits,omitempty"`
		Error       string  `json:"error,omitempty"`
	} `json:"radient"`
}

// HandleStatus handles the "status" command.
func HandleStatus(args Args) {
	Exit(handleStatus(args))
}

func handleStatus(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	client := BuildClient(cfg)
	radientClient := BuildRadient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var report statusReport
	report.Backend.URL = cfg.Server.BaseURL

	if err := client.Health(ctx); err != nil {
		report.Backend.Error = err.Error()
	} else {
		report.Backend.Reachable = true
		if agents, err := client.ListAgents(ctx); err == nil {
			report.Backend.Agents = len(agents)
		}
	}

	report.Radient.Configured = radientClient.IsConfigured()
	if report.Radient.Configured {
		report.Radient.Fingerprint = radientClient.KeyFingerprint()
		if credits, err := radientClient.GetCredits(ctx); err != nil {
			report.Radient.Error = err.Error()
		} else {
			report.Radient.Credits = credits.Balance
		}
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printStatusReport(report)
	return nil
}

func printStatusReport(report statusReport) {
	fmt.Println()
	fmt.Println(headerStyle.Render("operator-tui status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 25)))
	fmt.Println()

	fmt.Printf("  %s %s\n", infoStyle.Render("Backend:"), report.Backend.URL)
	if report.Backend.Reachable {
		fmt.Printf("  %s %s\n", infoStyle.Render("State:"), okStyle.Render("reachable"))
		fmt.Printf("  %s %d\n", infoStyle.Render("Agents:"), report.Backend.Agents)
	} else {
		fmt.Printf("  %s %s\n", infoStyle.Render("State:"), errorStyle.Render("unreachable"))
		fmt.Printf("  %s %s\n", infoStyle.Render("Cause:"), report.Backend.Error)
	}

	fmt.Println()
	if !report.Radient.Configured {
		fmt.Printf("  %s %s\n", infoStyle.Render("Radient:"), warningStyle.Render("no API key configured"))
		fmt.Printf("  %s %s\n", infoStyle.Render("Hint:"), "set RADIENT_API_KEY or run: operator-tui config set radient_api_key KEY")
	} else {
		fmt.Printf("  %s key %s\n", infoStyle.Render("Radient:"), report.Radient.Fingerprint)
		if report.Radient.Error != "" {
			fmt.Printf("  %s %s\n", infoStyle.Render("State:"), errorStyle.Render(report.Radient.Error))
		} else {
			fmt.Printf("  %s %.2f\n", infoStyle.Render("Credits:"), report.Radient.Credits)
		}
	}
	fmt.Println()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// agents.go - Agent management commands.
//
// Command: agents (alias: agent)
// Short:   List and create backend agents
//
// Examples:
//   operator-tui agents list
//   operator-tui agents create research --model gpt-4o
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/operator-tui/internal/api"
	"github.com/jeranaias/operator-tui/internal/util"
)

// HandleAgents handles the "agents" command.
func HandleAgents(args Args) {
	Exit(handleAgents(args))
}

func handleAgents(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	client := BuildClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch args.Subcommand {
	case "", "list", "ls", "l":
		return listAgents(ctx, client, args.JSON)

	case "create":
		if len(args.Raw) == 0 {
			return ErrMissingArgument("agent name", "operator-tui agents create NAME")
		}
		agent, err := client.CreateAgent(ctx, api.CreateAgentRequest{
			Name:    args.Raw[0],
			Hosting: cfg.Chat.Hosting,
			Model:   cfg.Chat.Model,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s Created agent %s (%s)\n", okStyle.Render("[OK]"), agent.Name, agent.ID)
		return nil

	case "show":
		if len(args.Raw) == 0 {
			return ErrMissingArgument("agent id", "operator-tui agents show ID")
		}
		agent, err := client.GetAgent(ctx, args.Raw[0])
		if err != nil {
			return err
		}
		printAgent(agent)
		return nil

	default:
		return &UsageError{Message: fmt.Sprintf("unknown agents subcommand %q (list, create, show)", args.Subcommand)}
	}
}

func listAgents(ctx context.Context, client *api.Client, jsonOut bool) error {
	agents, err := client.ListAgents(ctx)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(agents)
	}

	if len(agents) == 0 {
		fmt.Println(infoStyle.Render("No agents. Create one with: operator-tui agents create <name>"))
		return nil
	}

	fmt.Printf("%s  %s  %s\n",
		headerStyle.Render(util.PadRight("NAME", 24)),
		headerStyle.Render(util.PadRight("MODEL", 28)),
		headerStyle.Render("ID"))
	for _, a := range agents {
		model := a.Model
		if a.Hosting != "" {
			model = a.Hosting + "/" + a.Model
		}
		fmt.Printf("%s  %s  %s\n",
			util.PadRight(util.TruncateWidth(a.Name, 24), 24),
			util.PadRight(util.TruncateWidth(model, 28), 28),
			infoStyle.Render(a.ID))
	}
	return nil
}

func printAgent(agent *api.Agent) {
	fmt.Printf("%s %s\n", infoStyle.Render("Name:"), agent.Name)
	fmt.Printf("%s %s\n", infoStyle.Render("ID:"), agent.ID)
	if agent.Description != "" {
		fmt.Printf("%s %s\n", infoStyle.Render("About:"), agent.Description)
	}
	if agent.Model != "" {
		fmt.Printf("%s %s/%s\n", infoStyle.Render("Model:"), agent.Hosting, agent.Model)
	}
	if !agent.CreatedAt.IsZero() {
		fmt.Printf("%s %s\n", infoStyle.Render("Created:"), agent.CreatedAt.Format("2006-01-02 15:04"))
	}
}

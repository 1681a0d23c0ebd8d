// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"testing"

	"github.com/jeranaias/operator-tui/internal/api"
)

func TestParseDefaultsToTUI(t *testing.T) {
	cmd, args := ParseArgs(nil)
	if cmd != CmdTUI {
		t.Fatalf("expected CmdTUI, got %v", cmd)
	}
	if args.Host != "" || args.Model != "" {
		t.Fatalf("expected empty overrides, got %+v", args)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--host", "http://localhost:2222", "--model=gpt-4o", "--json", "status"})
	if cmd != CmdStatus {
		t.Fatalf("expected CmdStatus, got %v", cmd)
	}
	if args.Host != "http://localhost:2222" {
		t.Errorf("host = %q", args.Host)
	}
	if args.Model != "gpt-4o" {
		t.Errorf("model = %q", args.Model)
	}
	if !args.JSON {
		t.Error("expected JSON flag")
	}
}

func TestParseAskQuery(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "what", "is", "a", "goroutine"})
	if cmd != CmdAsk {
		t.Fatalf("expected CmdAsk, got %v", cmd)
	}
	if args.Query != "what is a goroutine" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParseUnknownCommandIsAsk(t *testing.T) {
	// A bare question without the ask keyword still works.
	cmd, args := ParseArgs([]string{"what", "is", "this"})
	if cmd != CmdAsk {
		t.Fatalf("expected CmdAsk, got %v", cmd)
	}
	if args.Query != "what is this" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParseSubcommands(t *testing.T) {
	tests := []struct {
		in   []string
		cmd  Command
		sub  string
		raw0 string
	}{
		{[]string{"agents", "create", "research"}, CmdAgents, "create", "research"},
		{[]string{"sessions", "export", "abc"}, CmdSessions, "export", "abc"},
		{[]string{"config", "set"}, CmdConfig, "set", ""},
		{[]string{"s"}, CmdStatus, "", ""},
		{[]string{"version"}, CmdVersion, "", ""},
		{[]string{"help"}, CmdHelp, "", ""},
	}
	for _, tt := range tests {
		cmd, args := ParseArgs(tt.in)
		if cmd != tt.cmd {
			t.Errorf("%v: cmd = %v, want %v", tt.in, cmd, tt.cmd)
		}
		if args.Subcommand != tt.sub {
			t.Errorf("%v: subcommand = %q, want %q", tt.in, args.Subcommand, tt.sub)
		}
		if tt.raw0 != "" && (len(args.Raw) == 0 || args.Raw[0] != tt.raw0) {
			t.Errorf("%v: raw = %v, want first %q", tt.in, args.Raw, tt.raw0)
		}
	}
}

func TestParseConfigSet(t *testing.T) {
	cmd, args := ParseArgs([]string{"config", "set", "model", "gpt-4o"})
	if cmd != CmdConfig {
		t.Fatalf("expected CmdConfig, got %v", cmd)
	}
	if args.ConfigKey != "model" || args.ConfigVal != "gpt-4o" {
		t.Errorf("key=%q val=%q", args.ConfigKey, args.ConfigVal)
	}
}

func TestGetExitCode(t *testing.T) {
	if got := GetExitCode(nil); got != ExitSuccess {
		t.Errorf("nil error: %d", got)
	}
	if got := GetExitCode(&UsageError{Message: "bad"}); got != ExitUsageError {
		t.Errorf("usage error: %d", got)
	}
	notRunning := &api.ClientError{Type: api.ErrTypeNotRunning, Message: "down"}
	if got := GetExitCode(notRunning); got != ExitNetworkError {
		t.Errorf("not running: %d", got)
	}
	if got := GetExitCode(errors.New("boom")); got != ExitGeneralError {
		t.Errorf("generic: %d", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

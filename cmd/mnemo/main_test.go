package main

import (
	"testing"
)

func TestNewLearnCmd(t *testing.T) {
	cmd := newLearnCmd()

	if cmd.Use != "learn <content>" {
		t.Errorf("Use = %q, want learn <content>", cmd.Use)
	}

	for _, flag := range []string{"type", "confidence", "situation", "tag"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
}

func TestNewConnectCmd(t *testing.T) {
	cmd := newConnectCmd()

	if cmd.Use != "connect <source> <target> <type>" {
		t.Errorf("Use = %q, want connect <source> <target> <type>", cmd.Use)
	}
	if cmd.Flags().Lookup("weight") == nil {
		t.Error("missing --weight flag")
	}

	weight, _ := cmd.Flags().GetFloat64("weight")
	if weight != 0 {
		t.Errorf("default weight = %v, want 0 (engine applies the default)", weight)
	}
}

func TestNewRelatedCmdDefaults(t *testing.T) {
	cmd := newRelatedCmd()

	depth, _ := cmd.Flags().GetInt("depth")
	if depth != 1 {
		t.Errorf("default depth = %d, want 1", depth)
	}
	mode, _ := cmd.Flags().GetString("mode")
	if mode != "bfs" {
		t.Errorf("default mode = %q, want bfs", mode)
	}
}

func TestNewSearchCmdFlags(t *testing.T) {
	cmd := newSearchCmd()

	for _, flag := range []string{"type", "min-relevance", "limit", "offset"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
}

func TestNewReindexCmd(t *testing.T) {
	cmd := newReindexCmd()

	if cmd.Use != "reindex" {
		t.Errorf("Use = %q, want reindex", cmd.Use)
	}
}

func TestNewPruneCmdDefaults(t *testing.T) {
	cmd := newPruneCmd()

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	if threshold != 0.01 {
		t.Errorf("default threshold = %v, want 0.01", threshold)
	}
}

func TestNewBackupCmdHasSubcommands(t *testing.T) {
	cmd := newBackupCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"list", "verify"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("backup is missing %q subcommand, has %v", want, names)
		}
	}
}

func TestNewTokenCmdDefaults(t *testing.T) {
	cmd := newTokenCmd()

	role, _ := cmd.Flags().GetString("role")
	if role != "reader" {
		t.Errorf("default role = %q, want reader", role)
	}
}

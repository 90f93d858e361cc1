package main

import (
	"context"
	"slices"
	"testing"

	"github.com/syncdash/syncdash/internal/config"
	"github.com/syncdash/syncdash/internal/runner"
)

func TestSplitStrategyArg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		wantNames    []string
		wantStrategy string
	}{
		{"no args", nil, nil, ""},
		{"names only", []string{"notes", "dotfiles"}, []string{"notes", "dotfiles"}, ""},
		{"local first", []string{"local", "notes"}, []string{"notes"}, "local"},
		{"remote alone", []string{"remote"}, []string{}, "remote"},
		{"strategy not first", []string{"notes", "local"}, []string{"notes", "local"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			names, strategy := splitStrategyArg(tt.args)
			if !slices.Equal(names, tt.wantNames) {
				t.Errorf("names = %v, want %v", names, tt.wantNames)
			}
			if strategy != tt.wantStrategy {
				t.Errorf("strategy = %q, want %q", strategy, tt.wantStrategy)
			}
		})
	}
}

func TestActionTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action   runner.Action
		strategy runner.Strategy
		explicit bool
		want     string
	}{
		{runner.ActionSync, runner.StrategyLocal, true, "Starting Bidirectional Sync (Strategy: ours)"},
		{runner.ActionSync, runner.StrategyRemote, true, "Starting Bidirectional Sync (Strategy: theirs)"},
		{runner.ActionSync, runner.StrategyRemote, false, "Starting Bidirectional Sync"},
		{runner.ActionPush, runner.StrategyRemote, false, "Starting Push"},
		{runner.ActionUntracked, runner.StrategyRemote, false, "Listing Untracked Files"},
	}
	for _, tt := range tests {
		if got := actionTitle(tt.action, tt.strategy, tt.explicit); got != tt.want {
			t.Errorf("actionTitle(%v, %v, %v) = %q, want %q", tt.action, tt.strategy, tt.explicit, got, tt.want)
		}
	}
}

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Strategy = "local"
	ctx := config.WithConfig(context.Background(), &cfg)

	t.Run("config strategy is the fallback", func(t *testing.T) {
		t.Parallel()
		req, err := buildRequest(ctx, actionOptions{action: runner.ActionPull})
		if err != nil {
			t.Fatal(err)
		}
		if req.Strategy != runner.StrategyLocal || req.StrategySet {
			t.Errorf("got strategy %v (set=%v), want local and not set", req.Strategy, req.StrategySet)
		}
	})

	t.Run("explicit strategy is marked", func(t *testing.T) {
		t.Parallel()
		req, err := buildRequest(ctx, actionOptions{action: runner.ActionSync, strategy: "theirs"})
		if err != nil {
			t.Fatal(err)
		}
		if req.Strategy != runner.StrategyRemote || !req.StrategySet {
			t.Errorf("got strategy %v (set=%v), want remote and set", req.Strategy, req.StrategySet)
		}
	})

	t.Run("invalid strategy", func(t *testing.T) {
		t.Parallel()
		if _, err := buildRequest(ctx, actionOptions{action: runner.ActionSync, strategy: "rebase"}); err == nil {
			t.Error("expected an error for an unknown strategy")
		}
	})

	t.Run("defaults without config", func(t *testing.T) {
		t.Parallel()
		req, err := buildRequest(context.Background(), actionOptions{action: runner.ActionFetch})
		if err != nil {
			t.Fatal(err)
		}
		if req.Strategy != runner.StrategyRemote {
			t.Errorf("strategy = %v, want remote", req.Strategy)
		}
	})
}

func TestStatusHeaders(t *testing.T) {
	t.Parallel()

	if got := statusHeaders(false); !slices.Equal(got, []string{"REPOSITORY", "LOCAL STATUS", "LAST FETCH"}) {
		t.Errorf("statusHeaders(false) = %v", got)
	}
	if got := statusHeaders(true); !slices.Equal(got, []string{"REPOSITORY", "LOCAL STATUS", "REMOTE STATUS", "LAST FETCH"}) {
		t.Errorf("statusHeaders(true) = %v", got)
	}
}

func TestPluralize(t *testing.T) {
	t.Parallel()

	if got := pluralize(1, "repository"); got != "1 repository" {
		t.Errorf("pluralize(1) = %q", got)
	}
	if got := pluralize(3, "folder"); got != "3 folders" {
		t.Errorf("pluralize(3) = %q", got)
	}
}

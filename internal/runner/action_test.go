package runner

import "testing"

func TestParseAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Action
		wantErr bool
	}{
		{"sync", ActionSync, false},
		{"s", ActionSync, false},
		{"FETCH", ActionFetch, false},
		{"l", ActionPull, false},
		{"pull", ActionPull, false},
		{"p", ActionPush, false},
		{"t", ActionStatus, false},
		{"n", ActionUntracked, false},
		{"ignored", ActionIgnored, false},
		{"rebase", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseAction(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAction(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAction_Next(t *testing.T) {
	t.Parallel()

	a := ActionSync
	var seen []string
	for range len(Actions) {
		seen = append(seen, a.String())
		a = a.Next()
	}
	if a != ActionSync {
		t.Errorf("Next() did not wrap around, ended at %v", a)
	}
	want := []string{"sync", "fetch", "pull", "push", "status", "untracked", "ignored"}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("action %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestAction_ReadOnly(t *testing.T) {
	t.Parallel()

	for _, a := range Actions {
		want := a == ActionStatus || a == ActionUntracked || a == ActionIgnored
		if a.ReadOnly() != want {
			t.Errorf("%v.ReadOnly() = %v, want %v", a, a.ReadOnly(), want)
		}
	}
}

func TestActionForKey(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, a := range Actions {
		if seen[a.Key()] {
			t.Errorf("duplicate key %q", a.Key())
		}
		seen[a.Key()] = true
		got, ok := ActionForKey(a.Key())
		if !ok || got != a {
			t.Errorf("ActionForKey(%q) = %v, %v, want %v", a.Key(), got, ok, a)
		}
	}
	if _, ok := ActionForKey("x"); ok {
		t.Error("ActionForKey(\"x\") should not match")
	}
}

func TestStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		want   Strategy
		option string
		label  string
	}{
		{"local", StrategyLocal, "ours", "Local (ours)"},
		{"ours", StrategyLocal, "ours", "Local (ours)"},
		{"remote", StrategyRemote, "theirs", "Remote (theirs)"},
		{"Theirs", StrategyRemote, "theirs", "Remote (theirs)"},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.input)
		if err != nil {
			t.Fatalf("ParseStrategy(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if got.GitOption() != tt.option {
			t.Errorf("%v.GitOption() = %q, want %q", got, got.GitOption(), tt.option)
		}
		if got.Label() != tt.label {
			t.Errorf("%v.Label() = %q, want %q", got, got.Label(), tt.label)
		}
	}

	if _, err := ParseStrategy("rebase"); err == nil {
		t.Error("ParseStrategy(\"rebase\") should fail")
	}
	if StrategyLocal.Toggle() != StrategyRemote || StrategyRemote.Toggle() != StrategyLocal {
		t.Error("Toggle() should switch between local and remote")
	}
}

func TestEvent_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		want  string
	}{
		{LevelHeader, "==> msg"},
		{LevelInfo, "  msg"},
		{LevelSuccess, "  ✓ msg"},
		{LevelWarn, "  ⚠ msg"},
		{LevelError, "  ✗ msg"},
		{LevelDetail, "    msg"},
	}
	for _, tt := range tests {
		if got := (Event{Level: tt.level, Text: "msg"}).Format(); got != tt.want {
			t.Errorf("Format() = %q, want %q", got, tt.want)
		}
	}
}

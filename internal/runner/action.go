package runner

import (
	"fmt"
	"strings"
)

// Action is one of the operations applied to every selected repository.
type Action int

// Actions in dashboard order.
const (
	ActionSync Action = iota
	ActionFetch
	ActionPull
	ActionPush
	ActionStatus
	ActionUntracked
	ActionIgnored
)

// Actions lists every action in dashboard order.
var Actions = []Action{
	ActionSync, ActionFetch, ActionPull, ActionPush,
	ActionStatus, ActionUntracked, ActionIgnored,
}

var actionInfo = map[Action]struct {
	name, key, desc string
}{
	ActionSync:      {"sync", "s", "commit, fetch, pull with strategy, push"},
	ActionFetch:     {"fetch", "f", "fetch from the remote"},
	ActionPull:      {"pull", "l", "commit local changes, pull with strategy"},
	ActionPush:      {"push", "p", "commit staged work, push"},
	ActionStatus:    {"status", "t", "show working tree and upstream state"},
	ActionUntracked: {"untracked", "n", "list untracked files"},
	ActionIgnored:   {"ignored", "i", "list ignored files"},
}

func (a Action) String() string {
	if info, ok := actionInfo[a]; ok {
		return info.name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Key is the dashboard shortcut that selects the action.
func (a Action) Key() string {
	return actionInfo[a].key
}

// Description is a short help text.
func (a Action) Description() string {
	return actionInfo[a].desc
}

// ReadOnly reports whether the action only inspects repositories. Read-only
// actions never clone a missing repository.
func (a Action) ReadOnly() bool {
	return a == ActionStatus || a == ActionUntracked || a == ActionIgnored
}

// Next cycles to the following action, wrapping around.
func (a Action) Next() Action {
	return Actions[(int(a)+1)%len(Actions)]
}

// ParseAction resolves an action name or its shortcut key.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range Actions {
		if s == a.String() || s == a.Key() {
			return a, nil
		}
	}
	return 0, fmt.Errorf("invalid action %q (valid: %s)", s, strings.Join(ActionNames(), ", "))
}

// ActionForKey returns the action whose shortcut is key.
func ActionForKey(key string) (Action, bool) {
	for _, a := range Actions {
		if a.Key() == key {
			return a, true
		}
	}
	return 0, false
}

// ActionNames returns the action names in dashboard order.
func ActionNames() []string {
	names := make([]string, len(Actions))
	for i, a := range Actions {
		names[i] = a.String()
	}
	return names
}

// Strategy decides which side wins on merge conflicts during pull.
type Strategy int

const (
	// StrategyRemote keeps the upstream side (git -X theirs).
	StrategyRemote Strategy = iota
	// StrategyLocal keeps the local side (git -X ours).
	StrategyLocal
)

func (s Strategy) String() string {
	if s == StrategyLocal {
		return "local"
	}
	return "remote"
}

// GitOption is the value passed to git pull --strategy-option.
func (s Strategy) GitOption() string {
	if s == StrategyLocal {
		return "ours"
	}
	return "theirs"
}

// Label is the dashboard rendering, e.g. "Remote (theirs)".
func (s Strategy) Label() string {
	name := s.String()
	return strings.ToUpper(name[:1]) + name[1:] + " (" + s.GitOption() + ")"
}

// Toggle switches between local and remote.
func (s Strategy) Toggle() Strategy {
	if s == StrategyLocal {
		return StrategyRemote
	}
	return StrategyLocal
}

// ParseStrategy accepts local/remote and the git spellings ours/theirs.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "ours":
		return StrategyLocal, nil
	case "remote", "theirs":
		return StrategyRemote, nil
	}
	return StrategyRemote, fmt.Errorf("invalid strategy %q (valid: local, remote)", s)
}

package hooks

import "path/filepath"

// ForRepo builds a Context for an action that ran in a repository.
func ForRepo(path, repo, action, strategy, remote string, trigger Trigger, env map[string]string) Context {
	if repo == "" {
		repo = filepath.Base(path)
	}
	return Context{
		Path:     path,
		Repo:     repo,
		Action:   action,
		Strategy: strategy,
		Remote:   remote,
		Trigger:  trigger,
		Env:      env,
	}
}

// ForMount builds a Context for an rclone mount, unmount or bisync.
func ForMount(local, remote string, trigger Trigger) Context {
	return Context{
		Path:    local,
		Action:  string(trigger),
		Remote:  remote,
		Trigger: trigger,
	}
}

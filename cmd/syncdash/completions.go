package main

import (
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/syncdash/syncdash/internal/rclone"
	"github.com/syncdash/syncdash/internal/registry"
)

// matchNames returns the candidates matching toComplete: prefix matches
// first, then fuzzy matches ranked by score.
func matchNames(candidates []string, toComplete string, exclude []string) []string {
	candidates = slices.DeleteFunc(slices.Clone(candidates), func(c string) bool {
		return slices.Contains(exclude, c)
	})
	if toComplete == "" {
		return candidates
	}

	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, toComplete) {
			matches = append(matches, c)
		}
	}
	for _, m := range fuzzy.Find(toComplete, candidates) {
		if !slices.Contains(matches, m.Str) {
			matches = append(matches, m.Str)
		}
	}
	return matches
}

// completeRepoNames completes registered repository names, skipping the
// ones already given.
func completeRepoNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	reg, err := registry.Load()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return matchNames(reg.Names(), toComplete, args), cobra.ShellCompDirectiveNoFileComp
}

// completeFirstRepoName completes a single repository name argument.
func completeFirstRepoName(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeRepoNames(cmd, args, toComplete)
}

// completeLabels completes labels used in the registry.
func completeLabels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	reg, err := registry.Load()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return matchNames(reg.AllLabels(), toComplete, nil), cobra.ShellCompDirectiveNoFileComp
}

// completeStrategies completes merge strategy names.
func completeStrategies(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"local", "remote"}, cobra.ShellCompDirectiveNoFileComp
}

// completeRepoThenLabel completes a repository name, then a label.
func completeRepoThenLabel(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return completeRepoNames(cmd, args, toComplete)
	case 1:
		return completeLabels(cmd, args, toComplete)
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// completeRemotes completes configured rclone remote names.
func completeRemotes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	m, err := rclone.NewManager(configFrom(cmd.Context()).Rclone)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	remotes, err := m.ListRemotes(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return matchNames(remotes, toComplete, nil), cobra.ShellCompDirectiveNoFileComp
}

// completeHookNames completes hook names from the config.
func completeHookNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return completeFirstRepoName(cmd, args[1:], toComplete)
	}
	hooks := configFrom(cmd.Context()).Hooks.Hooks
	names := make([]string, 0, len(hooks))
	for name := range hooks {
		names = append(names, name)
	}
	slices.Sort(names)
	return matchNames(names, toComplete, nil), cobra.ShellCompDirectiveNoFileComp
}

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/syncdash/syncdash/internal/git"
	"github.com/syncdash/syncdash/internal/log"
	"github.com/syncdash/syncdash/internal/output"
	"github.com/syncdash/syncdash/internal/registry"
	"github.com/syncdash/syncdash/internal/ui/static"
)

func runReposList(ctx context.Context, labels []string, jsonOutput bool) error {
	out := output.FromContext(ctx)

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	repos, err := reg.Select(nil, labels)
	if err != nil {
		return err
	}

	if jsonOutput {
		if repos == nil {
			repos = []registry.Repo{}
		}
		return out.JSON(repos)
	}

	if len(repos) == 0 {
		out.Println("No repositories registered. Use 'syncdash repos add <url>' or 'syncdash repos init'.")
		return nil
	}

	rows := make([][]string, 0, len(repos))
	for _, repo := range repos {
		labels := "-"
		if len(repo.Labels) > 0 {
			labels = strings.Join(repo.Labels, ", ")
		}
		rows = append(rows, []string{repo.Name, repo.URL, labels})
	}
	out.Print(static.RenderTable([]string{"NAME", "URL", "LABELS"}, rows))
	return nil
}

func runReposAdd(ctx context.Context, url, name string, labels []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	repo := registry.Repo{Name: name, URL: url, Labels: labels}
	if err := reg.Add(repo); err != nil {
		return err
	}
	if err := reg.Save(); err != nil {
		return err
	}

	if repo.Name == "" {
		repo.Name = registry.NameFromURL(url)
	}
	output.FromContext(ctx).Printf("Registered %s (%s)\n", repo.Name, url)
	return nil
}

func runReposRemove(ctx context.Context, names []string) error {
	out := output.FromContext(ctx)

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := reg.Remove(name); err != nil {
			return err
		}
	}
	if err := reg.Save(); err != nil {
		return err
	}
	for _, name := range names {
		out.Printf("Unregistered %s\n", name)
	}
	return nil
}

func runReposLabel(ctx context.Context, name, label string, add bool) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	verb := "Added label %q to %s\n"
	if add {
		err = reg.AddLabel(name, label)
	} else {
		err = reg.RemoveLabel(name, label)
		verb = "Removed label %q from %s\n"
	}
	if err != nil {
		return err
	}
	if err := reg.Save(); err != nil {
		return err
	}
	output.FromContext(ctx).Printf(verb, label, name)
	return nil
}

func runReposInit(ctx context.Context) error {
	out := output.FromContext(ctx)

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	added := reg.Seed()
	if len(added) == 0 {
		out.Println("Example repositories already registered.")
		return nil
	}
	if err := reg.Save(); err != nil {
		return err
	}
	out.Printf("Registered %s: %s\n", pluralize(len(added), "repository"), strings.Join(added, ", "))
	return nil
}

func runReposImport(ctx context.Context, labels []string) error {
	out := output.FromContext(ctx)
	l := log.FromContext(ctx)

	wd, err := requireWorkdir(ctx)
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	found, err := git.DiscoverRepos(ctx, wd)
	if err != nil {
		return err
	}

	var added []string
	for _, d := range found {
		if d.URL == "" {
			l.Printf("Skipping %s: no origin remote\n", d.Name)
			continue
		}
		if _, err := reg.FindByName(d.Name); err == nil {
			continue
		} else if !errors.Is(err, registry.ErrNotFound) {
			return err
		}
		if err := reg.Add(registry.Repo{Name: d.Name, URL: d.URL, Labels: labels}); err != nil {
			l.Printf("Skipping %s: %v\n", d.Name, err)
			continue
		}
		added = append(added, d.Name)
	}

	if len(added) == 0 {
		out.Printf("No new repositories found in %s\n", wd)
		return nil
	}
	if err := reg.Save(); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	out.Printf("Registered %s: %s\n", pluralize(len(added), "repository"), strings.Join(added, ", "))
	return nil
}

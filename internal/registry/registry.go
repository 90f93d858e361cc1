// Package registry manages the repository list at ~/.syncdash/repos.json
//
// Each entry maps a repository name (its folder under the workdir) to the
// clone URL used when the folder does not exist yet.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/syncdash/syncdash/internal/storage"
)

// ErrNotFound is returned when a repository name is not registered.
var ErrNotFound = errors.New("repo not found")

// Repo represents a registered git repository
type Repo struct {
	Name   string   `json:"name"`             // Folder name under the workdir
	URL    string   `json:"url"`              // Clone URL
	Labels []string `json:"labels,omitempty"` // Labels for grouping
}

// Registry holds all registered repos
type Registry struct {
	Repos []Repo `json:"repos"`

	path string
}

// DefaultPath returns the path to ~/.syncdash/repos.json
func DefaultPath() (string, error) {
	return storage.Path("repos.json")
}

// Load reads the registry from ~/.syncdash/repos.json
// Returns empty registry if file doesn't exist
func Load() (*Registry, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the registry from path.
func LoadFrom(path string) (*Registry, error) {
	reg := &Registry{Repos: []Repo{}, path: path}
	if err := storage.LoadJSON(path, reg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return reg, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return reg, nil
}

// Save writes the registry back to the file it was loaded from.
func (r *Registry) Save() error {
	if r.path == "" {
		path, err := DefaultPath()
		if err != nil {
			return err
		}
		r.path = path
	}
	if err := storage.SaveJSON(r.path, r); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

// NameFromURL derives a repository name from a clone URL:
// "git@github.com:user/back-System.git" -> "back-System".
func NameFromURL(url string) string {
	url = strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}
	return url
}

// validateName rejects names that cannot be used as a single folder.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid repo name %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid repo name %q: must not contain path separators", name)
	}
	return nil
}

// Add registers a new repo. The name is derived from the URL when empty.
// Returns error if the name or URL is already registered.
func (r *Registry) Add(repo Repo) error {
	if repo.URL == "" {
		return errors.New("repo URL is required")
	}
	if repo.Name == "" {
		repo.Name = NameFromURL(repo.URL)
	}
	if err := validateName(repo.Name); err != nil {
		return err
	}

	for _, existing := range r.Repos {
		if existing.Name == repo.Name {
			return fmt.Errorf("repo name already exists: %s", repo.Name)
		}
		if existing.URL == repo.URL {
			return fmt.Errorf("repo already registered as %s: %s", existing.Name, repo.URL)
		}
	}

	slices.Sort(repo.Labels)
	repo.Labels = slices.Compact(repo.Labels)
	r.Repos = append(r.Repos, repo)
	return nil
}

// Remove unregisters a repo by name
func (r *Registry) Remove(name string) error {
	for i, repo := range r.Repos {
		if repo.Name == name {
			r.Repos = slices.Delete(r.Repos, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// FindByName looks up a repo by name
func (r *Registry) FindByName(name string) (*Repo, error) {
	for i := range r.Repos {
		if r.Repos[i].Name == name {
			return &r.Repos[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// FindByLabels returns repos matching any of the given labels
func (r *Registry) FindByLabels(labels []string) []Repo {
	var matches []Repo
	for _, repo := range r.Repos {
		if repo.MatchesLabels(labels) {
			matches = append(matches, repo)
		}
	}
	return matches
}

// Sorted returns all repos ordered by name.
func (r *Registry) Sorted() []Repo {
	repos := slices.Clone(r.Repos)
	slices.SortFunc(repos, func(a, b Repo) int { return strings.Compare(a.Name, b.Name) })
	return repos
}

// Select resolves repository names and labels to repos ordered by name.
// With neither names nor labels, every repo is selected. Unknown names are
// reported together, listing the available repositories.
func (r *Registry) Select(names, labels []string) ([]Repo, error) {
	if len(names) == 0 && len(labels) == 0 {
		return r.Sorted(), nil
	}

	var unknown []string
	selected := map[string]bool{}
	for _, name := range names {
		if _, err := r.FindByName(name); err != nil {
			unknown = append(unknown, name)
			continue
		}
		selected[name] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown repositories: %s\navailable: %s",
			strings.Join(unknown, ", "), strings.Join(r.Names(), ", "))
	}

	for _, repo := range r.FindByLabels(labels) {
		selected[repo.Name] = true
	}

	var repos []Repo
	for _, repo := range r.Sorted() {
		if selected[repo.Name] {
			repos = append(repos, repo)
		}
	}
	return repos, nil
}

// AllLabels returns all unique labels across all repos
func (r *Registry) AllLabels() []string {
	var labels []string
	for _, repo := range r.Repos {
		labels = append(labels, repo.Labels...)
	}
	slices.Sort(labels)
	return slices.Compact(labels)
}

// Names returns all repo names, sorted
func (r *Registry) Names() []string {
	names := make([]string, len(r.Repos))
	for i, repo := range r.Repos {
		names[i] = repo.Name
	}
	slices.Sort(names)
	return names
}

// AddLabel adds a label to a repo
func (r *Registry) AddLabel(repoName, label string) error {
	repo, err := r.FindByName(repoName)
	if err != nil {
		return err
	}
	if repo.HasLabel(label) {
		return nil
	}
	repo.Labels = append(repo.Labels, label)
	slices.Sort(repo.Labels)
	return nil
}

// RemoveLabel removes a label from a repo
func (r *Registry) RemoveLabel(repoName, label string) error {
	repo, err := r.FindByName(repoName)
	if err != nil {
		return err
	}
	repo.Labels = slices.DeleteFunc(repo.Labels, func(l string) bool { return l == label })
	return nil
}

// HasLabel checks if a repo has a specific label
func (repo Repo) HasLabel(label string) bool {
	return slices.Contains(repo.Labels, label)
}

// MatchesLabels checks if repo has any of the given labels
func (repo Repo) MatchesLabels(labels []string) bool {
	return slices.ContainsFunc(labels, repo.HasLabel)
}

// Dir returns the repository folder under workdir.
func (repo Repo) Dir(workdir string) string {
	return filepath.Join(workdir, repo.Name)
}

// String returns a display string for the repo
func (repo Repo) String() string {
	if len(repo.Labels) > 0 {
		return fmt.Sprintf("%s (%s)", repo.Name, strings.Join(repo.Labels, ", "))
	}
	return repo.Name
}

// seedRepos is the example list written by `syncdash repos init`.
var seedRepos = []Repo{
	{Name: "notes", URL: "git@github.com:example/notes.git", Labels: []string{"private"}},
	{Name: "dotfiles", URL: "git@github.com:example/dotfiles.git", Labels: []string{"public"}},
	{Name: "website", URL: "git@github.com:example/example.github.io.git", Labels: []string{"public"}},
	{Name: "tooling", URL: "git@github.com:example/tooling.git", Labels: []string{"public"}},
}

// Seed adds the example repositories that are not registered yet and
// returns the names it added.
func (r *Registry) Seed() []string {
	var added []string
	for _, repo := range seedRepos {
		repo.Labels = slices.Clone(repo.Labels)
		if r.Add(repo) == nil {
			added = append(added, repo.Name)
		}
	}
	return added
}

package config

import (
	"context"
	"sync"
)

type resolverKey struct{}

// Resolver provides lazy per-repo config resolution with caching.
// It is safe for concurrent use by parallel action workers.
type Resolver struct {
	global *Config

	mu    sync.Mutex
	cache map[string]*Config // repoPath -> merged config
}

// NewResolver creates a new Resolver backed by the given global config.
func NewResolver(global *Config) *Resolver {
	return &Resolver{
		global: global,
		cache:  make(map[string]*Config),
	}
}

// ForRepo returns the effective config for a repo, merging any
// .syncdash.toml found at repoPath with the global config.
func (r *Resolver) ForRepo(repoPath string) (*Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[repoPath]; ok {
		return cached, nil
	}

	local, err := LoadLocal(repoPath)
	if err != nil {
		return nil, err
	}

	merged := MergeLocal(r.global, local)
	r.cache[repoPath] = merged
	return merged, nil
}

// Invalidate drops the cached config for repoPath (e.g. after a pull
// changed .syncdash.toml).
func (r *Resolver) Invalidate(repoPath string) {
	r.mu.Lock()
	delete(r.cache, repoPath)
	r.mu.Unlock()
}

// Global returns the global config (without any local overrides).
func (r *Resolver) Global() *Config {
	return r.global
}

// WithResolver returns a new context with the Resolver stored in it.
func WithResolver(ctx context.Context, r *Resolver) context.Context {
	return context.WithValue(ctx, resolverKey{}, r)
}

// ResolverFromContext returns the Resolver from context, or nil.
func ResolverFromContext(ctx context.Context) *Resolver {
	if r, ok := ctx.Value(resolverKey{}).(*Resolver); ok {
		return r
	}
	return nil
}

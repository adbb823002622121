// Package resolver maps content keys to loaders that read and render a body on demand.
package resolver

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/vetcontent/internal/frontmatter"
	"github.com/hyperjump/vetcontent/internal/models"
	"github.com/hyperjump/vetcontent/internal/render"
)

// Unit is a loaded content document: its raw metadata, body and rendered component.
type Unit struct {
	Path      string
	Metadata  map[string]any
	Body      string
	Component *render.Component
}

// Loader loads one unit. Nothing is read until it is called.
type Loader func(ctx context.Context) (*Unit, error)

// Registry is an immutable (key -> document path) table built alongside the content index.
type Registry struct {
	fsys     fs.FS
	paths    map[models.ContentKey]string
	renderer *render.Renderer
	cache    *Cache
	logger   *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCache memoises loaded units in c.
func WithCache(c *Cache) RegistryOption {
	return func(r *Registry) { r.cache = c }
}

// WithLogger sets a logger for debug output (unit loads, cache hits).
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates a registry over fsys. paths maps keys to document paths inside fsys.
func NewRegistry(fsys fs.FS, paths map[models.ContentKey]string, renderer *render.Renderer, opts ...RegistryOption) *Registry {
	r := &Registry{
		fsys:     fsys,
		paths:    make(map[models.ContentKey]string, len(paths)),
		renderer: renderer,
		logger:   zap.NewNop(),
	}
	for k, p := range paths {
		r.paths[k] = p
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the loader for key, or nil when no document is registered for it.
func (r *Registry) Resolve(key models.ContentKey) Loader {
	if r == nil {
		return nil
	}
	p, ok := r.paths[key]
	if !ok {
		return nil
	}
	return func(ctx context.Context) (*Unit, error) {
		return r.load(ctx, p)
	}
}

// Path returns the document path registered for key.
func (r *Registry) Path(key models.ContentKey) (string, bool) {
	if r == nil {
		return "", false
	}
	p, ok := r.paths[key]
	return p, ok
}

// Keys returns every registered key, sorted by their string form.
func (r *Registry) Keys() []models.ContentKey {
	if r == nil {
		return nil
	}
	keys := make([]models.ContentKey, 0, len(r.paths))
	for k := range r.paths {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.paths)
}

func (r *Registry) load(ctx context.Context, p string) (*Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if u, ok := r.cache.Get(p); ok {
		r.logger.Debug("resolver cache hit", zap.String("path", p))
		return u, nil
	}
	data, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	doc, err := frontmatter.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	comp, err := r.renderer.Render(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	u := &Unit{Path: p, Metadata: doc.Metadata, Body: doc.Body, Component: comp}
	r.cache.Set(p, u)
	r.logger.Debug("resolver loaded unit", zap.String("path", p))
	return u, nil
}

package provider

import (
	"fmt"
	"sort"

	"auth-gate/internal/auth"
)

// Registry maps a configured provider name (IDP_PROVIDER) to its
// implementation.
type Registry struct {
	byName map[string]OAuthProvider
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]OAuthProvider)}
}

// Register adds p under p.Name(). Names are unique.
func (r *Registry) Register(p OAuthProvider) error {
	name := p.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("%w: provider %q registered twice", auth.ErrConfiguration, name)
	}
	r.byName[name] = p
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (OAuthProvider, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q (have %v)", auth.ErrConfiguration, name, r.Names())
	}
	return p, nil
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package provider

import (
	"fmt"

	"github.com/cvparse/cvparse/internal/common"
)

// Registry resolves a ModelRef's provider name to a constructed Client.
// It is populated once at process start and read-only afterwards.
type Registry struct {
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register adds a client under a provider name. Last registration wins.
func (r *Registry) Register(name string, c Client) {
	r.clients[name] = c
}

// Resolve returns the client for ref's provider. A chain that references an
// unregistered provider is a configuration error, surfaced as ErrInvalidInput.
func (r *Registry) Resolve(ref ModelRef) (Client, error) {
	c, ok := r.clients[ref.Provider]
	if !ok {
		return nil, common.NewAppError("PROVIDER_UNREGISTERED",
			fmt.Sprintf("provider %q is referenced but not configured", ref.Provider),
			common.ErrInvalidInput)
	}
	return c, nil
}

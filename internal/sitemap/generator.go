package sitemap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/romangod6/route-sitemap/internal/models"
)

var (
	ErrGeneratorNotFound = errors.New("generator not found")
	ErrOperationNotFound = errors.New("generator operation not found")
)

// Operation produces the payloads of a dynamic route. route is the name the
// items will be generated for.
type Operation func(ctx context.Context, route string) ([]models.Payload, error)

// Generator is a capability exposing named operations.
type Generator interface {
	Operation(name string) (Operation, bool)
}

// Operations is a Generator backed by a fixed set of operations.
type Operations map[string]Operation

func (o Operations) Operation(name string) (Operation, bool) {
	op, ok := o[name]
	if !ok || op == nil {
		return nil, false
	}
	return op, true
}

// Generators maps registry keys to generator capabilities.
type Generators struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

func NewGenerators() *Generators {
	return &Generators{generators: make(map[string]Generator)}
}

// Register binds key to g, replacing any previous binding.
func (g *Generators) Register(key string, gen Generator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generators[key] = gen
}

// Resolve looks up a "capability::operation" reference.
func (g *Generators) Resolve(ref string) (Operation, error) {
	key, name, ok := strings.Cut(ref, "::")
	if !ok || key == "" || name == "" {
		return nil, fmt.Errorf("%w: malformed reference %q", ErrGeneratorNotFound, ref)
	}
	if g == nil {
		return nil, fmt.Errorf("%w: %q", ErrGeneratorNotFound, key)
	}

	g.mu.RLock()
	gen, found := g.generators[key]
	g.mu.RUnlock()
	if !found || gen == nil {
		return nil, fmt.Errorf("%w: %q", ErrGeneratorNotFound, key)
	}

	op, found := gen.Operation(name)
	if !found {
		return nil, fmt.Errorf("%w: %q on %q", ErrOperationNotFound, name, key)
	}
	return op, nil
}

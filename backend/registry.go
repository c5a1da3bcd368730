package backend

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gsdirect"
)

// Factory opens a target with a width x height frame.
type Factory func(width, height int) (Target, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)

	// preferred lists the backends Default tries, best first.
	preferred = []string{BackendWGPU, BackendSoftware}
)

// Register makes a backend available under name, replacing any factory
// already registered with that name. Backend packages call it from init.
func Register(name string, factory Factory) {
	if factory == nil {
		panic("backend: Register factory is nil")
	}
	registryMu.Lock()
	backends[name] = factory
	registryMu.Unlock()
}

// Unregister removes a backend.
func Unregister(name string) {
	registryMu.Lock()
	delete(backends, name)
	registryMu.Unlock()
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	registryMu.RUnlock()
	slices.Sort(names)
	return names
}

// IsRegistered reports whether name has a factory.
func IsRegistered(name string) bool {
	_, ok := lookup(name)
	return ok
}

func lookup(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := backends[name]
	return f, ok
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}

// Get opens the named backend. A name without a factory, usually a missing
// blank import, fails with ErrBackendNotAvailable.
func Get(name string, width, height int) (Target, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	factory, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (forgotten import?)", ErrBackendNotAvailable, name)
	}
	return factory(width, height)
}

// Default opens the first preferred backend whose factory succeeds, so a
// machine without a usable GPU falls back to the software rasterizer. The
// factory errors are joined into the returned error when none opens.
func Default(width, height int) (Target, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}

	var errs []error
	for _, name := range preferred {
		factory, ok := lookup(name)
		if !ok {
			continue
		}
		t, err := factory(width, height)
		if err == nil {
			return t, nil
		}
		gsdirect.Logger().Info("backend unavailable", "backend", name, "err", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrBackendNotAvailable
	}
	return nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, errors.Join(errs...))
}

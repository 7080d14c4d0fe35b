package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/platform"
	"golang.org/x/sync/errgroup"
)

// Registry maps generator IDs to generators.
type Registry struct {
	mu   sync.RWMutex
	gens map[string]Generator
}

func NewRegistry(gens ...Generator) (*Registry, error) {
	r := &Registry{gens: make(map[string]Generator)}

	for _, g := range gens {
		if err := r.Register(g); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds g under its ID. An ID can only be registered once.
func (r *Registry) Register(g Generator) error {
	if g == nil || g.Info().ID == "" {
		return fmt.Errorf("register generator: %w", acpi.ErrInvalidParameter)
	}

	id := g.Info().ID

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.gens[id]; ok {
		return fmt.Errorf("register generator %q: %w", id, acpi.ErrAlreadyStarted)
	}

	r.gens[id] = g

	return nil
}

func (r *Registry) Deregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.gens[id]; !ok {
		return fmt.Errorf("deregister generator %q: %w", id, acpi.ErrNotFound)
	}

	delete(r.gens, id)

	return nil
}

func (r *Registry) Lookup(id string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.gens[id]
	if !ok {
		return nil, fmt.Errorf("generator %q: %w", id, acpi.ErrNotFound)
	}

	return g, nil
}

// List returns the info of every registered generator, sorted by ID.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.gens))
	for _, g := range r.gens {
		infos = append(infos, g.Info())
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

	return infos
}

// Result is the outcome of building one table.
type Result struct {
	Info  platform.AcpiTableInfo
	Table *acpi.Table
	Err   error
}

// BuildAll builds the tables listed by the platform description, one
// goroutine per table. When ids is not empty, only the tables of those
// generators are built. A table that fails does not prevent the others
// from being built; the returned error joins the failures.
func (r *Registry) BuildAll(ctx context.Context, p platform.Provider, ids ...string) ([]Result, error) {
	list, err := p.AcpiTableList()
	if err != nil {
		return nil, err
	}

	var tables []platform.AcpiTableInfo

	for _, t := range list {
		if len(ids) == 0 || contains(ids, t.GeneratorID) {
			tables = append(tables, t)
		}
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("no table for generators %v: %w", ids, acpi.ErrNotFound)
	}

	results := make([]Result, len(tables))
	g, ctx := errgroup.WithContext(ctx)

	for i := range tables {
		i := i

		g.Go(func() error {
			// Only cancellation stops the siblings.
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = r.build(tables[i], p)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var errs []error

	for _, res := range results {
		if res.Err != nil {
			log.Printf("%s (%s): %v", res.Info.GeneratorID, res.Info.OEMTableID, res.Err)
			errs = append(errs, res.Err)
		}
	}

	return results, errors.Join(errs...)
}

func (r *Registry) build(t platform.AcpiTableInfo, p platform.Provider) Result {
	res := Result{Info: t}

	gen, err := r.Lookup(t.GeneratorID)
	if err != nil {
		res.Err = err

		return res
	}

	res.Table, res.Err = gen.Build(t, p)
	if res.Err != nil {
		res.Err = fmt.Errorf("%s: %w", t.GeneratorID, res.Err)
	}

	return res
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

package engine

import (
	"context"
	"iter"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pair holds copies of two components of one entity
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple holds copies of three components of one entity
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// View1 iterates entities of a single store
type View1[A any] struct {
	a *Store[A]
}

// View2 iterates entities present in both stores
type View2[A, B any] struct {
	a *Store[A]
	b *Store[B]
}

// View3 iterates entities present in all three stores
type View3[A, B, C any] struct {
	a *Store[A]
	b *Store[B]
	c *Store[C]
}

// Join1 creates a view over one store
func Join1[A any](a *Store[A]) View1[A] {
	return View1[A]{a: a}
}

// Join2 creates a view over the intersection of two stores
func Join2[A, B any](a *Store[A], b *Store[B]) View2[A, B] {
	return View2[A, B]{a: a, b: b}
}

// Join3 creates a view over the intersection of three stores
func Join3[A, B, C any](a *Store[A], b *Store[B], c *Store[C]) View3[A, B, C] {
	return View3[A, B, C]{a: a, b: b, c: c}
}

// Get returns the component of e
func (v View1[A]) Get(e Entity) (A, bool) {
	return v.a.Get(e)
}

// Get returns both components of e, or ok=false if either is missing
func (v View2[A, B]) Get(e Entity) (Pair[A, B], bool) {
	var p Pair[A, B]
	var ok bool
	if p.First, ok = v.a.Get(e); !ok {
		return Pair[A, B]{}, false
	}
	if p.Second, ok = v.b.Get(e); !ok {
		return Pair[A, B]{}, false
	}
	return p, true
}

// Get returns all three components of e, or ok=false if any is missing
func (v View3[A, B, C]) Get(e Entity) (Triple[A, B, C], bool) {
	var t Triple[A, B, C]
	var ok bool
	if t.First, ok = v.a.Get(e); !ok {
		return Triple[A, B, C]{}, false
	}
	if t.Second, ok = v.b.Get(e); !ok {
		return Triple[A, B, C]{}, false
	}
	if t.Third, ok = v.c.Get(e); !ok {
		return Triple[A, B, C]{}, false
	}
	return t, true
}

// Entities returns the entities currently matching the view
func (v View1[A]) Entities() []Entity { return query{stores: []QueryableStore{v.a}}.entities() }

// Entities returns the entities currently matching the view
func (v View2[A, B]) Entities() []Entity { return query{stores: []QueryableStore{v.a, v.b}}.entities() }

// Entities returns the entities currently matching the view
func (v View3[A, B, C]) Entities() []Entity { return query{stores: []QueryableStore{v.a, v.b, v.c}}.entities() }

// All yields each matching entity with copies of its components
// Candidates are snapshotted when iteration starts; entities despawned by the body are skipped
func (v View1[A]) All() iter.Seq2[Entity, A] {
	return each(v.Entities, v.Get)
}

// All yields each matching entity with copies of its components
// Candidates are snapshotted when iteration starts; entities despawned by the body are skipped
func (v View2[A, B]) All() iter.Seq2[Entity, Pair[A, B]] {
	return each(v.Entities, v.Get)
}

// All yields each matching entity with copies of its components
// Candidates are snapshotted when iteration starts; entities despawned by the body are skipped
func (v View3[A, B, C]) All() iter.Seq2[Entity, Triple[A, B, C]] {
	return each(v.Entities, v.Get)
}

// ParallelEach runs fn for every matching entity across GOMAXPROCS workers
// fn receives copies and must not change the World; the first error stops the scan
func (v View1[A]) ParallelEach(ctx context.Context, fn func(Entity, A) error) error {
	return parallelEach(ctx, v.Entities(), v.Get, fn)
}

// ParallelEach runs fn for every matching entity across GOMAXPROCS workers
// fn receives copies and must not change the World; the first error stops the scan
func (v View2[A, B]) ParallelEach(ctx context.Context, fn func(Entity, Pair[A, B]) error) error {
	return parallelEach(ctx, v.Entities(), v.Get, fn)
}

// ParallelEach runs fn for every matching entity across GOMAXPROCS workers
// fn receives copies and must not change the World; the first error stops the scan
func (v View3[A, B, C]) ParallelEach(ctx context.Context, fn func(Entity, Triple[A, B, C]) error) error {
	return parallelEach(ctx, v.Entities(), v.Get, fn)
}

func each[T any](entities func() []Entity, load func(Entity) (T, bool)) iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		for _, e := range entities() {
			val, ok := load(e)
			if !ok {
				continue
			}
			if !yield(e, val) {
				return
			}
		}
	}
}

func parallelEach[T any](ctx context.Context, entities []Entity, load func(Entity) (T, bool), fn func(Entity, T) error) error {
	if len(entities) == 0 {
		return ctx.Err()
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(entities) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(entities); start += chunk {
		part := entities[start:min(start+chunk, len(entities))]
		g.Go(func() error {
			for _, e := range part {
				if err := gctx.Err(); err != nil {
					return err
				}
				val, ok := load(e)
				if !ok {
					continue
				}
				if err := fn(e, val); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

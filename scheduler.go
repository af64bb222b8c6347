package bappa

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// StageLabel names a scheduler stage. CoreStages' six built-in values
// run in order every frame; custom labels are accepted (spec.md §3.1).
type StageLabel string

const (
	StagePreUpdate  StageLabel = "PreUpdate"
	StageUpdate     StageLabel = "Update"
	StagePostUpdate StageLabel = "PostUpdate"
	StagePreRender  StageLabel = "PreRender"
	StageRender     StageLabel = "Render"
	StagePostRender StageLabel = "PostRender"
)

// CoreStages is the six built-in stage labels in their required frame order.
var CoreStages = []StageLabel{
	StagePreUpdate, StageUpdate, StagePostUpdate,
	StagePreRender, StageRender, StagePostRender,
}

type edge struct{ before, after SystemId }

// Stage holds an unordered set of systems, explicit before/after edges
// between them, and - once rebuilt - a precomputed list of parallel
// batches (spec.md §4.8).
type Stage struct {
	Label StageLabel

	systems map[SystemId]*System
	order   []SystemId // registration order, used as the tie-break in topo sort
	edges   []edge

	dirty   bool
	batches [][]SystemId
}

// NewStage returns an empty stage labeled label.
func NewStage(label StageLabel) *Stage {
	return &Stage{
		Label:   label,
		systems: make(map[SystemId]*System),
		dirty:   true,
	}
}

// AddSystem registers sys with the stage and marks it dirty.
func (s *Stage) AddSystem(sys *System) {
	s.systems[sys.id] = sys
	s.order = append(s.order, sys.id)
	s.dirty = true
}

// SystemByID returns the registered system with the given id, for
// callers (notably package ffi) that only hold a SystemId across a
// boundary and need the *System back to call Before/After.
func (s *Stage) SystemByID(id SystemId) (*System, bool) {
	sys, ok := s.systems[id]
	return sys, ok
}

// Before records that a must run in an earlier batch than b.
func (s *Stage) Before(a, b *System) {
	s.edges = append(s.edges, edge{before: a.id, after: b.id})
	s.dirty = true
}

// After records that b must run in an earlier batch than a; sugar for
// Before(b, a).
func (s *Stage) After(a, b *System) {
	s.Before(b, a)
}

// rebuild topologically sorts the stage's systems with Kahn's algorithm,
// then greedily places each into the earliest batch whose members don't
// conflict with it and which respects every ordering edge seen so far
// (spec.md §4.8). Ties in Kahn's algorithm break on registration order,
// making batch construction deterministic for a fixed sequence of
// AddSystem/Before/After calls.
func (s *Stage) rebuild() error {
	indegree := make(map[SystemId]int, len(s.systems))
	adjacency := make(map[SystemId][]SystemId, len(s.systems))
	for id := range s.systems {
		indegree[id] = 0
	}
	for _, e := range s.edges {
		adjacency[e.before] = append(adjacency[e.before], e.after)
		indegree[e.after]++
	}

	var ready []SystemId
	for _, id := range s.order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	var sorted []SystemId
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		sorted = append(sorted, next)
		for _, dep := range adjacency[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	if len(sorted) != len(s.systems) {
		return newErr(KindSchedulerCycle, "ordering cycle among systems: %v", cycleMembers(s.systems, sorted))
	}

	minBatch := make(map[SystemId]int, len(sorted))
	var batches [][]SystemId
	for _, id := range sorted {
		sys := s.systems[id]
		lowest := minBatch[id]
		placed := -1
		for b := lowest; b < len(batches); b++ {
			conflict := false
			for _, other := range batches[b] {
				if sys.access.ConflictsWith(s.systems[other].access) {
					conflict = true
					break
				}
			}
			if !conflict {
				placed = b
				break
			}
		}
		if placed == -1 {
			batches = append(batches, nil)
			placed = len(batches) - 1
		}
		batches[placed] = append(batches[placed], id)
		for _, dep := range adjacency[id] {
			if placed+1 > minBatch[dep] {
				minBatch[dep] = placed + 1
			}
		}
	}

	s.batches = batches
	s.dirty = false
	return nil
}

// cycleMembers returns the ids Kahn's algorithm never emitted: every
// member of an ordering cycle, plus any system ordered after one. The
// ids come in map iteration order, not in cycle order.
func cycleMembers(all map[SystemId]*System, sorted []SystemId) []SystemId {
	seen := make(map[SystemId]bool, len(sorted))
	for _, id := range sorted {
		seen[id] = true
	}
	var remaining []SystemId
	for id := range all {
		if !seen[id] {
			remaining = append(remaining, id)
		}
	}
	return remaining
}

// Run executes every batch in order against w. Single-system batches
// and any system declaring MainThreadOnly run inline on the calling
// goroutine; larger batches run concurrently via errgroup, matching the
// fixed-worker-pool model spec.md §6 describes (errgroup bounds
// concurrency to the batch, the Go scheduler multiplexes onto GOMAXPROCS
// OS threads; WorkerPoolLimit further bounds it via errgroup.SetLimit).
// Command buffers are applied once the whole stage finishes, in batch
// then within-batch order (spec.md §4.9).
//
// A system error is recorded (logged) and the rest of the stage still
// runs; the first such error is returned once the stage finishes, so the
// caller learns something failed without the frame being cut short. If
// w's EngineConfig sets HaltOnError, the first error instead aborts the
// stage immediately, skipping any batch not yet started and discarding
// every command buffer collected so far (spec.md §7.2).
func (s *Stage) Run(w *World) error {
	if s.dirty {
		if err := s.rebuild(); err != nil {
			return err
		}
	}

	halt := w.Config().HaltOnError
	poolLimit := w.Config().WorkerPoolLimit
	var firstErr error
	var buffers []*CommandBuffer
	for _, batch := range s.batches {
		if len(batch) == 1 || s.systems[batch[0]].access.MainThreadOnly {
			for _, id := range batch {
				sys := s.systems[id]
				cmd := NewCommandBuffer(w)
				if err := sys.run(w, cmd); err != nil {
					wrapped := wrapErr(KindInternalError, err, "system %q failed", sys.name)
					w.log.WithError(wrapped).Error("system failed")
					if halt {
						return wrapped
					}
					if firstErr == nil {
						firstErr = wrapped
					}
					continue
				}
				buffers = append(buffers, cmd)
			}
			continue
		}

		group, _ := errgroup.WithContext(context.Background())
		if poolLimit > 0 {
			group.SetLimit(poolLimit)
		}
		batchBuffers := make([]*CommandBuffer, len(batch))
		batchErrs := make([]error, len(batch))
		for i, id := range batch {
			i, id := i, id
			cmd := NewCommandBuffer(w)
			batchBuffers[i] = cmd
			sys := s.systems[id]
			group.Go(func() error {
				if err := sys.run(w, cmd); err != nil {
					wrapped := wrapErr(KindInternalError, err, "system %q failed", sys.name)
					batchErrs[i] = wrapped
					if halt {
						return wrapped
					}
				}
				return nil
			})
		}
		if err := group.Wait(); err != nil && halt {
			return err
		}
		for i, err := range batchErrs {
			if err == nil {
				buffers = append(buffers, batchBuffers[i])
				continue
			}
			w.log.WithError(err).Error("system failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	for _, cmd := range buffers {
		cmd.Apply()
	}
	return firstErr
}

// Scheduler owns every stage for a World and runs them in a fixed order
// once per frame (spec.md §2, "frame_begin ... scheduler runs each
// stage ... frame_end").
type Scheduler struct {
	world  *World
	stages []*Stage
	byName map[StageLabel]*Stage
}

// NewScheduler returns a Scheduler with its stages pre-registered,
// empty, in order: CoreStages, unless w's EngineConfig overrides the
// default stage list via WithDefaultStages.
func NewScheduler(w *World) *Scheduler {
	sched := &Scheduler{world: w, byName: make(map[StageLabel]*Stage)}
	stages := CoreStages
	if custom := w.Config().DefaultStages; len(custom) > 0 {
		stages = custom
	}
	for _, label := range stages {
		sched.AddStage(label)
	}
	return sched
}

// AddStage appends a new, empty stage (for a custom label not already
// covered by CoreStages) and returns it.
func (sc *Scheduler) AddStage(label StageLabel) *Stage {
	stage := NewStage(label)
	sc.stages = append(sc.stages, stage)
	sc.byName[label] = stage
	return stage
}

// Stage returns the named stage, or nil if it has not been added.
func (sc *Scheduler) Stage(label StageLabel) *Stage {
	return sc.byName[label]
}

// RunFrame runs every stage in registration order against the
// scheduler's World. By default a stage error is recorded and the rest
// of the frame still runs, the first error surfacing once every stage
// has had a chance to execute; with HaltOnError set, a stage's error
// aborts the frame immediately, leaving later stages unrun (spec.md
// §7.2).
func (sc *Scheduler) RunFrame() error {
	halt := sc.world.Config().HaltOnError
	var firstErr error
	for _, stage := range sc.stages {
		if err := stage.Run(sc.world); err != nil {
			if halt {
				return err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

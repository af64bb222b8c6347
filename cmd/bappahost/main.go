// Command bappahost is a minimal in-process host for the engine core: it
// builds a World directly through the Go API (the path an engine-side
// game written in Go would use, as opposed to a C/C++ host crossing
// ffi's cgo boundary) and runs a few frames of a toy simulation to
// exercise spawn, component mutation, queries, and the scheduler
// together.
package main

import (
	"fmt"

	"github.com/TheBitDrifter/bappa"
)

type Position struct{ X, Y float64 }
type Velocity struct{ DX, DY float64 }

func main() {
	w, err := bappa.NewWorld()
	if err != nil {
		panic(err)
	}

	posComp := bappa.NewComponent[Position]()
	velComp := bappa.NewComponent[Velocity]()

	for i := 0; i < 5; i++ {
		e := w.SpawnEmpty()
		bappa.Insert(w, e, Position{X: float64(i), Y: 0})
		bappa.Insert(w, e, Velocity{DX: 1, DY: 0.5})
	}

	q := bappa.NewQuery()
	root := q.And(posComp.Id(), velComp.Id())
	cache := bappa.NewQueryCache(root)

	sched := bappa.NewScheduler(w)
	movement := bappa.NewAccessPattern().Reads(velComp.Id()).Writes(posComp.Id())
	sched.Stage(bappa.StageUpdate).AddSystem(bappa.NewSystem("movement", movement, func(w *bappa.World, cmd *bappa.CommandBuffer) error {
		cur := bappa.NewCursor(w, cache)
		cur.Initialize()
		defer cur.Reset()
		for cur.Next() {
			e := cur.CurrentEntity()
			pos := bappa.Get[Position](w, e)
			vel := bappa.Get[Velocity](w, e)
			if pos == nil || vel == nil {
				continue
			}
			pos.X += vel.DX
			pos.Y += vel.DY
		}
		return nil
	}))

	for frame := 0; frame < 3; frame++ {
		if err := sched.RunFrame(); err != nil {
			panic(err)
		}
	}

	cur := bappa.NewCursor(w, cache)
	cur.Initialize()
	for cur.Next() {
		e := cur.CurrentEntity()
		pos := bappa.Get[Position](w, e)
		fmt.Printf("entity %v: %+v\n", e, *pos)
	}
	cur.Reset()
}

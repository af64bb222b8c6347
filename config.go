package bappa

import "github.com/TheBitDrifter/table"

// Config holds process-wide defaults for the underlying table engine.
// Per-World state belongs on World itself; this only carries knobs the
// table package needs before a World's first archetype is built.
var Config config = config{}

type config struct {
	tableEvents table.TableEvents
}

// SetTableEvents installs table-engine event callbacks (row grow/shrink
// hooks) used for diagnostics and metrics.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}

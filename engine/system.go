package engine

// System is stepped once per frame against the global state
// dt is the frame time in milliseconds
type System interface {
	Step(state *State, dt uint64)
}

// Pipeline runs systems in a fixed order
// A transition made by one system is seen by every later system in the same frame
type Pipeline struct {
	systems []System
}

// NewPipeline creates a pipeline; the order of systems is the run order
func NewPipeline(systems ...System) *Pipeline {
	p := &Pipeline{systems: make([]System, 0, len(systems))}
	p.systems = append(p.systems, systems...)
	return p
}

// Step runs every system once
func (p *Pipeline) Step(state *State, dt uint64) {
	for _, system := range p.systems {
		system.Step(state, dt)
	}
}

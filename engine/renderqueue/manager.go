package renderqueue

// Manager owns the four typed queues and is the object
// renderer.Begin/End drive each frame.
type Manager struct {
	Queues [4]*Queue
}

func NewManager() *Manager {
	return &Manager{Queues: [4]*Queue{
		New(Opaque, SkinnedVertexFlags),
		New(Particle, SimpleVertexFlags),
		New(Debug, SimpleVertexFlags),
		New(Billboard, TwoDVertexFlags),
	}}
}

func (m *Manager) Queue(t Type) *Queue { return m.Queues[t] }

// Begin clears every queue's CPU arenas at frame start (Lifecycle).
func (m *Manager) Begin() {
	for _, q := range m.Queues {
		q.Clear()
	}
}

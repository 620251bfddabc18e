package document

import "sync"

type slotKey struct {
	studentID string
	docType   Type
}

// slotGuard marks the slots that have an operation in flight.
type slotGuard struct {
	mu       sync.Mutex
	inFlight map[slotKey]struct{}
}

func newSlotGuard() *slotGuard {
	return &slotGuard{inFlight: make(map[slotKey]struct{})}
}

// acquire fails with ErrSlotBusy while another operation holds the slot.
func (g *slotGuard) acquire(studentID string, t Type) (release func(), err error) {
	key := slotKey{studentID: studentID, docType: t}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return nil, ErrSlotBusy
	}
	g.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, nil
}

package syncs

import "sync"

// Admitter grants exclusive turns to callers that already hold a shared lock.
// See [Gate] for an implementation.
type Admitter interface {
	Enter()
	Leave()
}

// Gate is an admission flag guarded by a condition variable. It is layered on
// an existing [sync.Locker], so that one exclusive turn can be nested inside
// the same mutual-exclusion domain as other operations on the locked state.
//
// Every method must be called while holding the Locker passed to [NewGate].
// The zero value is not usable.
type Gate struct {
	cond    *sync.Cond
	waiting int
	held    bool
}

// NewGate creates a new [Gate] that waits on l.
func NewGate(l sync.Locker) *Gate {
	return &Gate{
		cond: sync.NewCond(l),
	}
}

// Enter claims the gate, blocking while another caller holds it. The locker is
// released while blocked and reacquired before the flag is re-checked.
func (g *Gate) Enter() {
	for g.held {
		g.waiting++
		g.cond.Wait()
		g.waiting--
	}

	g.held = true
}

// Leave releases the gate and wakes one waiting caller, if any.
func (g *Gate) Leave() {
	if !g.held {
		panic("syncs: Leave called on a free Gate")
	}

	g.held = false
	g.cond.Signal()
}

// Held reports whether the gate is currently claimed.
func (g *Gate) Held() bool {
	return g.held
}

// Waiting returns the number of callers blocked in [Gate.Enter].
func (g *Gate) Waiting() int {
	return g.waiting
}

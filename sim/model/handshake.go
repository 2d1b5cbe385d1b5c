// Package model holds reference models built on the sim kernel. They double
// as usage examples for model authors and as end-to-end fixtures for tests.
package model

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/procsim/procsim/sim"
)

// Passivated records which handshake party is currently passive. Each party
// reads the other's flag before deciding whether to wake it.
type Passivated struct {
	A bool
	B bool
}

// Wakeup is one return from a hold.
type Wakeup struct {
	Party string
	At    time.Duration
}

// HandshakeStats accumulates observations of a handshake run.
type HandshakeStats struct {
	Wakeups     []Wakeup
	Activations int
}

// Handshake is the two-party ping-pong model. B starts by passivating. A holds,
// wakes, activates B if B is passive and then passivates itself; B, once
// activated, does the same towards A, and so on.
type Handshake struct {
	A     sim.Key
	B     sim.Key
	Flags sim.StateKey[Passivated]
	Stats sim.StateKey[HandshakeStats]
}

// NewHandshake adds both parties to s and schedules them at the current time.
// hold is the duration each party holds before checking on its peer.
func NewHandshake(s *sim.Simulation[struct{}], hold time.Duration) *Handshake {
	st := s.State()
	clock := s.Clock()

	// A needs B's key before B exists; it reads the real key from the store on
	// its first run.
	peerOfA := sim.Insert(st, sim.DummyKey())
	h := &Handshake{
		Flags: sim.Insert(st, Passivated{}),
		Stats: sim.Insert(st, HandshakeStats{}),
	}

	h.A = s.AddTask(sim.Coroutine(func(p *sim.Proc[struct{}], _ struct{}) {
		peer, ok := sim.Remove(st, peerOfA)
		if !ok || peer.IsDummy() {
			logrus.Panicf("handshake: party A started before B was registered")
		}
		h.party(p, st, clock, "A", peer, hold, false)
	}))
	h.B = s.AddTask(sim.Coroutine(func(p *sim.Proc[struct{}], _ struct{}) {
		h.party(p, st, clock, "B", h.A, hold, true)
	}))
	sim.Set(st, peerOfA, h.B)

	s.ScheduleNow(h.B)
	s.ScheduleNow(h.A)
	return h
}

// flag returns the passivated flag of the named party. The pointer is only
// valid until the caller's next yield.
func (h *Handshake) flag(st *sim.Store, party string) *bool {
	flags, ok := sim.GetMut(st, h.Flags)
	if !ok {
		logrus.Panicf("handshake: passivated flags missing from store")
	}
	if party == "A" {
		return &flags.A
	}
	return &flags.B
}

func (h *Handshake) party(p *sim.Proc[struct{}], st *sim.Store, clock sim.ClockRef,
	name string, peer sim.Key, hold time.Duration, startPassive bool) {
	other := "B"
	if name == "B" {
		other = "A"
	}
	log := logrus.WithField("party", name)

	if startPassive {
		*h.flag(st, name) = true
		log.Debug("-> passivate")
		p.Passivate()
		*h.flag(st, name) = false
	}

	for {
		log.Debug("-> hold")
		p.Hold(hold)
		if stats, ok := sim.GetMut(st, h.Stats); ok {
			stats.Wakeups = append(stats.Wakeups, Wakeup{Party: name, At: clock.Time()})
		}
		log.Debugf("<- hold at %s", clock.Time())

		if *h.flag(st, other) {
			if stats, ok := sim.GetMut(st, h.Stats); ok {
				stats.Activations++
			}
			log.Debugf("-> activate %s", other)
			p.Activate(peer)
		}

		*h.flag(st, name) = true
		log.Debug("-> passivate")
		p.Passivate()
		*h.flag(st, name) = false
	}
}

// Wakeups returns the hold wake-ups observed so far.
func (h *Handshake) Wakeups(st *sim.Store) []Wakeup {
	stats, _ := sim.Get(st, h.Stats)
	return stats.Wakeups
}

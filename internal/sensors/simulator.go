package sensors

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultInterval is the snapshot publish interval when none is configured.
const DefaultInterval = time.Second

// SubscribeFunc receives a full snapshot of current values. Subscribers
// must be idempotent consumers of the latest snapshot; there is no diffing
// against history.
type SubscribeFunc func(Snapshot)

// Simulator produces random-walk readings for every known sensor and
// publishes full snapshots on a fixed interval. One Simulator belongs to
// exactly one editor session: Start it when the session begins and Stop it
// on teardown so no periodic callbacks leak across sessions.
type Simulator struct {
	mu          sync.Mutex
	interval    time.Duration
	values      map[string]float64
	subscribers map[int]SubscribeFunc
	nextSubID   int
	stop        chan struct{}
	done        chan struct{}
	running     bool
	rng         *rand.Rand
}

// NewSimulator creates a stopped simulator. interval <= 0 falls back to
// DefaultInterval.
func NewSimulator(interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Simulator{
		interval:    interval,
		values:      make(map[string]float64, len(knownSensors)),
		subscribers: make(map[int]SubscribeFunc),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, def := range knownSensors {
		// Start mid-range so first snapshots look plausible.
		s.values[def.ID] = def.Min + (def.Max-def.Min)/2
	}
	return s
}

// Start launches the publish loop. Calling Start on a running simulator is
// a no-op.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

// Stop cancels the publish loop and clears the subscriber list. Safe to
// call on a stopped simulator.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop := s.stop
	done := s.done
	s.subscribers = make(map[int]SubscribeFunc)
	s.mu.Unlock()

	close(stop)
	<-done
}

// Running reports whether the publish loop is active.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Subscribe registers a callback for future snapshots and returns an
// unsubscribe function.
func (s *Simulator) Subscribe(fn SubscribeFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// GetCurrentSnapshot returns the latest value for every known sensor.
func (s *Simulator) GetCurrentSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() Snapshot {
	snap := make(Snapshot, len(knownSensors))
	for _, def := range knownSensors {
		snap[def.ID] = Reading{
			Value: s.values[def.ID],
			Min:   def.Min,
			Max:   def.Max,
			Unit:  def.Unit,
		}
	}
	return snap
}

func (s *Simulator) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick advances every sensor by a bounded random step and publishes the
// resulting snapshot.
func (s *Simulator) tick() {
	s.mu.Lock()
	for _, def := range knownSensors {
		span := def.Max - def.Min
		step := (s.rng.Float64()*2 - 1) * span * 0.05
		v := s.values[def.ID] + step
		if v < def.Min {
			v = def.Min
		}
		if v > def.Max {
			v = def.Max
		}
		s.values[def.ID] = v
	}
	snap := s.snapshotLocked()
	subs := make([]SubscribeFunc, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

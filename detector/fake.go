package detector

import "sync"

// Frame is one scripted detector output.
type Frame struct {
	Score  float64
	NoFace bool
}

// Fake replays scripted frames for tests and headless mode. Queued frames
// are consumed first; once the queue drains, RawScore keeps returning the
// sticky current frame (stdin-driven mode sets it between commands).
type Fake struct {
	mu      sync.Mutex
	current Frame
	queue   []Frame
}

// NewFake starts with no face in view.
func NewFake() *Fake {
	return &Fake{current: Frame{NoFace: true}}
}

func (f *Fake) Start() error { return nil }
func (f *Fake) Close() error { return nil }

func (f *Fake) RawScore() (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fr := f.current
	if len(f.queue) > 0 {
		fr = f.queue[0]
		f.queue = f.queue[1:]
	}
	if fr.NoFace {
		return 0, false
	}
	return fr.Score, true
}

// SetScore makes the fake report a steady face with the given score.
func (f *Fake) SetScore(v float64) {
	f.mu.Lock()
	f.current = Frame{Score: v}
	f.mu.Unlock()
}

// SetNoFace makes the fake report an empty frame until changed.
func (f *Fake) SetNoFace() {
	f.mu.Lock()
	f.current = Frame{NoFace: true}
	f.mu.Unlock()
}

// Push queues frames consumed one per RawScore call before the sticky
// current frame applies again.
func (f *Fake) Push(frames ...Frame) {
	f.mu.Lock()
	f.queue = append(f.queue, frames...)
	f.mu.Unlock()
}

// Pending reports how many queued frames remain.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

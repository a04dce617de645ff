package volume

import "sync"

// FakeActuator records commands for tests and headless mode.
type FakeActuator struct {
	mu       sync.Mutex
	level    int
	commands []int
	fail     error
}

func NewFake(level int) *FakeActuator {
	return &FakeActuator{level: level}
}

func (f *FakeActuator) Current() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level, nil
}

func (f *FakeActuator) Command(pct int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		err := f.fail
		f.fail = nil
		return err
	}
	f.level = pct
	f.commands = append(f.commands, pct)
	return nil
}

// Commands returns every command the actuator accepted, in order.
func (f *FakeActuator) Commands() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.commands))
	copy(out, f.commands)
	return out
}

// SetLevel pretends the user moved the volume slider.
func (f *FakeActuator) SetLevel(pct int) {
	f.mu.Lock()
	f.level = pct
	f.mu.Unlock()
}

// FailNext makes the next Command return err.
func (f *FakeActuator) FailNext(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

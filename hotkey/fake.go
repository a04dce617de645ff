package hotkey

type FakeToggler struct {
	fired chan struct{}
}

func NewFake() *FakeToggler {
	return &FakeToggler{
		fired: make(chan struct{}, 1),
	}
}

func (f *FakeToggler) Register() error        { return nil }
func (f *FakeToggler) Unregister()            {}
func (f *FakeToggler) Fired() <-chan struct{} { return f.fired }

func (f *FakeToggler) Fire() { f.fired <- struct{}{} }

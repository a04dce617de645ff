//go:build !linux

package hotkey

import (
	"golang.design/x/hotkey"
)

type xToggler struct {
	hk    *hotkey.Hotkey
	fired chan struct{}
}

// New binds Ctrl+Shift+M.
func New() Toggler {
	return &xToggler{
		hk:    hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyM),
		fired: make(chan struct{}, 1),
	}
}

func (t *xToggler) Register() error {
	if err := t.hk.Register(); err != nil {
		return err
	}
	go func() {
		for {
			<-t.hk.Keydown()
			select {
			case t.fired <- struct{}{}:
			default:
			}
		}
	}()
	return nil
}

func (t *xToggler) Unregister() {
	t.hk.Unregister()
}

func (t *xToggler) Fired() <-chan struct{} {
	return t.fired
}

func Diagnose() (string, error) {
	return "hotkey support available (Ctrl+Shift+M)", nil
}

// Package hotkey provides the global toggle shortcut. A press flips
// the volume control on or off without opening the tray menu.
package hotkey

type Toggler interface {
	Register() error
	Unregister()
	Fired() <-chan struct{}
}

//go:build windows

package doctor

import (
	"os"
	"os/signal"
)

// Windows consoles restore their own mode on process exit, so there is
// nothing to undo after the hotkey check.
func resetTerminal() {}

func setupInterruptHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		<-ch
		println("\nInterrupted")
		os.Exit(1)
	}()
}

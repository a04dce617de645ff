//go:build !windows

package doctor

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// The hotkey check reads raw keyboard input and can leave the terminal
// without echo; stty sane puts it back.
func resetTerminal() {
	exec.Command("stty", "sane").Run()
}

func setupInterruptHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		resetTerminal()
		println("\nInterrupted")
		os.Exit(1)
	}()
}

//go:build linux

package volume

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// pactlActuator drives the PulseAudio/PipeWire default sink through pactl.
type pactlActuator struct{}

func NewActuator() (Actuator, error) {
	if _, err := exec.LookPath("pactl"); err != nil {
		return nil, fmt.Errorf("%w: pactl not found", ErrUnsupported)
	}
	return pactlActuator{}, nil
}

func (pactlActuator) Current() (int, error) {
	out, err := exec.Command("pactl", "get-sink-volume", "@DEFAULT_SINK@").Output()
	if err != nil {
		return 0, fmt.Errorf("pactl get-sink-volume: %w", err)
	}
	// First percentage token, e.g. "Volume: front-left: 39321 /  60% / ..."
	for _, f := range strings.Fields(string(out)) {
		if !strings.HasSuffix(f, "%") {
			continue
		}
		pct, err := strconv.Atoi(strings.TrimSuffix(f, "%"))
		if err != nil {
			continue
		}
		if pct > 100 {
			pct = 100
		}
		return pct, nil
	}
	return 0, fmt.Errorf("no percentage in pactl output %q", strings.TrimSpace(string(out)))
}

func (pactlActuator) Command(pct int) error {
	if err := exec.Command("pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", pct)).Run(); err != nil {
		return fmt.Errorf("pactl set-sink-volume: %w", err)
	}
	return nil
}

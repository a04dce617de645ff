//go:build darwin

package volume

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// osaActuator drives the macOS output volume through osascript, the same
// primitive the System Events volume slider uses.
type osaActuator struct{}

func NewActuator() (Actuator, error) {
	if _, err := exec.LookPath("/usr/bin/osascript"); err != nil {
		return nil, fmt.Errorf("%w: osascript not found", ErrUnsupported)
	}
	return osaActuator{}, nil
}

func osascript(script string) (string, error) {
	out, err := exec.Command("/usr/bin/osascript", "-e", script).Output()
	if err != nil {
		return "", fmt.Errorf("osascript: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (osaActuator) Current() (int, error) {
	out, err := osascript("output volume of (get volume settings)")
	if err != nil {
		return 0, err
	}
	pct, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("parsing volume %q: %w", out, err)
	}
	return pct, nil
}

func (osaActuator) Command(pct int) error {
	_, err := osascript(fmt.Sprintf("set volume output volume %d", pct))
	return err
}

package tray

import (
	"sync"
	"time"
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	toggleCb    func(bool)
	calibrateFn func()

	enabled     = true
	smiling     bool
	calibrating bool
)

func OnToggleEnabled(fn func(bool)) { toggleCb = fn }
func OnCalibrate(fn func())         { calibrateFn = fn }

func SetEnabled(on bool) {
	enabled = on
	updateEnabledItem(on)
	updateIcon()
}

func SetSmiling(on bool) {
	smiling = on
	updateIcon()
}

func SetCalibrating(on bool) {
	calibrating = on
	updateCalibrateItem(on)
	updateIcon()
}

// SetError shows msg in the tooltip for ten seconds, then restores the
// default tooltip.
func SetError(msg string) {
	updateTooltip("grin – " + msg)
	go func() {
		time.Sleep(10 * time.Second)
		updateTooltip("grin – smile to unmute")
	}()
}

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
}

func updateIcon() {
	switch {
	case !enabled:
		showDisabledIcon()
	case calibrating:
		showCalibratingIcon()
	case smiling:
		showSmilingIcon()
	default:
		showIdleIcon()
	}
}

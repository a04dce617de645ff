//go:build darwin

package tray

import (
	"github.com/energye/systray"
	"golang.design/x/hotkey/mainthread"
)

var (
	mEnabled   *systray.MenuItem
	mCalibrate *systray.MenuItem
)

func Init() <-chan struct{} {
	start, _ := systray.RunWithExternalLoop(onReady, onExit)
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
	return quitCh
}

func onReady() {
	systray.SetTemplateIcon(iconIdleHi, iconIdle)
	systray.SetTooltip("grin – smile to unmute")

	mEnabled = systray.AddMenuItemCheckbox("Enabled", "Toggle volume control", enabled)
	mEnabled.Click(func() {
		if mEnabled.Checked() {
			mEnabled.Uncheck()
		} else {
			mEnabled.Check()
		}
		if toggleCb != nil {
			toggleCb(mEnabled.Checked())
		}
	})

	mCalibrate = systray.AddMenuItem("Calibrate…", "Record neutral and smiling baselines")
	mCalibrate.Click(func() {
		if calibrateFn != nil {
			calibrateFn()
		}
	})

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit grin")
	mQuit.Click(func() { Quit() })
	systray.CreateMenu()
}

func showIdleIcon() {
	systray.SetTemplateIcon(iconIdleHi, iconIdle)
}

func showSmilingIcon() {
	systray.SetIcon(iconSmileHi)
}

func showDisabledIcon() {
	systray.SetIcon(iconOffHi)
}

func showCalibratingIcon() {
	systray.SetIcon(iconCalHi)
}

func updateTooltip(msg string) {
	systray.SetTooltip(msg)
}

func updateEnabledItem(on bool) {
	if mEnabled == nil {
		return
	}
	if on {
		mEnabled.Check()
	} else {
		mEnabled.Uncheck()
	}
}

func updateCalibrateItem(running bool) {
	if mCalibrate == nil {
		return
	}
	if running {
		mCalibrate.Disable()
	} else {
		mCalibrate.Enable()
	}
}

func onExit() {
	closeOnce.Do(func() { close(quitCh) })
}

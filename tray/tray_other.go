//go:build !darwin

package tray

func Init() <-chan struct{}    { return make(chan struct{}) }
func showIdleIcon()            {}
func showSmilingIcon()         {}
func showDisabledIcon()        {}
func showCalibratingIcon()     {}
func updateTooltip(string)     {}
func updateEnabledItem(bool)   {}
func updateCalibrateItem(bool) {}

package doctor

import (
	"fmt"
	"os"
	"time"

	"grin/config"
	"grin/detector"
	"grin/hotkey"
	"grin/log"
	"grin/volume"
)

// Run executes interactive diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(cfgPath string) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("grin doctor - interactive system diagnostics")
	fmt.Println("============================================")

	allPass := true

	cfg, ok := checkConfig(cfgPath)
	if !ok {
		allPass = false
		cfg = config.Default()
	}
	if !checkLogDir() {
		allPass = false
	}
	if allPass && !checkCamera(cfg) {
		allPass = false
	}
	if allPass && !checkVolume() {
		allPass = false
	}
	if allPass && !checkHotkey() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
	} else {
		fmt.Println("Some checks failed. See details above.")
	}

	if allPass {
		return 0
	}
	return 1
}

func checkConfig(path string) (config.Config, bool) {
	fmt.Println()
	fmt.Println("[1/5] Configuration")

	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			fmt.Printf("  FAIL: cannot resolve config path: %v\n", err)
			return config.Config{}, false
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("  FAIL: %s: %v\n", path, err)
		return config.Config{}, false
	}

	fmt.Printf("  PASS: %s (on=%.2f off=%.2f restore=%d%%)\n",
		path, cfg.SmileOn, cfg.SmileOff, cfg.RestoreVolume)
	return cfg, true
}

func checkLogDir() bool {
	fmt.Println()
	fmt.Println("[2/5] Log directory")

	dir, err := log.ResolveDir("")
	if err != nil {
		fmt.Printf("  FAIL: cannot resolve log dir: %v\n", err)
		return false
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("  FAIL: cannot create %s: %v\n", dir, err)
		return false
	}
	probe, err := os.CreateTemp(dir, "doctor-*")
	if err != nil {
		fmt.Printf("  FAIL: %s not writable: %v\n", dir, err)
		return false
	}
	probe.Close()
	os.Remove(probe.Name())

	fmt.Printf("  PASS: %s writable\n", dir)
	return true
}

func checkCamera(cfg config.Config) bool {
	fmt.Println()
	fmt.Println("[3/5] Camera and smile detection")
	fmt.Println("Look at the camera...")

	dcfg := detector.DefaultConfig()
	dcfg.CameraIndex = cfg.CameraIndex
	cam := detector.NewCamera(dcfg)
	if err := cam.Start(); err != nil {
		fmt.Printf("  FAIL: camera %d: %v\n", cfg.CameraIndex, err)
		return false
	}
	defer cam.Close()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		score, ok := cam.RawScore()
		if ok {
			fmt.Printf("  PASS: face found, smile score %.3f\n", score)
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}

	fmt.Println("  FAIL: no face detected within 10s")
	return false
}

func checkVolume() bool {
	fmt.Println()
	fmt.Println("[4/5] Volume control")

	act, err := volume.NewActuator()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	before, err := act.Current()
	if err != nil {
		fmt.Printf("  FAIL: cannot read volume: %v\n", err)
		return false
	}
	fmt.Printf("  Current volume: %d%%\n", before)

	if err := act.Command(before); err != nil {
		fmt.Printf("  FAIL: cannot set volume: %v\n", err)
		return false
	}

	fmt.Println("  PASS: volume read and set")
	return true
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[5/5] Toggle hotkey")
	fmt.Println("Press Ctrl+Shift+M...")

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Fired():
		fmt.Println("  PASS: hotkey detected")
		// Hotkey capture may leave the terminal in raw mode
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

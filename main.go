package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"grin/config"
	"grin/detector"
	"grin/doctor"
	"grin/hotkey"
	"grin/log"
	"grin/smile"
	"grin/tray"
	"grin/volume"
)

var version = "dev"

var shutdownOnce sync.Once

func gracefulShutdown(ctrl *Controller) {
	shutdownOnce.Do(func() {
		if ctrl != nil {
			ctrl.Stop()
			ctrl.ForceRestore()
			log.SessionEnd(ctrl.Transitions())
		}
		log.Close()
		tray.Quit()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

// consoleCalibrationEmit prints calibration progress for the one-shot
// -calibrate mode, where there is no TUI and no tray.
func consoleCalibrationEmit(msg any) {
	switch m := msg.(type) {
	case CalProgressMsg:
		if m.P.LeadIn {
			fmt.Printf("Hold a %s expression... %d\n", m.P.Phase, int(m.P.Remaining.Seconds()+0.999))
		}
	case CalDoneMsg:
		if m.Err == nil {
			fmt.Printf("Calibrated: on=%.3f off=%.3f (neutral=%.3f smiling=%.3f)\n",
				m.Cal.On, m.Cal.Off, m.Cal.Neutral, m.Cal.Smiling)
		}
	}
}

func run() {
	cfgPathFlag := flag.String("config", "", "config file path (default: OS config dir)")
	cameraFlag := flag.Int("camera", 0, "camera index override")
	onFlag := flag.Float64("smile-on", 0, "smile-on threshold override")
	offFlag := flag.Float64("smile-off", 0, "smile-off threshold override")
	onFramesFlag := flag.Int("on-frames", 0, "consecutive frames to confirm a smile")
	offFramesFlag := flag.Int("off-frames", 0, "consecutive frames to confirm a smile ended")
	pollFlag := flag.Duration("poll", 0, "poll interval override (e.g. 30ms)")
	restoreFlag := flag.Int("restore", 0, "restore volume override (1-100)")
	cascadeFlag := flag.String("cascade", "", "face cascade file override")
	modelFlag := flag.String("model", "", "emotion model file override")
	calibrateFlag := flag.Bool("calibrate", false, "run threshold calibration and exit")
	tuiFlag := flag.Bool("tui", false, "run with terminal UI instead of tray only")
	testFlag := flag.Bool("test", false, "test mode (headless, stdin-driven, fake backends)")
	fakeFlag := flag.Bool("fake", false, "use fake camera and volume backends")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	versionFlag := flag.Bool("version", false, "print version and exit")
	doctorFlag := flag.Bool("doctor", false, "run system diagnostics and exit")
	crashFlag := flag.Bool("crash", false, "trigger synthetic panic for testing crash logging")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("grin %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(*cfgPathFlag))
	}

	cfgPath := *cfgPathFlag
	if cfgPath == "" {
		cfgPath, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot resolve config path: %v\n", err)
			os.Exit(1)
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "camera":
			cfg.CameraIndex = *cameraFlag
		case "smile-on":
			cfg.SmileOn = *onFlag
		case "smile-off":
			cfg.SmileOff = *offFlag
		case "on-frames":
			cfg.OnFrames = *onFramesFlag
		case "off-frames":
			cfg.OffFrames = *offFramesFlag
		case "poll":
			cfg.PollIntervalMs = int(pollFlag.Milliseconds())
		case "restore":
			cfg.RestoreVolume = *restoreFlag
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *testFlag {
		runTestMode(cfg, cfgPath)
		return
	}

	// Backends
	var det detector.Detector
	var fakeDet *detector.Fake
	if *fakeFlag {
		fakeDet = detector.NewFake()
		fakeDet.SetScore(0)
		det = fakeDet
	} else {
		dcfg := detector.DefaultConfig()
		dcfg.CameraIndex = cfg.CameraIndex
		if *cascadeFlag != "" {
			dcfg.CascadeFile = *cascadeFlag
		}
		if *modelFlag != "" {
			dcfg.ModelFile = *modelFlag
		}
		det = detector.NewCamera(dcfg)
	}
	if err := det.Start(); err != nil {
		log.Errorf("detector init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing camera: %v\n", err)
		os.Exit(1)
	}
	defer det.Close()

	var act volume.Actuator
	if *fakeFlag {
		act = volume.NewFake(cfg.RestoreVolume)
	} else {
		act, err = volume.NewActuator()
		if err != nil {
			log.Errorf("volume backend error: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	clock := clockwork.NewRealClock()
	lim := volume.NewLimiter(act, cfg.MinSetInterval(), clock)

	if *calibrateFlag {
		if err := log.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
		}
		defer log.Close()
		ctrl, err := NewController(cfg, cfgPath, det, lim, clock, consoleCalibrationEmit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := ctrl.Calibrate(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Calibration failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	// Dispatcher: every loop event reaches both the tray and the TUI.
	emit := func(msg any) {
		switch m := msg.(type) {
		case StateMsg:
			tray.SetSmiling(m.State == smile.Smiling)
		case EnabledMsg:
			tray.SetEnabled(m.Enabled)
		case CalDoneMsg:
			tray.SetCalibrating(false)
			if m.Err != nil {
				tray.SetError(m.Err.Error())
			}
		case StatusMsg:
			tray.SetError(m.Text)
		}
		tuiSend(msg)
	}

	ctrl, err := NewController(cfg, cfgPath, det, lim, clock, emit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	toggleCh := make(chan struct{}, 1)
	calibrateCh := make(chan struct{}, 1)
	tray.OnToggleEnabled(func(on bool) { ctrl.SetEnabled(on) })
	tray.OnCalibrate(func() {
		select {
		case calibrateCh <- struct{}{}:
		default:
		}
	})

	trayQuit := tray.Init()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
		case <-trayQuit:
		}
		gracefulShutdown(ctrl)
	}()

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		// Not fatal: tray and TUI toggles still work.
		log.Warnf("hotkey register failed: %v", err)
	} else {
		defer hk.Unregister()
	}

	if *tuiFlag {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram(cfg.Thresholds(), toggleCh, calibrateCh)
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown(ctrl)
		}()

		<-tuiReady
	} else {
		tuiReadyOnce.Do(func() { close(tuiReady) })
	}

	log.SessionStart(cfg.CameraIndex, cfg.SmileOn, cfg.SmileOff, cfg.OnFrames, cfg.OffFrames)
	ctrl.Start()

	for {
		select {
		case <-hk.Fired():
			log.Info("hotkey_toggle")
			ctrl.Toggle()
		case <-toggleCh:
			ctrl.Toggle()
		case <-calibrateCh:
			tray.SetCalibrating(true)
			go func() {
				ctrl.Calibrate(context.Background())
				tray.SetCalibrating(false)
			}()
		}
	}
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"grin/config"
	"grin/detector"
	"grin/log"
	"grin/volume"
)

// runTestMode drives the full control loop headlessly from stdin. Every
// observable event goes to stdout so an external harness can assert on the
// sequence.
func runTestMode(cfg config.Config, cfgPath string) {
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	det := detector.NewFake()
	act := volume.NewFake(cfg.RestoreVolume)
	clock := clockwork.NewRealClock()
	lim := volume.NewLimiter(act, cfg.MinSetInterval(), clock)

	emit := func(msg any) {
		switch m := msg.(type) {
		case StateMsg:
			fmt.Printf("STATE %s\n", m.State)
		case VolumeMsg:
			fmt.Printf("VOLUME %d\n", m.Pct)
		case EnabledMsg:
			fmt.Printf("ENABLED %v\n", m.Enabled)
		case CalDoneMsg:
			if m.Err != nil {
				fmt.Printf("CALIBRATION error %v\n", m.Err)
			} else {
				fmt.Printf("CALIBRATION on=%.3f off=%.3f\n", m.Cal.On, m.Cal.Off)
			}
		}
	}

	ctrl, err := NewController(cfg, cfgPath, det, lim, clock, emit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.SessionStart(cfg.CameraIndex, cfg.SmileOn, cfg.SmileOff, cfg.OnFrames, cfg.OffFrames)
	ctrl.Start()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "SCORE":
			if len(fields) > 1 {
				if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
					det.SetScore(v)
				}
			}
		case "NOFACE":
			det.SetNoFace()
		case "TOGGLE":
			ctrl.Toggle()
		case "CALIBRATE":
			go ctrl.Calibrate(context.Background())
		case "SLEEP":
			if len(fields) > 1 {
				if ms, err := strconv.Atoi(fields[1]); err == nil {
					time.Sleep(time.Duration(ms) * time.Millisecond)
				}
			}
		case "QUIT":
			ctrl.Stop()
			log.SessionEnd(ctrl.Transitions())
			return
		}
	}
	ctrl.Stop()
}

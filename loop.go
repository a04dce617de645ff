package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"grin/config"
	"grin/detector"
	"grin/log"
	"grin/smile"
	"grin/volume"
)

var errCalibrating = errors.New("calibration already running")

// Controller owns the poll cycle: detector sample -> conditioner -> state
// machine -> volume limiter. It is the only writer of cfg after startup;
// the remembered restore volume and calibrated thresholds persist through
// it.
type Controller struct {
	det   detector.Detector
	cond  *smile.Conditioner
	mach  *smile.Machine
	lim   *volume.Limiter
	clock clockwork.Clock
	emit  func(any)

	cfgPath string

	newCalibrator func() *smile.Calibrator
	calSession    time.Duration

	mu          sync.Mutex
	cfg         config.Config
	enabled     bool
	calibrating bool
	transitions int

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewController(cfg config.Config, cfgPath string, det detector.Detector, lim *volume.Limiter, clock clockwork.Clock, emit func(any)) (*Controller, error) {
	mach, err := smile.NewMachine(cfg.Thresholds())
	if err != nil {
		return nil, err
	}
	if emit == nil {
		emit = func(any) {}
	}
	c := &Controller{
		det:     det,
		cond:    smile.NewConditioner(cfg.EMABeta, cfg.FaceTimeout(), clock),
		mach:    mach,
		lim:     lim,
		clock:   clock,
		emit:    emit,
		cfgPath: cfgPath,
		cfg:     cfg,
		enabled: true,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	c.newCalibrator = func() *smile.Calibrator { return smile.NewCalibrator(clock) }
	return c, nil
}

func (c *Controller) Start() {
	go c.run()
}

func (c *Controller) run() {
	defer close(c.doneCh)

	poll := c.clock.NewTicker(c.cfg.PollInterval())
	defer poll.Stop()
	remember := c.clock.NewTicker(time.Second)
	defer remember.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-poll.Chan():
			c.cycle()
		case <-remember.Chan():
			c.rememberVolume()
		}
	}
}

// Stop ends the poll loop and waits for the in-flight cycle to finish.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	<-c.doneCh
}

func (c *Controller) cycle() {
	c.mu.Lock()
	if !c.enabled || c.calibrating {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	raw, ok := c.det.RawScore()
	score := c.cond.Observe(raw, ok)
	c.emit(ScoreMsg{Score: score.Value(), Absent: score.IsAbsent()})

	state, changed := c.mach.Update(score)
	if changed {
		c.onTransition(state, score)
	}
}

func (c *Controller) onTransition(state smile.State, score smile.Score) {
	target := 0
	if state == smile.Smiling {
		c.mu.Lock()
		target = c.cfg.RestoreVolume
		c.mu.Unlock()
	}

	res, err := c.lim.Set(target, false)
	if err != nil {
		log.Errorf("volume set failed: %v", err)
		c.emit(StatusMsg{Text: err.Error()})
	} else if res == volume.Applied {
		log.VolumeCommand(target, false)
	}

	c.mu.Lock()
	c.transitions++
	c.mu.Unlock()

	log.Transition(state.String(), score.Value(), target)
	c.emit(StateMsg{State: state})
	if err == nil {
		c.emit(VolumeMsg{Pct: target, Suppressed: res == volume.Suppressed})
	}
}

// rememberVolume tracks manual volume changes made while audible, so the
// next un-mute lands on what the user actually listens at. Zero is never
// remembered: a muted mixer would otherwise poison the restore target.
func (c *Controller) rememberVolume() {
	c.mu.Lock()
	enabled, calibrating := c.enabled, c.calibrating
	c.mu.Unlock()
	if !enabled || calibrating || c.mach.State() != smile.Smiling {
		return
	}

	cur, err := c.lim.Current()
	if err != nil || cur <= 0 {
		return
	}

	c.mu.Lock()
	if cur == c.cfg.RestoreVolume {
		c.mu.Unlock()
		return
	}
	c.cfg.RestoreVolume = cur
	cfg := c.cfg
	c.mu.Unlock()

	if err := config.Save(c.cfgPath, cfg); err != nil {
		log.Warnf("could not persist restore volume: %v", err)
	}
}

// SetEnabled pauses or resumes control. Disabling hands the volume back
// immediately; re-enabling resets the conditioner so a stale accumulator
// cannot trigger a phantom transition.
func (c *Controller) SetEnabled(on bool) {
	c.mu.Lock()
	if c.enabled == on {
		c.mu.Unlock()
		return
	}
	c.enabled = on
	restore := c.cfg.RestoreVolume
	c.mu.Unlock()

	if on {
		c.cond.Reset()
		log.Info("control enabled")
	} else {
		if _, err := c.lim.Set(restore, true); err != nil {
			log.Errorf("restore on disable failed: %v", err)
			c.emit(StatusMsg{Text: err.Error()})
		} else {
			log.VolumeCommand(restore, true)
		}
		log.Info("control disabled")
	}
	c.emit(EnabledMsg{Enabled: on})
}

func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *Controller) Toggle() {
	c.SetEnabled(!c.Enabled())
}

func (c *Controller) Transitions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transitions
}

func (c *Controller) Config() config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// ForceRestore pushes the remembered volume out regardless of suppression.
// Used on disable and at shutdown so quitting never leaves the system muted.
func (c *Controller) ForceRestore() {
	c.mu.Lock()
	restore := c.cfg.RestoreVolume
	c.mu.Unlock()
	if _, err := c.lim.Set(restore, true); err != nil {
		log.Errorf("volume restore failed: %v", err)
	}
}

// Calibrate pauses the poll cycle, runs the two sampling sessions, and on
// success swaps the machine thresholds and persists them. Any failure
// leaves the previous thresholds in effect.
func (c *Controller) Calibrate(ctx context.Context) error {
	c.mu.Lock()
	if c.calibrating {
		c.mu.Unlock()
		return errCalibrating
	}
	c.calibrating = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.calibrating = false
		c.mu.Unlock()
	}()

	cal := c.newCalibrator()
	cal.Notify = func(p smile.Progress) { c.emit(CalProgressMsg{P: p}) }

	// Sessions see the same conditioned signal the live loop acts on: a
	// fresh conditioner smooths the samples and bridges brief dropouts.
	// Until the first face shows up nothing counts, so an empty session
	// still reads as ErrNoFace instead of a mean of bridged zeros.
	c.mu.Lock()
	cond := smile.NewConditioner(c.cfg.EMABeta, c.cfg.FaceTimeout(), c.clock)
	c.mu.Unlock()
	seen := false
	sample := func() (float64, bool) {
		raw, ok := c.det.RawScore()
		if ok {
			seen = true
		}
		s := cond.Observe(raw, ok)
		return s.Value(), seen && !s.IsAbsent()
	}

	res, err := cal.Run(ctx, sample, c.calSession)
	if err != nil {
		log.CalibrationFailed(err)
		c.emit(CalDoneMsg{Err: err})
		return err
	}

	th := c.mach.Thresholds()
	th.On, th.Off = res.On, res.Off
	if err := c.mach.SetThresholds(th); err != nil {
		log.CalibrationFailed(err)
		c.emit(CalDoneMsg{Err: err})
		return err
	}
	c.cond.Reset()

	c.mu.Lock()
	c.cfg.SmileOn, c.cfg.SmileOff = res.On, res.Off
	cfg := c.cfg
	c.mu.Unlock()
	if err := config.Save(c.cfgPath, cfg); err != nil {
		log.Warnf("could not persist calibration: %v", err)
	}

	log.CalibrationDone(res.Neutral, res.Smiling, res.On, res.Off)
	c.emit(CalDoneMsg{Cal: res})
	return nil
}

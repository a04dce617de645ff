// Package log writes file-backed diagnostics for a menu-bar app that has
// no terminal to print to. Two files: a structured diagnostics log and a
// plain-text transition history.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transitionFile *os.File
	logMu          sync.Mutex
	logReady       bool
	pid            int
	dir            string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: GRIN_LOG_PATH environment variable
	envPath := os.Getenv("GRIN_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transitionPath := filepath.Join(dir, "transitions_log.txt")
	transitionFile, err = os.OpenFile(transitionPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transitionFile != nil {
		transitionFile.Close()
		transitionFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// SessionStart records the effective tunables at startup.
func SessionStart(cameraIndex int, on, off float64, onFrames, offFrames int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("camera", cameraIndex).
		Float64("on_threshold", on).
		Float64("off_threshold", off).
		Int("on_frames", onFrames).
		Int("off_frames", offFrames).
		Msg("session_start")
}

func SessionEnd(transitions int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("transitions", transitions).
		Msg("session_end")
}

// Transition records a debounced state change and the volume it commanded,
// both as a structured event and as a plain line in the transition history.
func Transition(state string, score float64, volume int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("state", state).
		Float64("score", score).
		Int("volume", volume).
		Msg("transition")

	logMu.Lock()
	defer logMu.Unlock()
	if transitionFile != nil {
		line := fmt.Sprintf("%s\t[%d]\t%s\tscore=%.3f\tvolume=%d\n",
			time.Now().Format("2006-01-02 15:04:05"), pid, state, score, volume)
		transitionFile.WriteString(line)
	}
}

// VolumeCommand records a command that actually reached the actuator.
func VolumeCommand(pct int, forced bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("volume", pct).
		Bool("forced", forced).
		Msg("volume_command")
}

// CalibrationDone records a successful calibration.
func CalibrationDone(neutral, smiling, on, off float64) {
	if !logReady {
		return
	}
	diagLog.Info().
		Float64("neutral", neutral).
		Float64("smiling", smiling).
		Float64("on_threshold", on).
		Float64("off_threshold", off).
		Msg("calibration_done")
}

// CalibrationFailed records a refused calibration; previous thresholds stay.
func CalibrationFailed(err error) {
	if !logReady {
		return
	}
	diagLog.Warn().
		Err(err).
		Msg("calibration_failed")
}

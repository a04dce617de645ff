package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("GRIN_LOG_PATH", "/tmp/grin-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/grin-env-log" {
		t.Errorf("got %q, want /tmp/grin-env-log", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("GRIN_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got == "" {
		t.Error("default log dir is empty")
	}
	if !strings.Contains(got, "grin") {
		t.Errorf("default log dir %q does not mention grin", got)
	}
}

func TestInitCreatesFiles(t *testing.T) {
	tmp := setupLogDir(t)
	if err := Init(); err != nil {
		t.Fatal(err)
	}

	Info("hello")
	Transition("smiling", 0.83, 65)

	for _, name := range []string{"diagnostics_log.txt", "transitions_log.txt"} {
		if _, err := os.Stat(filepath.Join(tmp, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
}

func TestTransitionWritesHistoryLine(t *testing.T) {
	tmp := setupLogDir(t)
	if err := Init(); err != nil {
		t.Fatal(err)
	}

	Transition("not_smiling", 0.05, 0)
	Close()

	data, err := os.ReadFile(filepath.Join(tmp, "transitions_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "not_smiling") || !strings.Contains(line, "volume=0") {
		t.Errorf("unexpected transition line: %q", line)
	}
}

func TestLoggingBeforeInitIsNoop(t *testing.T) {
	setupLogDir(t)
	// Must not panic or create files.
	Info("ignored")
	Transition("smiling", 0.9, 100)
	CalibrationDone(0.1, 0.9, 0.78, 0.22)
}

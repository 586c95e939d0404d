package debug

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogWritesCategory(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	Log("sched", "tick %d", 3)
	Error("source", errors.New("refused"), "fetch failed")

	out := buf.String()
	for _, want := range []string{"cat=sched", "tick 3", "cat=source", "refused"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDisabledDiscards(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	Disable()

	Log("sched", "dropped")
	if buf.Len() != 0 {
		t.Errorf("want nothing written, got %q", buf.String())
	}
}

func TestLogEveryThrottles(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(time.Hour, "tick", "beat %d", i)
	}
	if want, got := 1, strings.Count(buf.String(), "cat=tick"); want != got {
		t.Errorf("lines: want %v, got %v", want, got)
	}
}

func TestEnableCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatal(err)
	}
	Log("test", "hello")
	Disable()
}

package config

import (
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func TestGbFormatterRendersSortedFields(t *testing.T) {
	t.Parallel()

	entry := &log.Entry{
		Logger:  log.New(),
		Time:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   log.InfoLevel,
		Message: "hello",
		Data:    log.Fields{"zebra": 1, "alpha": "x"},
	}

	out, err := (&GbFormatter{}).Format(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line := string(out)

	if !strings.HasSuffix(line, "\n") {
		t.Fatal("formatted line must end with a newline")
	}
	if !strings.Contains(line, "INFO") {
		t.Fatalf("level token missing: %q", line)
	}
	if !strings.Contains(line, `"hello"`) {
		t.Fatalf("message missing: %q", line)
	}
	if strings.Index(line, "alpha") > strings.Index(line, "zebra") {
		t.Fatalf("fields must be sorted: %q", line)
	}
}

func TestGbFormatterEscapesNewlines(t *testing.T) {
	t.Parallel()

	entry := &log.Entry{
		Logger:  log.New(),
		Time:    time.Now(),
		Level:   log.WarnLevel,
		Message: "line one\nline two",
	}

	out, err := (&GbFormatter{}).Format(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(string(out), "\n") != 1 {
		t.Fatalf("embedded newlines must be escaped, got %q", out)
	}
}

func TestValueColor(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		raw  string
		want int
	}{
		{"42", colorGreen},
		{`"text"`, colorLightYellow},
		{"{}", colorCyan},
	} {
		if got := valueColor(tt.raw); got != tt.want {
			t.Fatalf("valueColor(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

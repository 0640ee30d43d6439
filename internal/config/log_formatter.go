package config

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	colorRed         = 31
	colorGreen       = 32
	colorYellow      = 33
	colorBlue        = 36
	colorGray        = 37
	colorCyan        = 96
	colorLightYellow = 93
	colorLightGreen  = 92
)

// GbFormatter renders logfmt-style lines with ANSI colors. Fields are sorted
// so lines diff cleanly between runs.
type GbFormatter struct{}

func (f *GbFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b strings.Builder

	writePair(&b, "level", colorize(levelColor(entry.Level), strings.ToUpper(entry.Level.String())[:4]))
	writePair(&b, "ts", colorize(colorLightYellow, entry.Time.Format("2006-01-02 15:04:05.000")))
	if site, ok := callSite(); ok {
		writePair(&b, "source", colorize(colorLightYellow, site))
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw, err := json.Marshal(entry.Data[k])
		if err != nil || len(raw) == 0 {
			continue
		}
		writePair(&b, k, colorize(valueColor(string(raw)), string(raw)))
	}

	writePair(&b, "msg", colorize(colorLightGreen, strconv.Quote(entry.Message)))

	line := strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(b.String())
	return []byte(line + "\n"), nil
}

func writePair(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(colorize(colorCyan, key))
	b.WriteByte('=')
	b.WriteString(value)
}

func colorize(color int, s string) string {
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, s)
}

func levelColor(level log.Level) int {
	switch level {
	case log.TraceLevel, log.DebugLevel:
		return colorGray
	case log.WarnLevel:
		return colorYellow
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		return colorRed
	default:
		return colorBlue
	}
}

func valueColor(raw string) int {
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return colorGreen
	}
	if strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		return colorLightYellow
	}
	return colorCyan
}

// callSite reports the first caller outside of logrus itself. The logging
// depth varies between Info, WithField chains and the formatter hook, a fixed
// skip count misattributes lines.
func callSite() (string, bool) {
	pcs := make([]uintptr, 24)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !strings.Contains(frame.File, "sirupsen/logrus") {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line), true
		}
		if !more {
			return "", false
		}
	}
}

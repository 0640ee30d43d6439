package infra

import (
	"fmt"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
)

// GoRecoverable runs f and restarts it after a panic. A negative maxPanics
// restarts forever, zero means the first panic is fatal. The call blocks for
// as long as f keeps running.
func GoRecoverable(maxPanics int, id string, f func()) {
	for {
		if runGuarded(id, f) {
			return
		}
		if maxPanics == 0 {
			log.Fatalf("job %q exceeded its panic limit, exiting", id)
		}
		if maxPanics > 0 {
			maxPanics--
		}
		log.Debugf("restarting job %q, panics left: %d", id, maxPanics)
	}
}

func runGuarded(id string, f func()) (completed bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("job %q panicked at %s: %v", id, panicOrigin(), r)
		}
	}()
	f()
	return true
}

// panicOrigin walks past the runtime frames of an in-flight panic to the
// frame that raised it.
func panicOrigin() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			return fmt.Sprintf("%s:%d", frame.Function, frame.Line)
		}
		if !more {
			return "unknown"
		}
	}
}

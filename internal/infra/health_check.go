package infra

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

const checkExecInterval = 5 * time.Second

// MonitorExecutable signals once when the running binary changes on disk,
// which is how deployments ship new versions here. The channel closes without
// a signal if the binary cannot be watched.
func MonitorExecutable(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)

		path, err := os.Executable()
		if err != nil {
			log.WithError(err).Warn("cant resolve executable path for monitor")
			return
		}
		baseline, err := binaryStamp(path)
		if err != nil {
			log.WithError(err).Warn("cant stat executable for monitor")
			return
		}

		ticker := time.NewTicker(checkExecInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stamp, err := binaryStamp(path)
				if err != nil {
					log.WithError(err).Debug("cant stat executable, will retry")
					continue
				}
				if stamp == baseline {
					continue
				}
				select {
				case ch <- struct{}{}:
				case <-ctx.Done():
				}
				return
			}
		}
	}()
	return ch
}

// binaryStamp fingerprints the file by size and modification time. In-place
// rewrites that touch neither are not a deployment.
func binaryStamp(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano()), nil
}

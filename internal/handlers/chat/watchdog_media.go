package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/adapters/classifier"
	moderation "github.com/iamwavecut/guardbot/internal/handlers/moderation"
)

// screenMedia downloads the message's image representation and runs it through
// the classifier. Screening is fail-open: any download or classifier failure
// leaves the message alone.
func (w *Watchdog) screenMedia(ctx context.Context, msg *api.Message, lang string) error {
	if w.classifier == nil {
		return nil
	}
	fileID := mediaFileID(msg)
	if fileID == "" {
		return nil
	}
	entry := w.getLogEntry().WithFields(log.Fields{"chat_id": msg.Chat.ID, "method": "screenMedia"})

	mediaPath, err := w.downloadFile(ctx, fileID)
	if err != nil {
		entry.WithField("error", err.Error()).Warn("cant download media, skipping check")
		return nil
	}
	defer func() {
		if err := os.Remove(mediaPath); err != nil {
			entry.WithField("error", err.Error()).Debug("cant remove media temp file")
		}
	}()

	verdict, err := w.classifier.ClassifyImage(ctx, mediaPath)
	if err != nil {
		entry.WithField("error", err.Error()).Warn("classifier unavailable, skipping check")
		return nil
	}
	if verdict != classifier.VerdictHeavy {
		return nil
	}

	_, err = w.enforcer.PunishViolation(ctx, msg, moderation.SeverityHeavy, mediaPath, lang)
	return err
}

// mediaFileID picks the best still image out of the message: the largest
// photo size, or a sticker/animation thumbnail.
func mediaFileID(msg *api.Message) string {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID
	}
	if msg.Sticker != nil {
		if msg.Sticker.Thumbnail != nil {
			return msg.Sticker.Thumbnail.FileID
		}
		return msg.Sticker.FileID
	}
	if msg.Animation != nil && msg.Animation.Thumbnail != nil {
		return msg.Animation.Thumbnail.FileID
	}
	return ""
}

func (w *Watchdog) downloadFile(ctx context.Context, fileID string) (string, error) {
	url, err := w.s.GetBot().GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	out, err := os.CreateTemp("", "guardbot-media-*.jpg")
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("write media file: %w", err)
	}
	return filepath.Clean(out.Name()), nil
}

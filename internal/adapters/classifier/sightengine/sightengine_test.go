package sightengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/adapters/classifier"
)

func newTestAPI(t *testing.T, response string) (*API, string) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart form: %v", err)
		}
		if r.FormValue("models") != "nudity,wad,offensive,gore" {
			t.Errorf("unexpected models field: %s", r.FormValue("models"))
		}
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	mediaPath := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(mediaPath, []byte("not really a jpeg"), 0o600); err != nil {
		t.Fatalf("write media fixture: %v", err)
	}

	return &API{
		httpClient: &http.Client{Timeout: time.Second},
		endpoint:   server.URL,
		apiUser:    "user",
		apiSecret:  "secret",
		logger:     log.WithField("object", "test"),
	}, mediaPath
}

func TestClassifyImageCleanAndHeavy(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name     string
		response string
		want     classifier.Verdict
	}{
		{
			"clean image",
			`{"status":"success","nudity":{"raw":0.01,"partial":0.02,"safe":0.97},"weapon":0.1,"gore":{"prob":0.05}}`,
			classifier.VerdictClean,
		},
		{
			"explicit image",
			`{"status":"success","nudity":{"raw":0.4,"partial":0.3,"safe":0.2},"weapon":0.0,"gore":{"prob":0.0}}`,
			classifier.VerdictHeavy,
		},
		{
			"weapon only",
			`{"status":"success","nudity":{"raw":0.0,"partial":0.0,"safe":0.99},"weapon":0.95,"gore":{"prob":0.0}}`,
			classifier.VerdictHeavy,
		},
		{
			"missing nudity block defaults safe",
			`{"status":"success","weapon":0.1}`,
			classifier.VerdictClean,
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			api, mediaPath := newTestAPI(t, tt.response)
			got, err := api.ClassifyImage(context.Background(), mediaPath)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ClassifyImage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyImageFailureStatus(t *testing.T) {
	t.Parallel()

	api, mediaPath := newTestAPI(t, `{"status":"failure","error":{"message":"quota exceeded"}}`)
	if _, err := api.ClassifyImage(context.Background(), mediaPath); err == nil {
		t.Fatal("a failure status must surface as an error")
	}
}

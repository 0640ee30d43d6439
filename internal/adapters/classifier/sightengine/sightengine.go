package sightengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/guardbot/internal/adapters"
	"github.com/iamwavecut/guardbot/internal/adapters/classifier"
)

const defaultEndpoint = "https://api.sightengine.com/1.0/check.json"

// API screens images through the Sightengine moderation models.
type API struct {
	httpClient *http.Client
	endpoint   string
	apiUser    string
	apiSecret  string
	logger     *log.Entry
}

func NewSightengine(apiUser, apiSecret string, logger *log.Entry) adapters.ImageClassifier {
	return &API{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   defaultEndpoint,
		apiUser:    apiUser,
		apiSecret:  apiSecret,
		logger:     logger,
	}
}

type checkResponse struct {
	Status string `json:"status"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Nudity *struct {
		Raw     float64 `json:"raw"`
		Partial float64 `json:"partial"`
		Safe    float64 `json:"safe"`
	} `json:"nudity"`
	Weapon float64 `json:"weapon"`
	Gore   *struct {
		Prob float64 `json:"prob"`
	} `json:"gore"`
}

func (a *API) ClassifyImage(ctx context.Context, filePath string) (classifier.Verdict, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(filePath)
	if err != nil {
		return classifier.VerdictClean, fmt.Errorf("open media file: %w", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("media", filepath.Base(filePath))
	if err != nil {
		return classifier.VerdictClean, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return classifier.VerdictClean, err
	}
	for field, value := range map[string]string{
		"models":     "nudity,wad,offensive,gore",
		"api_user":   a.apiUser,
		"api_secret": a.apiSecret,
	} {
		if err := writer.WriteField(field, value); err != nil {
			return classifier.VerdictClean, err
		}
	}
	if err := writer.Close(); err != nil {
		return classifier.VerdictClean, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, body)
	if err != nil {
		return classifier.VerdictClean, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return classifier.VerdictClean, fmt.Errorf("sightengine request: %w", err)
	}
	defer resp.Body.Close()

	var parsed checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return classifier.VerdictClean, fmt.Errorf("decode sightengine response: %w", err)
	}
	if parsed.Status != "success" {
		return classifier.VerdictClean, fmt.Errorf("sightengine check failed: %s", parsed.Error.Message)
	}

	scores := classifier.Scores{
		NuditySafe: 1,
		Weapon:     parsed.Weapon,
	}
	if parsed.Nudity != nil {
		scores.NudityRaw = parsed.Nudity.Raw
		scores.NudityPartial = parsed.Nudity.Partial
		scores.NuditySafe = parsed.Nudity.Safe
	}
	if parsed.Gore != nil {
		scores.Gore = parsed.Gore.Prob
	}

	verdict := scores.Verdict()
	a.logger.WithFields(log.Fields{
		"verdict": verdict,
		"scores":  fmt.Sprintf("%+v", scores),
	}).Debug("image screened")
	return verdict, nil
}

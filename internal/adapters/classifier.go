package adapters

import (
	"context"

	"github.com/iamwavecut/guardbot/internal/adapters/classifier"
)

// ImageClassifier defines the interface for media content screening
type ImageClassifier interface {
	// ClassifyImage screens a downloaded image file for disallowed content
	ClassifyImage(ctx context.Context, filePath string) (classifier.Verdict, error)
}

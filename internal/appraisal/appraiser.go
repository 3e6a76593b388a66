// Package appraisal sends an encoded property photo to Gemini with a fixed
// persona prompt and a strict JSON schema, and decodes the reply.
//
// Each Appraise call issues exactly one request. There is no retry, caching,
// deduplication or rate limiting.
package appraisal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"glassngold/internal/config"
	"glassngold/internal/encoder"
)

// Appraiser turns an encoded image into a Result.
type Appraiser interface {
	Appraise(ctx context.Context, image encoder.DataURI) (Result, error)
}

// New builds the backend selected by cfg.Backend. A missing API key fails
// here, before any request can be sent.
func New(ctx context.Context, cfg config.AppraisalConfig) (Appraiser, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, newError(KindConfig, config.ErrMissingAPIKey)
	}
	httpClient := &http.Client{Timeout: cfg.GetTimeout()}

	switch cfg.Backend {
	case config.BackendREST:
		c, err := NewRESTClient(RESTConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.BackendSDK, "":
		c, err := NewSDKClient(ctx, SDKConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, newError(KindConfig, fmt.Errorf("unknown backend %q", cfg.Backend))
	}
}

// imageParts validates image and returns its media type and base64 payload.
func imageParts(image encoder.DataURI) (mediaType, payload string, err error) {
	mediaType = image.MediaType()
	payload = image.Payload()
	if mediaType == "" || payload == "" {
		return "", "", newError(KindInput, errors.New("image is not a base64 data URI"))
	}
	return mediaType, payload, nil
}

// IsAppraisalError reports whether err is (or wraps) an *AppraisalError.
func IsAppraisalError(err error) bool {
	var ae *AppraisalError
	return errors.As(err, &ae)
}

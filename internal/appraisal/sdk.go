package appraisal

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"glassngold/internal/encoder"
	"glassngold/internal/logging"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// SDKConfig holds configuration for SDKClient.
type SDKConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional; ".../v1beta" style, version suffix is split off
	// HTTPClient is handed to the SDK; its Timeout is the only request timeout.
	HTTPClient *http.Client
}

// SDKClient uses google.golang.org/genai.
type SDKClient struct {
	client *genai.Client
	model  string
}

// NewSDKClient creates a genai-backed appraiser.
func NewSDKClient(ctx context.Context, cfg SDKConfig) (*SDKClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, newError(KindConfig, errors.New("API key not configured"))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if base, version := splitAPIVersion(cfg.BaseURL); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base, APIVersion: version}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, newError(KindConfig, fmt.Errorf("failed to create GenAI client: %w", err))
	}
	return &SDKClient{client: client, model: model}, nil
}

// splitAPIVersion turns "https://host/v1beta" into ("https://host/", "v1beta").
func splitAPIVersion(baseURL string) (base, version string) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return "", ""
	}
	idx := strings.LastIndex(baseURL, "/")
	if idx > len("https://") {
		last := baseURL[idx+1:]
		if strings.HasPrefix(last, "v1") {
			return baseURL[:idx+1], last
		}
	}
	return baseURL + "/", ""
}

// Model returns the configured model name.
func (c *SDKClient) Model() string { return c.model }

// Appraise sends one GenerateContent call and parses the reply.
func (c *SDKClient) Appraise(ctx context.Context, image encoder.DataURI) (Result, error) {
	log := logging.Get(logging.CategoryAppraisal)
	startTime := time.Now()

	mediaType, payload, err := imageParts(image)
	if err != nil {
		return Result{}, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Result{}, newError(KindInput, fmt.Errorf("image payload is not base64: %w", err))
	}
	log.Debug("sdk appraise",
		zap.String("model", c.model),
		zap.String("media_type", mediaType),
		zap.Int("bytes", len(data)))

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mediaType),
			genai.NewPartFromText(TaskPrompt),
		}, genai.RoleUser),
	}
	gc := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(SystemInstruction)}},
		ResponseMIMEType:  ResponseMIMEType,
		ResponseSchema:    sdkSchema(),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, gc)
	if err != nil {
		log.Warn("sdk request failed", zap.Error(err), zap.Duration("elapsed", time.Since(startTime)))
		return Result{}, newError(KindTransport, fmt.Errorf("GenAI generate failed: %w", err))
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return Result{}, newError(KindDecode, errors.New("no completion returned"))
	}

	result, err := ParseResult(resp.Text())
	if err != nil {
		log.Warn("sdk response rejected", zap.Error(err))
		return Result{}, err
	}

	log.Info("appraisal complete",
		zap.String("backend", "sdk"),
		zap.String("title", result.Title),
		zap.Int("amenities", len(result.Amenities)),
		zap.Duration("elapsed", time.Since(startTime)))
	return result, nil
}

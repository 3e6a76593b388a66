package appraisal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"glassngold/internal/encoder"
	"glassngold/internal/logging"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-3-flash-preview"
)

// RESTConfig holds configuration for RESTClient.
type RESTConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// RESTClient calls models/{model}:generateContent directly.
type RESTClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewRESTClient creates a REST client. The API key is mandatory.
func NewRESTClient(cfg RESTConfig) (*RESTClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, newError(KindConfig, errors.New("API key not configured"))
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &RESTClient{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
	}, nil
}

// Model returns the configured model name.
func (c *RESTClient) Model() string { return c.model }

type restBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type restPart struct {
	Text       string    `json:"text,omitempty"`
	InlineData *restBlob `json:"inlineData,omitempty"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type restGenerationConfig struct {
	ResponseMimeType string                 `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]interface{} `json:"responseSchema,omitempty"`
}

type restRequest struct {
	Contents          []restContent        `json:"contents"`
	SystemInstruction *restContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  restGenerationConfig `json:"generationConfig"`
}

type restResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text    string `json:"text,omitempty"`
				Thought bool   `json:"thought,omitempty"`
			} `json:"parts"`
			Role string `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func buildRESTRequest(mediaType, payload string) restRequest {
	return restRequest{
		Contents: []restContent{
			{
				Role: "user",
				Parts: []restPart{
					{InlineData: &restBlob{MimeType: mediaType, Data: payload}},
					{Text: TaskPrompt},
				},
			},
		},
		SystemInstruction: &restContent{
			Parts: []restPart{{Text: SystemInstruction}},
		},
		GenerationConfig: restGenerationConfig{
			ResponseMimeType: ResponseMIMEType,
			ResponseSchema:   ResponseSchema(),
		},
	}
}

// Appraise sends one generateContent request and parses the reply.
func (c *RESTClient) Appraise(ctx context.Context, image encoder.DataURI) (Result, error) {
	log := logging.Get(logging.CategoryAppraisal)
	startTime := time.Now()

	mediaType, payload, err := imageParts(image)
	if err != nil {
		return Result{}, err
	}
	log.Debug("rest appraise",
		zap.String("model", c.model),
		zap.String("media_type", mediaType),
		zap.Int("payload_len", len(payload)))

	jsonData, err := json.Marshal(buildRESTRequest(mediaType, payload))
	if err != nil {
		return Result{}, newError(KindTransport, fmt.Errorf("failed to marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return Result{}, newError(KindTransport, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("rest request failed", zap.Error(err), zap.Duration("elapsed", time.Since(startTime)))
		return Result{}, newError(KindTransport, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, newError(KindTransport, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("rest request rejected",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(startTime)))
		return Result{}, &AppraisalError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("API request failed: %s", truncate(string(body), 512)),
		}
	}

	var geminiResp restResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return Result{}, newError(KindDecode, fmt.Errorf("failed to parse response: %w", err))
	}
	if geminiResp.Error != nil {
		return Result{}, &AppraisalError{
			Kind:       KindStatus,
			StatusCode: geminiResp.Error.Code,
			Err:        fmt.Errorf("API error: %s", geminiResp.Error.Message),
		}
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return Result{}, newError(KindDecode, errors.New("no completion returned"))
	}

	var text strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		if part.Thought {
			continue
		}
		text.WriteString(part.Text)
	}

	result, err := ParseResult(text.String())
	if err != nil {
		log.Warn("rest response rejected", zap.Error(err))
		return Result{}, err
	}

	log.Info("appraisal complete",
		zap.String("backend", "rest"),
		zap.String("title", result.Title),
		zap.Int("amenities", len(result.Amenities)),
		zap.Int("total_tokens", geminiResp.UsageMetadata.TotalTokenCount),
		zap.Duration("elapsed", time.Since(startTime)))
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package appraisal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"glassngold/internal/encoder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testImage = encoder.NewDataURI("image/jpeg", []byte{0xFF, 0xD8, 0xFF, 0xD9})

// envelope wraps model text in a generateContent response body.
func envelope(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []interface{}{map[string]interface{}{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]interface{}{"totalTokenCount": 42},
	})
	require.NoError(t, err)
	return body
}

func newTestREST(t *testing.T, handler http.HandlerFunc) (*RESTClient, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	c, err := NewRESTClient(RESTConfig{
		APIKey:     "test-key",
		BaseURL:    ts.URL + "/v1beta/",
		Model:      "gemini-test",
		HTTPClient: ts.Client(),
	})
	require.NoError(t, err)
	return c, &calls
}

func TestRESTClient_Appraise(t *testing.T) {
	var got restRequest
	c, calls := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(envelope(t, validJSON))
	})

	res, err := c.Appraise(context.Background(), testImage)
	require.NoError(t, err)
	assert.Equal(t, "THE SHATTERED LOFT", res.Title)
	assert.Len(t, res.Amenities, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	require.Len(t, got.Contents, 1)
	parts := got.Contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MimeType)
	assert.Equal(t, testImage.Payload(), parts[0].InlineData.Data)
	assert.False(t, strings.HasPrefix(parts[0].InlineData.Data, "data:"), "prefix must be stripped")
	assert.Equal(t, TaskPrompt, parts[1].Text)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, SystemInstruction, got.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
	assert.ElementsMatch(t, RequiredFields, got.GenerationConfig.ResponseSchema["required"])
}

func TestRESTClient_ForwardsMediaType(t *testing.T) {
	var mimeType string
	c, _ := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		var req restRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mimeType = req.Contents[0].Parts[0].InlineData.MimeType
		_, _ = w.Write(envelope(t, validJSON))
	})

	_, err := c.Appraise(context.Background(), encoder.NewDataURI("image/webp", []byte("RIFF")))
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mimeType)
}

func TestRESTClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    ErrorKind
		status  int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
			},
			kind:   KindStatus,
			status: http.StatusInternalServerError,
		},
		{
			name: "rate limited is not retried",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			kind:   KindStatus,
			status: http.StatusTooManyRequests,
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
			kind: KindDecode,
		},
		{
			name: "no candidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"candidates":[]}`))
			},
			kind: KindDecode,
		},
		{
			name: "missing broQuote",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(envelope(t, `{"title":"t","listingDescription":"d","rentPrice":"p","amenities":["a"]}`))
			},
			kind: KindSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestREST(t, tt.handler)
			_, err := c.Appraise(context.Background(), testImage)

			var ae *AppraisalError
			require.True(t, errors.As(err, &ae), "want AppraisalError, got %v", err)
			assert.Equal(t, tt.kind, ae.Kind)
			if tt.status != 0 {
				assert.Equal(t, tt.status, ae.StatusCode)
			}
			assert.Equal(t, int32(1), atomic.LoadInt32(calls), "exactly one request, no retry")
		})
	}
}

func TestRESTClient_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c, err := NewRESTClient(RESTConfig{APIKey: "k", BaseURL: url, HTTPClient: &http.Client{Timeout: time.Second}})
	require.NoError(t, err)

	_, err = c.Appraise(context.Background(), testImage)
	var ae *AppraisalError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindTransport, ae.Kind)
}

func TestRESTClient_RejectsNonDataURI(t *testing.T) {
	c, calls := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.Appraise(context.Background(), encoder.DataURI("/assets/sample.svg"))
	var ae *AppraisalError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindInput, ae.Kind)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestNewRESTClient_Defaults(t *testing.T) {
	_, err := NewRESTClient(RESTConfig{})
	var ae *AppraisalError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindConfig, ae.Kind)

	c, err := NewRESTClient(RESTConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, defaultModel, c.Model())
	assert.Equal(t, defaultBaseURL, c.baseURL)
}

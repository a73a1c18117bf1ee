package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tween/internal/services"
)

const defaultHTTPTimeout = 180 * time.Second

// HTTPOption customizes the HTTP invoker.
type HTTPOption func(*HTTPInvoker)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTPInvoker) {
		if client != nil {
			h.httpClient = client
		}
	}
}

// HTTPInvoker posts the anchor frames to a generation endpoint and writes the
// returned frames and metadata into the output directory.
type HTTPInvoker struct {
	endpoint string
	apiKey   string

	httpClient *http.Client
}

// NewHTTPInvoker constructs an HTTP-backed invoker.
func NewHTTPInvoker(endpoint, apiKey string, timeoutSeconds int, opts ...HTTPOption) (*HTTPInvoker, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("generation endpoint required")
	}
	timeout := defaultHTTPTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	invoker := &HTTPInvoker{
		endpoint:   endpoint,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(invoker)
	}
	return invoker, nil
}

type generationRequest struct {
	FrameA        string  `json:"frame_a"`
	FrameB        string  `json:"frame_b"`
	NumFrames     int     `json:"num_frames"`
	Character     string  `json:"character,omitempty"`
	StyleStrength float64 `json:"style_strength,omitempty"`
	Resolution    int     `json:"resolution,omitempty"`
}

type generationResponse struct {
	Frames           []string  `json:"frames"`
	ConfidenceScores []float64 `json:"confidence_scores"`
	AutoAccept       []bool    `json:"auto_accept"`
	MotionType       string    `json:"motion_type"`
	Error            string    `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("generation request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Invoke posts the request once and writes the response artifacts. Endpoint
// failures surface to the caller unretried; retrying with adjusted parameters
// is a caller decision.
func (h *HTTPInvoker) Invoke(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "generate", "invoke", "invalid request", err)
	}

	payload, err := h.encodeRequest(req)
	if err != nil {
		return services.Wrap(services.ErrValidation, "generate", "invoke", "encode request", err)
	}

	resp, err := h.post(ctx, payload)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrExternalTool, "generate", "invoke", "generation endpoint failed", err)
	}

	if len(resp.Frames) != req.Count {
		return services.Wrap(services.ErrExternalTool, "generate", "invoke",
			fmt.Sprintf("endpoint returned %d frames, requested %d", len(resp.Frames), req.Count), nil)
	}

	return h.writeArtifacts(req.OutputDir, resp)
}

func (h *HTTPInvoker) encodeRequest(req Request) ([]byte, error) {
	frameA, err := readFrameBase64(req.FrameAPath)
	if err != nil {
		return nil, err
	}
	frameB, err := readFrameBase64(req.FrameBPath)
	if err != nil {
		return nil, err
	}
	return json.Marshal(generationRequest{
		FrameA:        frameA,
		FrameB:        frameB,
		NumFrames:     req.Count,
		Character:     req.Character,
		StyleStrength: req.StyleStrength,
		Resolution:    req.Resolution,
	})
}

func (h *HTTPInvoker) post(ctx context.Context, payload []byte) (*generationResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("generation request: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generation request: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("generation request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded generationResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("generation request: decode response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("generation request: engine error: %s", decoded.Error)
	}
	return &decoded, nil
}

func (h *HTTPInvoker) writeArtifacts(dir string, resp *generationResponse) error {
	for i, encoded := range resp.Frames {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "generate", "invoke",
				fmt.Sprintf("decode frame %d", i), err)
		}
		path := filepath.Join(dir, ArtifactName(i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return services.Wrap(services.ErrPersistence, "generate", "invoke",
				fmt.Sprintf("write frame %d", i), err)
		}
	}

	if len(resp.ConfidenceScores) == 0 && len(resp.AutoAccept) == 0 && resp.MotionType == "" {
		return nil
	}
	meta := Metadata{
		ConfidenceScores: resp.ConfidenceScores,
		AutoAccept:       resp.AutoAccept,
		MotionType:       resp.MotionType,
	}
	if err := WriteMetadata(dir, meta); err != nil {
		return services.Wrap(services.ErrPersistence, "generate", "invoke", "write metadata", err)
	}
	return nil
}

func readFrameBase64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read frame %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

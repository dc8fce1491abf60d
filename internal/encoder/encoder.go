// Package encoder talks to the face embedding server that detects faces in a frame
// and returns one encoding per face.
package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/capture"
)

const defaultURL = "http://localhost:8000"

// Client computes face encodings using the embedding server.
type Client struct {
	baseURL string
	dim     int
	maxSize int
	client  *http.Client
}

type Option func(c *Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithMaxSize downscales frames whose longer side exceeds px before upload.
func WithMaxSize(px int) Option {
	return func(c *Client) {
		c.maxSize = px
	}
}

// New creates a client for baseURL that expects encodings of dim components.
func New(baseURL string, dim int, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultURL
	}
	if dim <= 0 {
		dim = biometric.DefaultDim
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dim:     dim,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FaceDetection represents a single detected face
type FaceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// FaceResponse represents the response from the face embedding endpoint
type FaceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []FaceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// postImage sends imageData as a multipart "file" field to endpoint.
func (c *Client) postImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// DetectFaces returns the raw detections for an image.
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) (*FaceResponse, error) {
	if c.maxSize > 0 {
		resized, err := resize(imageData, c.maxSize)
		if err != nil {
			return nil, err
		}
		imageData = resized
	}

	body, err := c.postImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var faceResp FaceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &faceResp, nil
}

// DetectAndEncode returns one encoding per face found in frame.
// A face whose encoding has the wrong dimension fails the whole frame.
func (c *Client) DetectAndEncode(ctx context.Context, frame capture.Frame) ([]biometric.Vector, error) {
	resp, err := c.DetectFaces(ctx, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", frame.Seq, err)
	}

	out := make([]biometric.Vector, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		v, err := biometric.NewVector(f.Embedding, c.dim)
		if err != nil {
			return nil, fmt.Errorf("frame %d face %d: %w", frame.Seq, f.FaceIndex, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Health reports whether the embedding server answers.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding server unhealthy (status %d)", resp.StatusCode)
	}
	return nil
}

var _ capture.FaceEncoder = (*Client)(nil)

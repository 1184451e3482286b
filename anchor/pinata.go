package anchor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/google/uuid"

	"github.com/gsignip/patent-attestation/interfaces"
)

const (
	// DefaultPinataURL is Pinata's file pinning endpoint.
	DefaultPinataURL = "https://api.pinata.cloud/pinning/pinFileToIPFS"

	// DefaultGatewayURL is the public gateway documents are served from.
	DefaultGatewayURL = "https://gateway.pinata.cloud/ipfs"

	// DefaultUploadTimeout is generous because large documents and slow
	// pinning nodes are expected.
	DefaultUploadTimeout = 5 * time.Minute
)

// PinataClient implements interfaces.ContentAnchor against Pinata's pinning
// API.
type PinataClient struct {
	apiKey     string
	apiSecret  string
	endpoint   string
	gatewayURL string
	httpClient *http.Client
	log        *slog.Logger
}

// pinataResponse is the subset of the pinning response the pipeline needs.
type pinataResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// NewPinataClient creates a pinning client with the default endpoint,
// gateway and timeout.
func NewPinataClient(apiKey, apiSecret string, log *slog.Logger) *PinataClient {
	return &PinataClient{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		endpoint:   DefaultPinataURL,
		gatewayURL: DefaultGatewayURL,
		httpClient: &http.Client{Timeout: DefaultUploadTimeout},
		log:        log,
	}
}

// WithEndpoint overrides the pinning endpoint and gateway, used in tests and
// for dedicated gateways.
func (c *PinataClient) WithEndpoint(endpoint, gatewayURL string) *PinataClient {
	c.endpoint = endpoint
	c.gatewayURL = gatewayURL
	return c
}

// WithTimeout overrides the upload timeout.
func (c *PinataClient) WithTimeout(timeout time.Duration) *PinataClient {
	c.httpClient = &http.Client{Timeout: timeout}
	return c
}

// Upload pins the document as a single multipart unit and returns the
// content identifier extracted from the response. A non-success status is
// reported as ErrAnchorUploadFailed with the raw response body attached for
// diagnostics.
func (c *PinataClient) Upload(ctx context.Context, data []byte, fileName string) (*interfaces.AnchoredDocument, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document payload", interfaces.ErrAnchorUploadFailed)
	}

	body, contentType, err := buildMultipartBody(data, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrAnchorUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrAnchorUploadFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.apiSecret)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrAnchorUploadFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", interfaces.ErrAnchorUploadFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error("Pinning service rejected upload",
			slog.Int("status", resp.StatusCode),
			slog.String("file", fileName),
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("%w: status %d: %s", interfaces.ErrAnchorUploadFailed, resp.StatusCode, respBody)
	}

	var parsed pinataResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", interfaces.ErrAnchorUploadFailed, err)
	}
	if parsed.IpfsHash == "" {
		return nil, fmt.Errorf("%w: response carries no CID: %s", interfaces.ErrAnchorUploadFailed, respBody)
	}

	c.log.Debug("Document pinned",
		slog.String("cid", parsed.IpfsHash),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return &interfaces.AnchoredDocument{
		CID:        parsed.IpfsHash,
		GatewayURL: fmt.Sprintf("%s/%s", c.gatewayURL, parsed.IpfsHash),
	}, nil
}

// buildMultipartBody assembles the single-part form upload with a unique
// boundary token.
func buildMultipartBody(data []byte, fileName string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.SetBoundary(uuid.NewString()); err != nil {
		return nil, "", fmt.Errorf("set boundary: %w", err)
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	header.Set("Content-Type", "application/octet-stream")

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

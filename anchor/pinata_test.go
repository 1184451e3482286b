package anchor_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsignip/patent-attestation/anchor"
	"github.com/gsignip/patent-attestation/interfaces"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPinataUploadSuccess(t *testing.T) {
	var gotReq *http.Request
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"IpfsHash":"bafybeib123","PinSize":12,"Timestamp":"2025-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	client := anchor.NewPinataClient("key", "secret", discardLogger()).
		WithEndpoint(srv.URL, "https://gateway.pinata.cloud/ipfs")

	doc, err := client.Upload(context.Background(), []byte("hello, patent"), "abstract.pdf")
	require.NoError(t, err)
	assert.Equal(t, "bafybeib123", doc.CID)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/bafybeib123", doc.GatewayURL)

	// Auth travels in Pinata's custom headers, payload as one multipart unit.
	assert.Equal(t, "key", gotReq.Header.Get("pinata_api_key"))
	assert.Equal(t, "secret", gotReq.Header.Get("pinata_secret_api_key"))
	assert.Contains(t, gotReq.Header.Get("Content-Type"), "multipart/form-data; boundary=")
	assert.Contains(t, string(gotBody), `filename="abstract.pdf"`)
	assert.Contains(t, string(gotBody), "hello, patent")
}

func TestPinataUploadUniqueBoundaries(t *testing.T) {
	boundaries := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		boundaries[strings.TrimPrefix(contentType, "multipart/form-data; boundary=")] = true
		w.Write([]byte(`{"IpfsHash":"bafy1"}`))
	}))
	defer srv.Close()

	client := anchor.NewPinataClient("k", "s", discardLogger()).WithEndpoint(srv.URL, "https://gw")
	for i := 0; i < 3; i++ {
		_, err := client.Upload(context.Background(), []byte("x"), "f")
		require.NoError(t, err)
	}
	assert.Len(t, boundaries, 3)
}

func TestPinataUploadRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"pinning backend exploded"}`))
	}))
	defer srv.Close()

	client := anchor.NewPinataClient("k", "s", discardLogger()).WithEndpoint(srv.URL, "https://gw")

	_, err := client.Upload(context.Background(), []byte("doc"), "f.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrAnchorUploadFailed)
	// Raw response body attached for diagnostics.
	assert.Contains(t, err.Error(), "pinning backend exploded")
}

func TestPinataUploadMissingCID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"PinSize":3}`))
	}))
	defer srv.Close()

	client := anchor.NewPinataClient("k", "s", discardLogger()).WithEndpoint(srv.URL, "https://gw")

	_, err := client.Upload(context.Background(), []byte("doc"), "f.pdf")
	assert.ErrorIs(t, err, interfaces.ErrAnchorUploadFailed)
}

func TestPinataUploadEmptyPayload(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := anchor.NewPinataClient("k", "s", discardLogger()).WithEndpoint(srv.URL, "https://gw")

	_, err := client.Upload(context.Background(), nil, "f.pdf")
	assert.ErrorIs(t, err, interfaces.ErrAnchorUploadFailed)
	assert.False(t, called, "empty payloads are rejected before any network call")
}

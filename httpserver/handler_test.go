package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsignip/patent-attestation/httpserver"
	"github.com/gsignip/patent-attestation/interfaces"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubRegistrar struct {
	result  *interfaces.RegisterResult
	err     error
	lastReq *interfaces.RegisterRequest
}

func (s *stubRegistrar) RegisterApplication(ctx context.Context, req *interfaces.RegisterRequest) (*interfaces.RegisterResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubResolver struct {
	identity *interfaces.Identity
	err      error
}

func (s *stubResolver) ResolveOrCreate(ctx context.Context, email string) (*interfaces.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func multipartRequest(t *testing.T, fields map[string]string, fileName string, document []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(document)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/patents/register", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func registerFields() map[string]string {
	return map[string]string{
		"applicationNumber": "PT250000001",
		"email":             "a@x.com",
		"title":             "Self-sealing valve",
		"description":       "A valve that seals itself.",
		"status":            "0",
	}
}

func TestHandleRegisterSuccess(t *testing.T) {
	registrar := &stubRegistrar{result: &interfaces.RegisterResult{
		TxHash:        "0xabc...",
		CID:           "bafy...123",
		GatewayURL:    "https://gateway.pinata.cloud/ipfs/bafy...123",
		WalletAddress: "0x00000000000000000000000000000000000000aa",
		Status:        "Registered",
	}}
	handler := httpserver.NewHandler(registrar, &stubResolver{}, discardLogger())

	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, multipartRequest(t, registerFields(), "abstract.pdf", []byte("twelve bytes")))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool                       `json:"success"`
		Result  *interfaces.RegisterResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "0xabc...", resp.Result.TxHash)

	require.NotNil(t, registrar.lastReq)
	assert.Equal(t, "a@x.com", registrar.lastReq.Email)
	assert.Equal(t, "PT250000001", registrar.lastReq.ApplicationNo)
	assert.Equal(t, "abstract.pdf", registrar.lastReq.FileName)
	assert.Equal(t, []byte("twelve bytes"), registrar.lastReq.Document)
	assert.Equal(t, interfaces.StatusRegistered, registrar.lastReq.Status)
}

func TestHandleRegisterMissingFile(t *testing.T) {
	handler := httpserver.NewHandler(&stubRegistrar{}, &stubResolver{}, discardLogger())

	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, multipartRequest(t, registerFields(), "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing document file")
}

func TestHandleRegisterMissingEmail(t *testing.T) {
	handler := httpserver.NewHandler(&stubRegistrar{}, &stubResolver{}, discardLogger())

	fields := registerFields()
	delete(fields, "email")
	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, multipartRequest(t, fields, "abstract.pdf", []byte("doc")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRegisterInvalidStatus(t *testing.T) {
	handler := httpserver.NewHandler(&stubRegistrar{}, &stubResolver{}, discardLogger())

	fields := registerFields()
	fields["status"] = "granted"
	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, multipartRequest(t, fields, "abstract.pdf", []byte("doc")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRegisterUpstreamFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"wallet", fmt.Errorf("%w: keygen", interfaces.ErrWalletUnavailable), http.StatusBadGateway},
		{"anchor", fmt.Errorf("%w: status 500", interfaces.ErrAnchorUnavailable), http.StatusBadGateway},
		{"ledger", fmt.Errorf("%w: no receipt", interfaces.ErrLedgerUnavailable), http.StatusBadGateway},
		{"persistence", fmt.Errorf("tx confirmed but not recorded: %w", interfaces.ErrPersistenceFailed), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := httpserver.NewHandler(&stubRegistrar{err: tc.err}, &stubResolver{}, discardLogger())

			rec := httptest.NewRecorder()
			handler.HandleRegister(rec, multipartRequest(t, registerFields(), "abstract.pdf", []byte("doc")))

			assert.Equal(t, tc.want, rec.Code)
			var resp struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleCreateWallet(t *testing.T) {
	resolver := &stubResolver{identity: &interfaces.Identity{
		Email:      "a@x.com",
		Address:    "0x00000000000000000000000000000000000000aa",
		PrivateKey: "super-secret",
		PublicKey:  "pub",
	}}
	handler := httpserver.NewHandler(&stubRegistrar{}, resolver, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/patents/wallet", strings.NewReader(`{"email":"a@x.com"}`))
	rec := httptest.NewRecorder()
	handler.HandleCreateWallet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "0x00000000000000000000000000000000000000aa")
	assert.NotContains(t, rec.Body.String(), "super-secret", "private key material never leaves the server")
}

func TestHandleCreateWalletMissingEmail(t *testing.T) {
	handler := httpserver.NewHandler(&stubRegistrar{}, &stubResolver{}, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/patents/wallet", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.HandleCreateWallet(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

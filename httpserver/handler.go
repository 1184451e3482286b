package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gsignip/patent-attestation/interfaces"
)

// DefaultMaxUploadBytes bounds the in-memory size of a register request.
const DefaultMaxUploadBytes = 32 << 20 // 32 MiB

// Handler serves the registration and wallet endpoints.
type Handler struct {
	registrar      interfaces.Registrar
	resolver       interfaces.IdentityResolver
	maxUploadBytes int64
	log            *slog.Logger
}

// NewHandler creates a handler over the orchestrator and the key vault.
func NewHandler(registrar interfaces.Registrar, resolver interfaces.IdentityResolver, log *slog.Logger) *Handler {
	return &Handler{
		registrar:      registrar,
		resolver:       resolver,
		maxUploadBytes: DefaultMaxUploadBytes,
		log:            log,
	}
}

type registerResponse struct {
	Success bool                       `json:"success"`
	Error   string                     `json:"error,omitempty"`
	Result  *interfaces.RegisterResult `json:"result,omitempty"`
}

type walletResponse struct {
	Email     string `json:"email"`
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
}

// HandleRegister runs the full registration protocol for one multipart
// request.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return
	}

	status := int64(0)
	if raw := r.FormValue("status"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid status code: "+raw)
			return
		}
		status = parsed
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "missing document file")
		return
	}
	defer file.Close()

	document, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "read document: "+err.Error())
		return
	}

	req := &interfaces.RegisterRequest{
		Email:         r.FormValue("email"),
		ApplicationNo: r.FormValue("applicationNumber"),
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Document:      document,
		FileName:      header.Filename,
		Status:        interfaces.StatusCode(status),
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.registrar.RegisterApplication(r.Context(), req)
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, registerResponse{Success: true, Result: result})
}

// HandleCreateWallet pre-provisions a custodial wallet for a registrant.
// Private key material never leaves the server.
func (h *Handler) HandleCreateWallet(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	if email == "" {
		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			email = body.Email
		}
	}
	if email == "" {
		h.writeError(w, http.StatusBadRequest, "registrant email is required")
		return
	}

	identity, err := h.resolver.ResolveOrCreate(r.Context(), email)
	if err != nil {
		h.log.Error("Wallet creation failed", slog.String("email", email), "err", err)
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, walletResponse{
		Email:     identity.Email,
		Address:   identity.Address,
		PublicKey: identity.PublicKey,
	})
}

// statusForError distinguishes upstream-system failures from local ones so a
// human can decide whether to retry.
func statusForError(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrWalletUnavailable),
		errors.Is(err, interfaces.ErrAnchorUnavailable),
		errors.Is(err, interfaces.ErrLedgerUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, interfaces.ErrPersistenceFailed):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, registerResponse{Success: false, Error: msg})
}

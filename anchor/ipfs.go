package anchor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/gsignip/patent-attestation/interfaces"
)

// IPFSBackend implements interfaces.ContentAnchor against a self-hosted IPFS
// node's API, for deployments that do not use a hosted pinning service.
type IPFSBackend struct {
	shell      *shell.Shell
	apiAddr    string
	gatewayURL string
	log        *slog.Logger
}

// NewIPFSBackend creates an anchor backend connected to the IPFS API at
// apiAddr (host:port). Pinned documents are linked through gatewayURL.
func NewIPFSBackend(apiAddr, gatewayURL string, log *slog.Logger) *IPFSBackend {
	return &IPFSBackend{
		shell:      shell.NewShell(apiAddr),
		apiAddr:    apiAddr,
		gatewayURL: gatewayURL,
		log:        log,
	}
}

// Upload adds and pins the document on the IPFS node and returns the CID the
// node computed. The advisory file name is logged only; IPFS addresses
// content by hash.
func (b *IPFSBackend) Upload(ctx context.Context, data []byte, fileName string) (*interfaces.AnchoredDocument, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document payload", interfaces.ErrAnchorUploadFailed)
	}

	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable", slog.String("api", b.apiAddr))
		return nil, fmt.Errorf("%w: ipfs node %s not reachable", interfaces.ErrAnchorUploadFailed, b.apiAddr)
	}

	start := time.Now()
	cid, err := b.shell.Add(bytes.NewReader(data), shell.Pin(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrAnchorUploadFailed, err)
	}

	b.log.Debug("Document pinned on IPFS node",
		slog.String("cid", cid),
		slog.String("file", fileName),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return &interfaces.AnchoredDocument{
		CID:        cid,
		GatewayURL: fmt.Sprintf("%s/%s", b.gatewayURL, cid),
	}, nil
}

// Package notary fetches the signing key of a notary server from its
// discovery endpoint. The returned key is the sole trust input of the
// verification engine.
package notary

import (
	"context"
	"crypto/ecdsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	requestTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20 // 1MB
)

// InfoResponse is the notary discovery endpoint's response.
type InfoResponse struct {
	// Current version of notary-server
	Version string `json:"version"`
	// Public key of the notary signing key, PEM encoded
	PublicKey string `json:"publicKey"`
	// Current git commit hash of notary-server
	GitCommitHash string `json:"gitCommitHash"`
	// Current git commit timestamp of notary-server
	GitCommitTimestamp string `json:"gitCommitTimestamp"`
}

// Client resolves notary signing keys over HTTPS.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a key resolver client. Certificate validation on this
// transport is permissive, matching the reference notary deployment;
// production relying parties should pin or validate the notary endpoint.
func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		logger: logger,
	}
}

// ResolveKey fetches and parses the notary's public signing key from
// https://{host}:{port}/info. A malformed or absent PEM key is a fatal
// resolution error.
func (c *Client) ResolveKey(ctx context.Context, host string, port int) (*ecdsa.PublicKey, error) {
	url := fmt.Sprintf("https://%s:%d/info", host, port)
	c.logger.Debug("resolving notary key", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build info request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notary info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notary info request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read info response: %w", err)
	}

	var info InfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode info response: %w", err)
	}

	key, err := ParsePublicKeyPEM(info.PublicKey)
	if err != nil {
		return nil, err
	}

	c.logger.Info("resolved notary key",
		zap.String("notary_version", info.Version),
		zap.String("git_commit", info.GitCommitHash))
	return key, nil
}

// ParsePublicKeyPEM decodes a PEM-encoded PKIX elliptic-curve public key.
func ParsePublicKeyPEM(pemData string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("notary public key is not valid PEM")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cannot parse notary public key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("notary public key is not an EC key (got %T)", parsed)
	}
	return key, nil
}

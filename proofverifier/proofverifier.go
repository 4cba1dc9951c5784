// Package proofverifier orchestrates verification of a notarized TLS
// session proof read from disk: notary key resolution, session and
// substrings verification, and reconstruction of the redacted
// transcripts.
package proofverifier

import (
	"context"
	"crypto/ecdsa"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tlsn-verify/commitment"
	"tlsn-verify/proof"
	"tlsn-verify/shared"
)

// KeyResolver supplies the notary's public signing key. The notary HTTPS
// client implements it; tests substitute a fixed key.
type KeyResolver interface {
	ResolveKey(ctx context.Context, host string, port int) (*ecdsa.PublicKey, error)
}

// Config selects the proof artifact and notary, plus optional overrides
// for trust anchors, commitment scheme and the redaction sentinel.
type Config struct {
	ProofPath  string
	NotaryHost string
	NotaryPort int

	Resolver KeyResolver
	Policy   proof.CertPolicy  // nil: system roots
	Opener   commitment.Opener // nil: merkle scheme
	Sentinel byte              // 0: 'X'
	Logger   *shared.Logger    // nil: no logging
}

// Report is the outcome of a successful verification.
type Report struct {
	ID         string
	ServerName string
	Time       time.Time
	Sent       *proof.RedactedTranscript
	Recv       *proof.RedactedTranscript
}

// Verify runs the full pipeline. Each step's failure aborts the pipeline
// and is returned as that step's error; nothing is retried.
func Verify(ctx context.Context, cfg Config) (*Report, error) {
	reportID := uuid.New().String()
	logger := zap.NewNop()
	if cfg.Logger != nil {
		logger = cfg.Logger.WithReport(reportID)
	}

	notaryKey, err := cfg.Resolver.ResolveKey(ctx, cfg.NotaryHost, cfg.NotaryPort)
	if err != nil {
		return nil, &proof.VerificationError{
			Kind:    proof.KindKeyResolutionFailed,
			Message: "cannot resolve notary key",
			Err:     err,
		}
	}

	data, err := os.ReadFile(cfg.ProofPath)
	if err != nil {
		return nil, &proof.VerificationError{
			Kind:    proof.KindMalformedProof,
			Message: "cannot read proof artifact",
			Err:     err,
		}
	}

	tlsProof, err := proof.ParseTlsProof(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("proof artifact parsed",
		zap.String("server_name", tlsProof.Session.SessionInfo.ServerName),
		zap.Int("openings", len(tlsProof.Substrings.Openings)))

	report, err := VerifyProof(tlsProof, notaryKey, cfg)
	if err != nil {
		return nil, err
	}
	report.ID = reportID

	logger.Info("proof verified",
		zap.String("server_name", report.ServerName),
		zap.Time("attested_at", report.Time))
	return report, nil
}

// VerifyProof verifies an already-parsed proof against a resolved notary
// key. It performs no I/O.
func VerifyProof(tlsProof *proof.TlsProof, notaryKey *ecdsa.PublicKey, cfg Config) (*Report, error) {
	if err := tlsProof.Session.Verify(notaryKey, cfg.Policy); err != nil {
		return nil, err
	}

	openings, err := tlsProof.Substrings.Verify(&tlsProof.Session.Header, cfg.Opener)
	if err != nil {
		return nil, err
	}

	sentinel := cfg.Sentinel
	if sentinel == 0 {
		sentinel = proof.DefaultSentinel
	}

	header := &tlsProof.Session.Header
	return &Report{
		ServerName: tlsProof.Session.SessionInfo.ServerName,
		Time:       time.Unix(int64(header.Time), 0).UTC(),
		Sent:       proof.Reconstruct(header.SentLen, openings, proof.DirectionSent, sentinel),
		Recv:       proof.Reconstruct(header.RecvLen, openings, proof.DirectionReceived, sentinel),
	}, nil
}

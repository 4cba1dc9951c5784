package proof

import (
	"errors"
	"fmt"
)

// ErrorKind classifies verification failures. Every failure is terminal
// for the verification call; kinds exist so callers can distinguish a
// transport problem (key resolution) from a cryptographic rejection.
type ErrorKind int

const (
	KindKeyResolutionFailed ErrorKind = iota
	KindMalformedProof
	KindInvalidSignature
	KindInvalidCertificateChain
	KindHostnameMismatch
	KindCommitmentMismatch
	KindOverlappingRanges
	KindRangeOutOfBounds
)

func (k ErrorKind) String() string {
	switch k {
	case KindKeyResolutionFailed:
		return "key_resolution_failed"
	case KindMalformedProof:
		return "malformed_proof"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindInvalidCertificateChain:
		return "invalid_certificate_chain"
	case KindHostnameMismatch:
		return "hostname_mismatch"
	case KindCommitmentMismatch:
		return "commitment_mismatch"
	case KindOverlappingRanges:
		return "overlapping_ranges"
	case KindRangeOutOfBounds:
		return "range_out_of_bounds"
	default:
		return "unknown"
	}
}

// VerificationError is a structured verification failure that can be
// propagated to relying parties without leaking signature or commitment
// material.
type VerificationError struct {
	Kind    ErrorKind
	Message string
	Err     error // underlying error if any
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string) *VerificationError {
	return &VerificationError{Kind: kind, Message: message}
}

func wrapError(kind ErrorKind, message string, err error) *VerificationError {
	return &VerificationError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the ErrorKind from err. The second return is false when
// err is not a VerificationError.
func KindOf(err error) (ErrorKind, bool) {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Kind, true
	}
	return 0, false
}

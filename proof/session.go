package proof

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Verify checks the session proof against the notary's public key: the
// signature over the canonical header serialization, the binding of the
// session metadata to the signed header, and the server identity against
// the handshake certificate chain. Chain validity is evaluated at the
// attested time, not at verification time, so proofs stay verifiable after
// certificate expiry.
func (p *SessionProof) Verify(notaryKey *ecdsa.PublicKey, policy CertPolicy) error {
	if err := p.Header.validate(); err != nil {
		return wrapError(KindMalformedProof, "invalid session header", err)
	}
	if err := p.verifySignature(notaryKey); err != nil {
		return err
	}

	// The session info is only trusted once its commitment in the signed
	// header checks out.
	expected := p.SessionInfo.HandshakeCommitment(p.Header.Nonce)
	if !constantTimeEqual(expected, p.Header.HandshakeCommitment) {
		return newError(KindInvalidCertificateChain, "handshake data does not match attested commitment")
	}

	return verifyIdentity(&p.SessionInfo, &p.Header, policy)
}

// verifySignature validates the notary signature over Header.Bytes().
func (p *SessionProof) verifySignature(notaryKey *ecdsa.PublicKey) error {
	if notaryKey == nil {
		return newError(KindInvalidSignature, "no notary key")
	}
	headerBytes := p.Header.Bytes()

	switch p.Signature.Algorithm {
	case AlgorithmECDSAP256:
		digest := sha256.Sum256(headerBytes)
		if !ecdsa.VerifyASN1(notaryKey, digest[:], p.Signature.Data) {
			return newError(KindInvalidSignature, "session header signature does not verify")
		}
		return nil

	case AlgorithmSecp256k1Eth:
		return p.verifyEthSignature(headerBytes, notaryKey)

	default:
		return newError(KindInvalidSignature, fmt.Sprintf("unsupported signature algorithm %q", p.Signature.Algorithm))
	}
}

// verifyEthSignature checks a 65-byte recoverable secp256k1 signature by
// recovering the signer and comparing addresses.
func (p *SessionProof) verifyEthSignature(headerBytes []byte, notaryKey *ecdsa.PublicKey) error {
	if len(p.Signature.Data) != 65 {
		return newError(KindInvalidSignature, "invalid signature length")
	}
	hash := accounts.TextHash(headerBytes)
	recovered, err := ethcrypto.SigToPub(hash, p.Signature.Data)
	if err != nil {
		return wrapError(KindInvalidSignature, "cannot recover signer", err)
	}
	if ethcrypto.PubkeyToAddress(*recovered) != ethcrypto.PubkeyToAddress(*notaryKey) {
		return newError(KindInvalidSignature, "session header signature does not verify")
	}
	return nil
}

func constantTimeEqual(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}

// Package proof implements verification of notarized TLS session proofs:
// the notary's signature over the session header, the server identity
// against the handshake certificate chain at attested time, commitment
// openings for the disclosed transcript ranges, and reconstruction of the
// redacted transcripts.
package proof

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Direction identifies which half of the bidirectional transcript a range
// belongs to.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

func (d Direction) valid() bool {
	return d == DirectionSent || d == DirectionReceived
}

// wire returns the single byte bound into commitment leaf digests.
func (d Direction) wire() uint8 {
	if d == DirectionReceived {
		return 1
	}
	return 0
}

// Signature algorithms accepted for the notary's session signature.
const (
	AlgorithmECDSAP256    = "ecdsa-p256"
	AlgorithmSecp256k1Eth = "secp256k1-eth"
)

const headerVersion = 1

// SessionHeader is the notary's succinct commitment to one TLS session:
// the merkle root over the per-range transcript commitments, the total
// transcript lengths per direction, the attestation time, and the
// commitment binding the handshake metadata. It is signed as a whole, so
// every field - including the lengths - is authenticated by the notary,
// not asserted by the prover.
type SessionHeader struct {
	Version             uint8  `json:"version"`
	MerkleRoot          []byte `json:"merkle_root"`
	SentLen             uint32 `json:"sent_len"`
	RecvLen             uint32 `json:"recv_len"`
	Time                uint64 `json:"time"`
	HandshakeCommitment []byte `json:"handshake_commitment"`
	Nonce               []byte `json:"nonce"`
}

// Bytes is the canonical serialization signed by the notary: a fixed-order
// big-endian concatenation of all header fields.
func (h *SessionHeader) Bytes() []byte {
	buf := make([]byte, 0, 1+len(h.MerkleRoot)+4+4+8+len(h.HandshakeCommitment)+len(h.Nonce))
	buf = append(buf, h.Version)
	buf = append(buf, h.MerkleRoot...)
	buf = binary.BigEndian.AppendUint32(buf, h.SentLen)
	buf = binary.BigEndian.AppendUint32(buf, h.RecvLen)
	buf = binary.BigEndian.AppendUint64(buf, h.Time)
	buf = append(buf, h.HandshakeCommitment...)
	buf = append(buf, h.Nonce...)
	return buf
}

// lenOf returns the committed transcript length for a direction.
func (h *SessionHeader) lenOf(d Direction) uint32 {
	if d == DirectionReceived {
		return h.RecvLen
	}
	return h.SentLen
}

// SessionSignature is the notary's detached signature over
// SessionHeader.Bytes().
type SessionSignature struct {
	Algorithm string `json:"algorithm"`
	Data      []byte `json:"data"`
}

// HandshakeData is the TLS handshake material recorded during the session:
// the server certificate chain and the handshake randoms.
type HandshakeData struct {
	CertChain    [][]byte `json:"cert_chain"` // DER, PEM, or PKCS7, leaf first
	ClientRandom []byte   `json:"client_random"`
	ServerRandom []byte   `json:"server_random"`
}

// SessionInfo is the session metadata asserted by the prover. It is bound
// to the signed header through the handshake commitment, so a prover
// cannot swap in a different server name or certificate chain after the
// fact.
type SessionInfo struct {
	ServerName string        `json:"server_name"`
	Handshake  HandshakeData `json:"handshake"`
}

// Bytes is the canonical serialization hashed into the handshake
// commitment.
func (s *SessionInfo) Bytes() []byte {
	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s.ServerName)))
	buf = append(buf, s.ServerName...)
	buf = append(buf, s.Handshake.ClientRandom...)
	buf = append(buf, s.Handshake.ServerRandom...)
	for _, cert := range s.Handshake.CertChain {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(cert)))
		buf = append(buf, cert...)
	}
	return buf
}

// HandshakeCommitment computes the commitment over the session info and
// the header nonce.
func (s *SessionInfo) HandshakeCommitment(nonce []byte) []byte {
	sum := blake2b.Sum256(append(s.Bytes(), nonce...))
	return sum[:]
}

// SessionProof establishes the identity of the server and the commitments
// to the TLS transcript. The signature must verify over the header before
// any other field is trusted.
type SessionProof struct {
	Header      SessionHeader    `json:"header"`
	Signature   SessionSignature `json:"signature"`
	SessionInfo SessionInfo      `json:"session_info"`
}

// Opening discloses one contiguous transcript range together with the data
// needed to check it against the attested commitment: the blinder bound
// into the committed leaf and the merkle authentication path for that
// leaf.
type Opening struct {
	Direction Direction `json:"direction"`
	Start     uint32    `json:"start"`
	Length    uint32    `json:"length"`
	Data      []byte    `json:"data"`
	Blinder   []byte    `json:"blinder"`
	LeafIndex uint64    `json:"leaf_index"`
	Path      [][]byte  `json:"path"`
}

// End returns the exclusive end offset of the opened range.
func (o *Opening) End() uint32 {
	return o.Start + o.Length
}

// SubstringsProof proves select portions of the transcript while redacting
// anything the prover chose not to disclose.
type SubstringsProof struct {
	Openings []Opening `json:"openings"`
}

// TlsProof is the top-level artifact produced by the prover.
type TlsProof struct {
	Session    SessionProof    `json:"session"`
	Substrings SubstringsProof `json:"substrings"`
}

func (h *SessionHeader) validate() error {
	if h.Version != headerVersion {
		return fmt.Errorf("unsupported header version %d", h.Version)
	}
	if len(h.MerkleRoot) != 32 || len(h.HandshakeCommitment) != 32 || len(h.Nonce) != 32 {
		return fmt.Errorf("header field with unexpected size")
	}
	return nil
}

package proof

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"tlsn-verify/commitment"
)

// Test helpers for constructing notarized sessions. Production proofs come
// from an external prover; these builders exist so the verification paths
// can be exercised end to end.

// TestNotary holds signing keys for fixture sessions.
type TestNotary struct {
	Key    *ecdsa.PrivateKey // P-256
	EthKey *ecdsa.PrivateKey // secp256k1
}

// NewTestNotary generates fresh notary signing keys.
func NewTestNotary() (*TestNotary, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	ethKey, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &TestNotary{Key: key, EthKey: ethKey}, nil
}

// PublicKey returns the key a verifier would resolve for the given
// signature algorithm.
func (n *TestNotary) PublicKey(algorithm string) *ecdsa.PublicKey {
	if algorithm == AlgorithmSecp256k1Eth {
		return &n.EthKey.PublicKey
	}
	return &n.Key.PublicKey
}

// SignHeader signs the canonical header serialization.
func (n *TestNotary) SignHeader(h *SessionHeader, algorithm string) (SessionSignature, error) {
	headerBytes := h.Bytes()
	switch algorithm {
	case AlgorithmECDSAP256:
		digest := sha256.Sum256(headerBytes)
		sig, err := ecdsa.SignASN1(rand.Reader, n.Key, digest[:])
		if err != nil {
			return SessionSignature{}, err
		}
		return SessionSignature{Algorithm: algorithm, Data: sig}, nil
	case AlgorithmSecp256k1Eth:
		sig, err := ethcrypto.Sign(accounts.TextHash(headerBytes), n.EthKey)
		if err != nil {
			return SessionSignature{}, err
		}
		return SessionSignature{Algorithm: algorithm, Data: sig}, nil
	default:
		return SessionSignature{}, fmt.Errorf("unsupported algorithm %q", algorithm)
	}
}

// TestCertChain is a generated CA and leaf certificate for one server
// name, plus the root pool that trusts it.
type TestCertChain struct {
	Roots    *x509.CertPool
	ChainDER [][]byte // leaf first
}

// NewTestCertChain generates a CA and a leaf certificate valid for
// serverName within the given window.
func NewTestCertChain(serverName string, notBefore, notAfter time.Time) (*TestCertChain, error) {
	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Fixture Root CA"},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		return nil, err
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		return nil, err
	}

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: serverName},
		DNSNames:     []string{serverName},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, caCert, &leafKey.PublicKey, caKey)
	if err != nil {
		return nil, err
	}

	roots := x509.NewCertPool()
	roots.AddCert(caCert)
	return &TestCertChain{Roots: roots, ChainDER: [][]byte{leafDER, caDER}}, nil
}

// TestRange is one transcript range committed during a fixture session
// and disclosed in its proof.
type TestRange struct {
	Direction Direction
	Start     uint32
	Data      []byte
}

// TestSessionParams describes a fixture session to notarize.
type TestSessionParams struct {
	ServerName string
	Time       uint64
	SentLen    uint32
	RecvLen    uint32
	Ranges     []TestRange
	Algorithm  string // defaults to ecdsa-p256
}

// NewTestSession builds a complete notarized TlsProof: commits the given
// ranges into a merkle tree, signs the session header, and produces
// openings for every range.
func NewTestSession(n *TestNotary, certs *TestCertChain, params TestSessionParams) (*TlsProof, error) {
	algorithm := params.Algorithm
	if algorithm == "" {
		algorithm = AlgorithmECDSAP256
	}

	openings := make([]Opening, len(params.Ranges))
	leaves := make([][]byte, 0, len(params.Ranges))
	for i, r := range params.Ranges {
		blinder := make([]byte, commitment.BlinderSize)
		if _, err := rand.Read(blinder); err != nil {
			return nil, err
		}
		data := r.Data
		if data == nil {
			data = []byte{}
		}
		openings[i] = Opening{
			Direction: r.Direction,
			Start:     r.Start,
			Length:    uint32(len(data)),
			Data:      data,
			Blinder:   blinder,
			LeafIndex: uint64(i),
		}
		leaves = append(leaves, commitment.LeafDigest(r.Direction.wire(), openings[i].Start, openings[i].Length, blinder, data))
	}

	var root []byte
	if len(leaves) > 0 {
		tree, err := commitment.NewTree(leaves)
		if err != nil {
			return nil, err
		}
		root = tree.Root()
		for i := range openings {
			path, err := tree.AuthPath(openings[i].LeafIndex)
			if err != nil {
				return nil, err
			}
			openings[i].Path = path
		}
	} else {
		// nothing disclosed; any root will do since no opening references it
		root = make([]byte, commitment.NodeSize)
		if _, err := rand.Read(root); err != nil {
			return nil, err
		}
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	clientRandom := make([]byte, 32)
	serverRandom := make([]byte, 32)
	if _, err := rand.Read(clientRandom); err != nil {
		return nil, err
	}
	if _, err := rand.Read(serverRandom); err != nil {
		return nil, err
	}

	info := SessionInfo{
		ServerName: params.ServerName,
		Handshake: HandshakeData{
			CertChain:    certs.ChainDER,
			ClientRandom: clientRandom,
			ServerRandom: serverRandom,
		},
	}

	header := SessionHeader{
		Version:             headerVersion,
		MerkleRoot:          root,
		SentLen:             params.SentLen,
		RecvLen:             params.RecvLen,
		Time:                params.Time,
		HandshakeCommitment: info.HandshakeCommitment(nonce),
		Nonce:               nonce,
	}

	sig, err := n.SignHeader(&header, algorithm)
	if err != nil {
		return nil, err
	}

	return &TlsProof{
		Session: SessionProof{
			Header:      header,
			Signature:   sig,
			SessionInfo: info,
		},
		Substrings: SubstringsProof{Openings: openings},
	}, nil
}

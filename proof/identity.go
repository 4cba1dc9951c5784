package proof

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"go.mozilla.org/pkcs7"
)

// CertPolicy validates a server certificate chain for a hostname at a
// given point in time. Relying parties can substitute custom trust
// anchors by providing their own policy.
type CertPolicy interface {
	Validate(chain []*x509.Certificate, serverName string, at time.Time) error
}

// DefaultCertPolicy validates against a root pool (the system pool when
// Roots is nil) with standard hostname matching.
type DefaultCertPolicy struct {
	Roots *x509.CertPool
}

func (p *DefaultCertPolicy) Validate(chain []*x509.Certificate, serverName string, at time.Time) error {
	if len(chain) == 0 {
		return newError(KindInvalidCertificateChain, "no certificates in handshake data")
	}

	leaf := chain[0]

	// Server certificate must be valid for server authentication.
	if len(leaf.ExtKeyUsage) > 0 {
		validUsage := false
		for _, usage := range leaf.ExtKeyUsage {
			if usage == x509.ExtKeyUsageServerAuth || usage == x509.ExtKeyUsageAny {
				validUsage = true
				break
			}
		}
		if !validUsage {
			return newError(KindInvalidCertificateChain, "leaf certificate not valid for server authentication")
		}
	}

	roots := p.Roots
	if roots == nil {
		systemRoots, err := x509.SystemCertPool()
		if err != nil {
			return wrapError(KindInvalidCertificateChain, "failed to load system cert pool", err)
		}
		roots = systemRoots
	}

	intermediates := x509.NewCertPool()
	for _, cert := range chain[1:] {
		intermediates.AddCert(cert)
	}

	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		DNSName:       serverName, // RFC 6125 hostname verification
		CurrentTime:   at,
	}

	if _, err := leaf.Verify(opts); err != nil {
		var hostnameErr x509.HostnameError
		if errors.As(err, &hostnameErr) {
			return wrapError(KindHostnameMismatch, fmt.Sprintf("certificate not valid for %s", serverName), err)
		}
		return wrapError(KindInvalidCertificateChain, fmt.Sprintf("certificate verification failed for %s", serverName), err)
	}
	return nil
}

// verifyIdentity parses the handshake chain and validates it at the
// header's attested time.
func verifyIdentity(info *SessionInfo, header *SessionHeader, policy CertPolicy) error {
	if policy == nil {
		policy = &DefaultCertPolicy{}
	}
	if info.ServerName == "" {
		return newError(KindInvalidCertificateChain, "no server name in session info")
	}

	var chain []*x509.Certificate
	for i, raw := range info.Handshake.CertChain {
		certs, err := parseCertificateData(raw)
		if err != nil {
			return wrapError(KindInvalidCertificateChain, fmt.Sprintf("cannot parse certificate %d", i), err)
		}
		chain = append(chain, certs...)
	}

	at := time.Unix(int64(header.Time), 0).UTC()
	return policy.Validate(chain, info.ServerName, at)
}

// parseCertificateData parses certificate data in DER (most common),
// PEM, or PKCS7 bundle format. PKCS7 bundles may contain multiple
// certificates.
func parseCertificateData(data []byte) ([]*x509.Certificate, error) {
	cert, err := x509.ParseCertificate(data)
	if err == nil {
		return []*x509.Certificate{cert}, nil
	}

	block, _ := pem.Decode(data)
	if block != nil && block.Type == "CERTIFICATE" {
		cert, err = x509.ParseCertificate(block.Bytes)
		if err == nil {
			return []*x509.Certificate{cert}, nil
		}
	}

	p7, err := pkcs7.Parse(data)
	if err == nil && len(p7.Certificates) > 0 {
		return p7.Certificates, nil
	}

	return nil, fmt.Errorf("unable to parse certificate (tried DER, PEM, and PKCS7 formats)")
}

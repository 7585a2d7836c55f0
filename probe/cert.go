package probe

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

type CertificateInfo struct {
	Valid       bool      `json:"valid"`
	ValidFrom   time.Time `json:"validFrom,omitempty"`
	ValidTo     time.Time `json:"validTo,omitempty"`
	Issuer      string    `json:"issuer,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	Protocol    string    `json:"protocol,omitempty"`
	Bits        int       `json:"bits,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// CertInspector reads the leaf certificate a site presents. It is called on
// demand and never from the probe loop.
type CertInspector struct {
	timeout time.Duration
	// roots overrides the system pool; nil uses the system pool
	roots *x509.CertPool
	now   func() time.Time
}

func NewCertInspector(timeout time.Duration) *CertInspector {
	return &CertInspector{timeout: timeout, now: time.Now}
}

// Inspect returns Valid=false without an error for non-https URLs. A
// certificate that fails verification is still described, with Valid=false
// and the verification error in Error.
func (c *CertInspector) Inspect(ctx context.Context, rawURL string) (CertificateInfo, error) {
	u, err := url.Parse(NormalizeURL(rawURL))
	if err != nil {
		return CertificateInfo{}, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "https" {
		return CertificateInfo{Valid: false}, nil
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "443"
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	dialer := &tls.Dialer{
		Config: &tls.Config{
			ServerName: host,
			// verification is done below so an invalid chain can still be described
			InsecureSkipVerify: true,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return CertificateInfo{}, fmt.Errorf("failed to dial %s: %w", host, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return CertificateInfo{}, fmt.Errorf("no certificate presented by %s", host)
	}

	leaf := state.PeerCertificates[0]
	sum := sha256.Sum256(leaf.Raw)

	info := CertificateInfo{
		ValidFrom:   leaf.NotBefore,
		ValidTo:     leaf.NotAfter,
		Issuer:      leaf.Issuer.String(),
		Subject:     leaf.Subject.String(),
		Protocol:    tls.VersionName(state.Version),
		Bits:        keyBits(leaf),
		Fingerprint: formatFingerprint(sum[:]),
	}

	intermediates := x509.NewCertPool()
	for _, cert := range state.PeerCertificates[1:] {
		intermediates.AddCert(cert)
	}

	_, verifyErr := leaf.Verify(x509.VerifyOptions{
		DNSName:       host,
		Roots:         c.roots,
		Intermediates: intermediates,
		CurrentTime:   c.now(),
	})
	if verifyErr != nil {
		info.Error = verifyErr.Error()
	} else {
		info.Valid = true
	}

	return info, nil
}

func keyBits(cert *x509.Certificate) int {
	switch key := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return key.N.BitLen()
	case *ecdsa.PublicKey:
		return key.Curve.Params().BitSize
	}
	return 0
}

func formatFingerprint(sum []byte) string {
	h := strings.ToUpper(hex.EncodeToString(sum))
	parts := make([]string, 0, len(h)/2)
	for i := 0; i < len(h); i += 2 {
		parts = append(parts, h[i:i+2])
	}
	return strings.Join(parts, ":")
}

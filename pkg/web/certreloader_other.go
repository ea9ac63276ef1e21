//go:build !unix

package web

import (
	"context"
	"crypto/tls"
)

// CertReloader serves a TLS key pair. Reloading needs SIGHUP, so the pair is
// loaded once on this platform.
type CertReloader struct {
	cert *tls.Certificate
}

// NewCertReloader loads the key pair.
func NewCertReloader(_ context.Context, certPath, keyPath string) (*CertReloader, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, err
	}
	return &CertReloader{cert: &cert}, nil
}

// GetCertificateFunc returns a function that can be used with tls.Config.GetCertificate.
func (cr *CertReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		return cr.cert, nil
	}
}

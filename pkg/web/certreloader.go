//go:build unix

package web

import (
	"context"
	"crypto/tls"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
)

// CertReloader serves a TLS key pair and reloads it from disk on SIGHUP.
type CertReloader struct {
	mu       sync.RWMutex
	cert     *tls.Certificate
	certPath string
	keyPath  string
}

// NewCertReloader loads the key pair and reloads it on every SIGHUP until ctx
// is done. A failed reload keeps the previous certificate.
func NewCertReloader(ctx context.Context, certPath, keyPath string) (*CertReloader, error) {
	cr := &CertReloader{
		certPath: certPath,
		keyPath:  keyPath,
	}
	if err := cr.reload(); err != nil {
		return nil, err
	}

	logger := log.FromContext(ctx).WithPrefix("http.tls")
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigs:
				if err := cr.reload(); err != nil {
					logger.Error("failed to reload certificate", "cert", certPath, "err", err)
					continue
				}
				logger.Info("certificate reloaded", "cert", certPath)
			}
		}
	}()

	return cr, nil
}

func (cr *CertReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(cr.certPath, cr.keyPath)
	if err != nil {
		return err
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.cert = &cert
	return nil
}

// GetCertificateFunc returns a function that can be used with tls.Config.GetCertificate.
func (cr *CertReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		cr.mu.RLock()
		defer cr.mu.RUnlock()
		return cr.cert, nil
	}
}

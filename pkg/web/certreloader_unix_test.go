//go:build unix

package web

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
)

func writeTestCert(t *testing.T, certPath, keyPath, cn string) {
	t.Helper()
	is := is.New(t)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	is.NoErr(err)

	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	is.NoErr(err)

	is.NoErr(os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	is.NoErr(os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0o600))
}

func TestCertReloader(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	writeTestCert(t, certPath, keyPath, "cert-v1")

	ctx, cancel := context.WithCancel(log.WithContext(context.TODO(), log.New(io.Discard)))
	defer cancel()
	cr, err := NewCertReloader(ctx, certPath, keyPath)
	is.NoErr(err)

	getCert := cr.GetCertificateFunc()
	cert1, err := getCert(nil)
	is.NoErr(err)

	writeTestCert(t, certPath, keyPath, "cert-v2")
	is.NoErr(syscall.Kill(os.Getpid(), syscall.SIGHUP))

	var cert2 interface{}
	for i := 0; i < 50; i++ {
		time.Sleep(10 * time.Millisecond)
		c, err := getCert(nil)
		is.NoErr(err)
		if c != cert1 {
			cert2 = c
			break
		}
	}
	is.True(cert2 != nil) // certificate reloaded after SIGHUP
}

func TestCertReloaderMissingFiles(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	_, err := NewCertReloader(context.TODO(), filepath.Join(dir, "cert.pem"), filepath.Join(dir, "key.pem"))
	is.True(err != nil)
}

/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package transport

import (
	"crypto/x509"
	"math/big"
	"sync"

	"github.com/anyks/netcore/certificates"
	liberr "github.com/anyks/netcore/errors"
)

// engine is the concrete Engine: a thin adapter from certificates.TLSConfig
// onto crypto/tls for TCP and pion/dtls/v2 for UDP, giving both roles the
// same root/client CA pools, cipher suite and curve selection, and TLS
// version bounds.
type engine struct {
	cert certificates.TLSConfig

	mu      sync.RWMutex
	revoked map[string]struct{}
}

// New creates an Engine from an already-configured certificate bundle. cert
// is consulted fresh on every Wrap* call, so a pair added to it (see Watch)
// is visible to the next connection without recreating the Engine.
func New(cert certificates.TLSConfig) Engine {
	return &engine{cert: cert}
}

func (e *engine) SetCRL(der ...[]byte) liberr.Error {
	revoked := make(map[string]struct{})

	for _, d := range der {
		crl, err := x509.ParseRevocationList(d)
		if err != nil {
			return ErrorParamsInvalid.Error(err)
		}
		for _, rc := range crl.RevokedCertificateEntries {
			revoked[rc.SerialNumber.String()] = struct{}{}
		}
	}

	e.mu.Lock()
	e.revoked = revoked
	e.mu.Unlock()
	return nil
}

func (e *engine) VerifyCRL(cert *x509.Certificate) liberr.Error {
	if cert == nil {
		return nil
	}

	e.mu.RLock()
	revoked := e.revoked
	e.mu.RUnlock()

	if revoked == nil {
		return nil
	}
	if _, ok := revoked[serialKey(cert.SerialNumber)]; ok {
		return ErrorRevoked.Error(nil)
	}
	return nil
}

func serialKey(n *big.Int) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func buildVerifyPeerCertificate(roots *x509.CertPool, host string, crl func(*x509.Certificate) liberr.Error) func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return ErrorVerifyHostname.Error(nil)
		}

		certs := make([]*x509.Certificate, len(rawCerts))
		for i, raw := range rawCerts {
			c, err := x509.ParseCertificate(raw)
			if err != nil {
				return ErrorVerifyHostname.Error(err)
			}
			certs[i] = c
		}

		inter := x509.NewCertPool()
		for _, c := range certs[1:] {
			inter.AddCert(c)
		}

		if _, err := certs[0].Verify(x509.VerifyOptions{Roots: roots, Intermediates: inter}); err != nil {
			return ErrorVerifyHostname.Error(err)
		}

		if host != "" && !verifyHostnameInCert(certs[0], host) {
			return ErrorVerifyHostname.Error(nil)
		}

		if crl != nil {
			if e := crl(certs[0]); e != nil {
				return e
			}
		}
		return nil
	}
}

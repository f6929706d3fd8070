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

// Package transport wraps a reactor-managed descriptor with a TLS 1.2/1.3 or
// DTLS 1.2 session, negotiates an application protocol over ALPN, and
// presents the same read/write/blocking/cork/nodelay/timeout/buffer contract
// the socket package exposes for plain descriptors -- so a caller can swap a
// Context in wherever it held a raw fd without touching its I/O loop.
package transport

import (
	"context"
	"crypto/x509"
	"net"

	liberr "github.com/anyks/netcore/errors"
	"github.com/anyks/netcore/socket"
)

// Proto is an application protocol negotiable over ALPN.
type Proto uint8

const (
	ProtoNone Proto = iota
	ProtoHTTP1
	ProtoHTTP11
	ProtoSPDY1
	ProtoHTTP2
	ProtoHTTP3
)

func (p Proto) String() string {
	switch p {
	case ProtoHTTP1:
		return "http/1"
	case ProtoHTTP11:
		return "http/1.1"
	case ProtoSPDY1:
		return "spdy/1"
	case ProtoHTTP2:
		return "h2"
	case ProtoHTTP3:
		return "h3"
	default:
		return ""
	}
}

// Role distinguishes how a Context came into being, since that governs which
// handshake WaitHandshake drives.
type Role uint8

const (
	RoleServer Role = iota
	RoleServerListenDTLS
	RoleClient
)

// Status mirrors a Context's address-level connectivity, independent of the
// TLS/DTLS session state layered on top of it.
type Status uint8

const (
	StatusConnected Status = iota
	StatusDisconnected
)

// Context owns either a plain or TLS/DTLS-wrapped descriptor and presents a
// uniform I/O contract over it regardless of which. Every method is safe
// only from the reactor owner goroutine driving the underlying descriptor.
type Context interface {
	// WaitHandshake advances the TLS handshake, which may take several
	// rounds, and returns true once it has completed. A DTLS handshake,
	// including the listen-side stateless cookie exchange, completes inside
	// Attach, so on a DTLS Context this only records the negotiated
	// protocol, and a listening DTLS Context reports true at once.
	WaitHandshake() (bool, liberr.Error)

	// Read and Write return the number of bytes transferred, 0 on an
	// orderly peer close, or -1 when the call would block and must be
	// retried once the descriptor is next readable/writable.
	Read(buf []byte) (int, liberr.Error)
	Write(buf []byte) (int, liberr.Error)

	SetBlocking(on bool) liberr.Error
	SetCork(on bool) liberr.Error
	SetNodelay(on bool) liberr.Error
	SetTimeout(side socket.Side, ms int) liberr.Error
	SetBuffer(readBytes, writeBytes int) liberr.Error
	GetBuffer(side socket.Side) (int, liberr.Error)
	GetPending(side socket.Side) (int, liberr.Error)

	IsEncrypted() bool
	SetEncrypted(on bool)

	SetProto(p Proto)
	NegotiatedProto() Proto

	Status() Status
	Close() error
}

// Engine creates Context instances wired to a shared certificate/cipher
// configuration (a trust directory plus cipher and curve selection,
// carried on a certificates.TLSConfig).
type Engine interface {
	// WrapServer initializes TLS server-role state for an already-accepted
	// TCP connection.
	WrapServer(conn net.Conn, proto Proto) (Context, liberr.Error)

	// WrapServerForListen initializes a DTLS listening context bound to
	// addr; Contexts for individual peers are produced by Attach once the
	// stateless cookie exchange admits them.
	WrapServerForListen(ctx context.Context, addr string) (Context, liberr.Error)

	// WrapClient initializes TLS client-role state over a TCP connection,
	// verifying the peer certificate against sniHost. There is no DTLS
	// client role.
	WrapClient(conn net.Conn, sniHost string, proto Proto) (Context, liberr.Error)

	// Attach moves a freshly admitted peer of a DTLS listening Context
	// into its own Context, leaving the listening Context reusable.
	Attach(listening Context) (Context, liberr.Error)

	// SetCRL replaces the certificate revocation list consulted after chain
	// validation succeeds. der is one or more DER-encoded CRLs; passing none
	// clears the list.
	SetCRL(der ...[]byte) liberr.Error

	// VerifyCRL reports whether cert's serial number appears on the current
	// revocation list.
	VerifyCRL(cert *x509.Certificate) liberr.Error

	// Watch starts watching keyFile and crtFile for changes and appends the
	// certificate pair read from disk to the underlying
	// certificates.TLSConfig whenever either one is written, until ctx is
	// done. Pairs loaded earlier stay in the bundle.
	Watch(ctx context.Context, keyFile, crtFile string) liberr.Error
}

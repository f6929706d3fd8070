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
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"net"
	"strconv"
	"sync"
)

// cookieSecret is the process-wide 16-byte HMAC key backing DTLS listen-side
// address validation. It is minted once, lazily, from the runtime's CSPRNG.
var (
	cookieOnce   sync.Once
	cookieSecret [16]byte
)

func ensureCookieSecret() {
	cookieOnce.Do(func() {
		if _, err := rand.Read(cookieSecret[:]); err != nil {
			// crypto/rand failing is a fatal platform condition; a
			// zero secret still yields a deterministic (if weak)
			// cookie rather than a panic mid-handshake.
			return
		}
	})
}

// cookieFor computes the 20-byte HMAC-SHA1 cookie bound to addr's IP and
// port, the value carried in a DTLS HelloVerifyRequest.
func cookieFor(addr net.Addr) []byte {
	ensureCookieSecret()

	ip, port := splitAddr(addr)
	mac := hmac.New(sha1.New, cookieSecret[:])
	mac.Write([]byte(ip))
	mac.Write([]byte(strconv.Itoa(port)))
	return mac.Sum(nil)
}

// verifyCookie reports whether cookie is the one cookieFor would produce for
// addr right now -- it fails for any other peer address, including one that
// only differs by port.
func verifyCookie(addr net.Addr, cookie []byte) bool {
	want := cookieFor(addr)
	return hmac.Equal(want, cookie)
}

func splitAddr(addr net.Addr) (ip string, port int) {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.IP.String(), a.Port
	default:
		host, p, err := net.SplitHostPort(addr.String())
		if err != nil {
			return addr.String(), 0
		}
		n, _ := strconv.Atoi(p)
		return host, n
	}
}

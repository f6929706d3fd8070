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
	"strings"
)

// matchHostname reports whether host satisfies pattern under an RFC
// 6125-style rule: a "*" label matches any non-empty label of host,
// except a host label beginning with "xn--" (an IDN ACE prefix), and a
// pattern label containing a wildcard anywhere but as its sole character
// never matches at all.
func matchHostname(pattern, host string) bool {
	pattern = strings.TrimSuffix(strings.ToLower(pattern), ".")
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if pattern == "" || host == "" {
		return false
	}

	patLabels := strings.Split(pattern, ".")
	hostLabels := strings.Split(host, ".")
	if len(patLabels) != len(hostLabels) {
		return false
	}

	for i, pl := range patLabels {
		hl := hostLabels[i]
		if pl == "*" {
			if hl == "" || strings.HasPrefix(hl, "xn--") {
				return false
			}
			continue
		}
		if strings.Contains(pl, "*") {
			// Embedded wildcards ("foo*bar") never match.
			return false
		}
		if pl != hl {
			return false
		}
	}
	return true
}

// verifyHostnameInCert walks the certificate's DNS SAN entries first,
// falling back to the legacy Common Name only when no SAN entries exist at
// all.
func verifyHostnameInCert(cert *x509.Certificate, host string) bool {
	if len(cert.DNSNames) == 0 {
		return matchHostname(cert.Subject.CommonName, host)
	}
	for _, name := range cert.DNSNames {
		if matchHostname(name, host) {
			return true
		}
	}
	return false
}

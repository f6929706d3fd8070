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

// supersetALPN returns the ordered ALPN advertisement for the protocol a
// side wants to negotiate. Each tier also advertises every protocol it is
// backward-compatible with, most specific first, so a peer that only
// understands an older protocol still finds a match.
func supersetALPN(p Proto) []string {
	switch p {
	case ProtoHTTP1:
		return []string{"http/1"}
	case ProtoHTTP11:
		return []string{"http/1", "http/1.1"}
	case ProtoSPDY1:
		return []string{"spdy/1", "http/1", "http/1.1"}
	case ProtoHTTP2:
		return []string{"h2", "spdy/1", "http/1", "http/1.1"}
	case ProtoHTTP3:
		return []string{"h2", "h3", "spdy/1", "http/1", "http/1.1"}
	default:
		return nil
	}
}

func protoFromALPN(s string) Proto {
	switch s {
	case "http/1":
		return ProtoHTTP1
	case "http/1.1":
		return ProtoHTTP11
	case "spdy/1":
		return ProtoSPDY1
	case "h2":
		return ProtoHTTP2
	case "h3":
		return ProtoHTTP3
	default:
		return ProtoNone
	}
}

// resolveNegotiated applies the downgrade rule: a negotiated ALPN value that
// does not match what was actually wanted falls back to HTTP/1.1 rather than
// being treated as a handshake failure.
func resolveNegotiated(wanted Proto, negotiated string) Proto {
	got := protoFromALPN(negotiated)
	if got == ProtoNone || got != wanted {
		return ProtoHTTP11
	}
	return got
}

/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package runner holds the small set of helpers shared by every background
// worker in this module (hooks, aggregators) for reporting a recovered panic
// without taking the process down.
package runner

import (
	"fmt"
	"os"
)

// RecoveryCaller logs a recovered panic value under the given caller name.
// It is a no-op when recovered is nil, so callers can place it unconditionally
// behind a deferred recover() call. Extra args are appended to the log line
// for additional context (a file path, a connection id, ...).
func RecoveryCaller(caller string, recovered interface{}, args ...interface{}) {
	if recovered == nil {
		return
	}

	msg := fmt.Sprintf("recovering panic on %s: %v", caller, recovered)

	for _, a := range args {
		msg += fmt.Sprintf(" %v", a)
	}

	_, _ = fmt.Fprintln(os.Stderr, msg)
}

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
	"context"

	"github.com/fsnotify/fsnotify"

	liberr "github.com/anyks/netcore/errors"
)

// Watch starts a goroutine that reloads keyFile/crtFile into the Engine's
// certificate bundle whenever fsnotify reports a Write or Create on either
// file. The watches are on the two files themselves, not their directories,
// so a file replaced by an atomic rename is no longer followed after the
// replacement. Each reload appends the pair read from disk to the bundle;
// pairs loaded earlier are not removed. The goroutine exits when ctx is done.
func (e *engine) Watch(ctx context.Context, keyFile, crtFile string) liberr.Error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrorWatch.Error(err)
	}

	if err = w.Add(keyFile); err != nil {
		_ = w.Close()
		return ErrorWatch.Error(err)
	}
	if err = w.Add(crtFile); err != nil {
		_ = w.Close()
		return ErrorWatch.Error(err)
	}

	go func() {
		defer func() { _ = w.Close() }()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				_ = e.cert.AddCertificatePairFile(keyFile, crtFile)

			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}

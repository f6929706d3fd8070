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

// Command netcored is a minimal TCP echo daemon built directly on the
// reactor, socket and logger packages: it exists to exercise the stack the
// way a real caller would, not to be a production server in its own right.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	liblog "github.com/anyks/netcore/logger"
	logcfg "github.com/anyks/netcore/logger/config"
	loglvl "github.com/anyks/netcore/logger/level"
)

func main() {
	addr := flag.String("listen", "127.0.0.1:9090", "address to accept TCP connections on")
	maxFds := flag.Uint("max-fds", 1024, "maximum number of descriptors the reactor tracks at once")
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := liblog.New(ctx)
	log.SetLevel(loglvl.InfoLevel)
	if *verbose {
		log.SetLevel(loglvl.DebugLevel)
	}
	if err := log.SetOptions(&logcfg.Options{Stdout: &logcfg.OptionsStd{}}); err != nil {
		log.Entry(loglvl.ErrorLevel, "configuring logger: %v", err).Log()
		os.Exit(1)
	}

	if err := runEcho(ctx, log, *addr, uint32(*maxFds)); err != nil {
		log.Entry(loglvl.ErrorLevel, "echo daemon exited: %v", err).Log()
		os.Exit(1)
	}
}

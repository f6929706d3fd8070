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

package reactor

import "github.com/anyks/netcore/errors"

const (
	ErrorParamsInvalid errors.CodeError = iota + errors.MinPkgReactor
	ErrorMaxFdsReached
	ErrorBackendRegister
	ErrorBackendModify
	ErrorBackendUnregister
	ErrorBackendWait
	ErrorBackendCreate
	ErrorNotOwnerThread
	ErrorAlreadyRunning
	ErrorNotRunning
	ErrorTimerZeroDelay
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorParamsInvalid)
	errors.RegisterIdFctMessage(ErrorParamsInvalid, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorParamsInvalid:
		return "invalid reactor parameters"
	case ErrorMaxFdsReached:
		return "maximum descriptor count reached"
	case ErrorBackendRegister:
		return "backend refused to register descriptor"
	case ErrorBackendModify:
		return "backend refused to modify descriptor interest"
	case ErrorBackendUnregister:
		return "backend refused to unregister descriptor"
	case ErrorBackendWait:
		return "backend wait call failed"
	case ErrorBackendCreate:
		return "cannot create backend"
	case ErrorNotOwnerThread:
		return "method called off the reactor owner goroutine"
	case ErrorAlreadyRunning:
		return "reactor is already running"
	case ErrorNotRunning:
		return "reactor is not running"
	case ErrorTimerZeroDelay:
		return "timer entries require a non-zero delay"
	}

	return ""
}

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

import (
	"fmt"

	libval "github.com/go-playground/validator/v10"

	libdur "github.com/anyks/netcore/duration"
	liberr "github.com/anyks/netcore/errors"
)

// Config describes how a Reactor should be built. It follows the same
// mapstructure/json/yaml/toml tagging convention as certificates.Config so it
// can be decoded from viper alongside the rest of an application's config
// tree.
type Config struct {
	MaxFds    uint32         `mapstructure:"maxFds" json:"maxFds" yaml:"maxFds" toml:"maxFds" validate:"omitempty,gte=1"`
	Frequency libdur.Duration `mapstructure:"frequency" json:"frequency" yaml:"frequency" toml:"frequency"`
	Easy      bool           `mapstructure:"easy" json:"easy" yaml:"easy" toml:"easy"`
	Metrics   bool           `mapstructure:"metrics" json:"metrics" yaml:"metrics" toml:"metrics"`
}

// DefaultMaxFds mirrors common ulimit -n defaults; New clamps 0 to this.
const DefaultMaxFds = 65536

// DefaultFrequencyMS is the easy-mode pacing tick used when Frequency is 0.
const DefaultFrequencyMS = 10

func (c *Config) Validate() liberr.Error {
	err := ErrorParamsInvalid.Error(nil)

	if er := libval.New().Struct(c); er != nil {
		if e, ok := er.(*libval.InvalidValidationError); ok {
			err.Add(e)
		}

		for _, e := range er.(libval.ValidationErrors) {
			//nolint goerr113
			err.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.StructNamespace(), e.ActualTag()))
		}
	}

	if err.HasParent() {
		return err
	}

	return nil
}

func (c *Config) frequencyMS() uint32 {
	if c == nil || c.Frequency <= 0 {
		return DefaultFrequencyMS
	}

	ms := c.Frequency.Time().Milliseconds()
	if ms <= 0 {
		return DefaultFrequencyMS
	}

	return uint32(ms)
}

func (c *Config) maxFds() uint32 {
	if c == nil || c.MaxFds == 0 {
		return DefaultMaxFds
	}

	return c.MaxFds
}

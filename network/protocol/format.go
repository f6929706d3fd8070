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

package protocol

import (
	"reflect"

	"gopkg.in/yaml.v3"
)

// MarshalJSON implements json.Marshaler.
func (n NetworkProtocol) MarshalJSON() ([]byte, error) {
	s := n.String()
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	out = append(out, s...)
	out = append(out, '"')
	return out, nil
}

// UnmarshalJSON implements json.Unmarshaler. Unknown or malformed values
// resolve to NetworkEmpty rather than returning an error, matching the
// tolerant decoding style used across this module's enum types.
func (n *NetworkProtocol) UnmarshalJSON(b []byte) error {
	s := string(b)
	s = trimQuotes(s)
	*n = Parse(s)
	return nil
}

// MarshalYAML implements yaml.Marshaler, emitting the protocol as a plain
// scalar string.
func (n NetworkProtocol) MarshalYAML() (interface{}, error) {
	return n.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for gopkg.in/yaml.v3 nodes.
func (n *NetworkProtocol) UnmarshalYAML(node *yaml.Node) error {
	*n = Parse(node.Value)
	return nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// ViperDecoderHook returns a mapstructure.DecodeHookFunc suitable for
// registration on a viper instance so that config keys typed as string or
// any integer kind decode directly into a NetworkProtocol field.
func ViperDecoderHook() func(reflect.Type, reflect.Type, interface{}) (interface{}, error) {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		var p NetworkProtocol

		if to != reflect.TypeOf(p) {
			return data, nil
		}

		switch from.Kind() {
		case reflect.String:
			return Parse(data.(string)), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return ParseInt64(reflect.ValueOf(data).Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return ParseInt64(int64(reflect.ValueOf(data).Uint())), nil
		default:
			return data, nil
		}
	}
}

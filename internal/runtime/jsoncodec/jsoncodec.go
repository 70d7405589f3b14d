// Package jsoncodec is the single JSON entry point used across busflow. It is
// backed by sonic configured for encoding/json compatibility, so struct tags,
// json.RawMessage and custom (Un)Marshaler implementations behave as expected.
package jsoncodec

import (
	"github.com/bytedance/sonic"
)

var defaultConfig = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

// MarshalString renders v as a JSON string.
func MarshalString(v any) (string, error) {
	return defaultConfig.MarshalToString(v)
}

func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

// Valid reports whether data is a syntactically valid JSON document.
func Valid(data []byte) bool {
	return defaultConfig.Valid(data)
}

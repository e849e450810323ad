package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Secret is a JSON string decoded into bytes so the holder can zero it.
// Values carrying JSON escapes pass through an intermediate string.
type Secret []byte

func (s *Secret) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("secret must be a JSON string")
	}
	inner := data[1 : len(data)-1]
	if bytes.IndexByte(inner, '\\') < 0 {
		*s = append((*s)[:0], inner...)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = append((*s)[:0], str...)
	return nil
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

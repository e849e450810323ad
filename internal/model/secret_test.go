package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "plain", body: `{"name":"a","secretKey":"4xQy9"}`, want: "4xQy9"},
		{name: "escaped", body: `{"name":"a","secretKey":"p\"w\\d"}`, want: `p"w\d`},
		{name: "empty", body: `{"name":"a","secretKey":""}`, want: ""},
		{name: "number", body: `{"name":"a","secretKey":42}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ImportRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(req.SecretKey))
		})
	}
}

func TestSecretDoesNotAliasInput(t *testing.T) {
	body := []byte(`{"password":"correct horse battery"}`)
	var req UnlockRequest
	require.NoError(t, json.Unmarshal(body, &req))

	clear(body)
	assert.Equal(t, "correct horse battery", string(req.Password))

	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"password":"correct horse battery"}`, string(out))
}

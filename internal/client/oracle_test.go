package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeOracleClient_IsExempt(t *testing.T) {
	tests := []struct {
		name       string
		inviteCode string
		handler    http.HandlerFunc
		want       bool
		wantErr    bool
	}{
		{
			name:       "exempt",
			inviteCode: "FRIENDS",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/fee-exemption", r.URL.Path)
				assert.Equal(t, FeatureMultiWalletMigration, r.URL.Query().Get("feature"))
				assert.Equal(t, "FRIENDS", r.URL.Query().Get("code"))
				_ = json.NewEncoder(w).Encode(map[string]bool{"exempt": true})
			},
			want: true,
		},
		{
			name:       "not_exempt",
			inviteCode: "NOPE",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]bool{"exempt": false})
			},
		},
		{
			name:       "server_error",
			inviteCode: "FRIENDS",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: true,
		},
		{
			name:       "malformed_body",
			inviteCode: "FRIENDS",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			got, err := NewFeeOracleClient(srv.URL+"/").IsExempt(context.Background(), FeatureMultiWalletMigration, tt.inviteCode)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeeOracleClient_SkipsNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	exempt, err := NewFeeOracleClient("").IsExempt(context.Background(), FeatureSingleWalletMigration, "FRIENDS")
	require.NoError(t, err)
	assert.False(t, exempt)

	exempt, err = NewFeeOracleClient(srv.URL).IsExempt(context.Background(), FeatureSingleWalletMigration, "  ")
	require.NoError(t, err)
	assert.False(t, exempt)
	assert.Zero(t, calls)
}

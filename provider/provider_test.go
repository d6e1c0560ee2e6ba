package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	anchorgo "github.com/anchorgo/sdk-go"
	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/signers"
)

// rpcStub serves canned JSON-RPC responses keyed by method name.
func rpcStub(t *testing.T, handlers map[string]func() any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     any    `json:"id"`
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler, ok := handlers[req.Method]
		require.True(t, ok, "unexpected RPC method %q", req.Method)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  handler(),
		}))
	}))
}

func stubProvider(t *testing.T, srv *httptest.Server) *Provider {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return New(anchorgo.Localnet, signers.FromKeypair(key), WithRPCClient(rpc.New(srv.URL)))
}

func failedStatus(code int) map[string]any {
	return map[string]any{
		"context": map[string]any{"slot": 1},
		"value": []any{map[string]any{
			"slot":               1,
			"err":                map[string]any{"InstructionError": []any{0, map[string]any{"Custom": code}}},
			"confirmationStatus": "confirmed",
		}},
	}
}

func TestWaitForConfirmation_KeepsCustomErrorCode(t *testing.T) {
	srv := rpcStub(t, map[string]func() any{
		"getSignatureStatuses": func() any { return failedStatus(6000) },
	})
	defer srv.Close()

	prov := stubProvider(t, srv)
	err := prov.WaitForConfirmation(context.Background(), solana.Signature{}, rpc.CommitmentConfirmed)

	// The code survives so the program layer can translate it through the
	// IDL error table.
	var pf *errors.ProgramFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, 6000, pf.Code)
}

func TestWaitForConfirmation_NonCustomFailure(t *testing.T) {
	srv := rpcStub(t, map[string]func() any{
		"getSignatureStatuses": func() any {
			return map[string]any{
				"context": map[string]any{"slot": 1},
				"value": []any{map[string]any{
					"slot":               1,
					"err":                "BlockhashNotFound",
					"confirmationStatus": "confirmed",
				}},
			}
		},
	})
	defer srv.Close()

	prov := stubProvider(t, srv)
	err := prov.WaitForConfirmation(context.Background(), solana.Signature{}, rpc.CommitmentConfirmed)
	require.ErrorIs(t, err, errors.NewProviderError(errors.CONFIRMATION_FAILED, "", nil))
}

func TestWaitForConfirmation_ReachesTarget(t *testing.T) {
	srv := rpcStub(t, map[string]func() any{
		"getSignatureStatuses": func() any {
			return map[string]any{
				"context": map[string]any{"slot": 1},
				"value": []any{map[string]any{
					"slot":               1,
					"confirmationStatus": "finalized",
				}},
			}
		},
	})
	defer srv.Close()

	prov := stubProvider(t, srv)
	err := prov.WaitForConfirmation(context.Background(), solana.Signature{}, rpc.CommitmentConfirmed)
	require.NoError(t, err)
}

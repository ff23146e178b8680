// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/ledgervm/vm"
)

func testGenesis(t *testing.T, funded ids.ID) []byte {
	b, err := json.Marshal(&vm.Genesis{
		Timestamp: time.Now().Unix() - 60,
		Allocations: []vm.Allocation{
			{Address: funded, Balance: cjson.Uint64(1_000_000)},
		},
	})
	require.NoError(t, err)
	return b
}

func TestNodePersistsAcrossRestart(t *testing.T) {
	require := require.New(t)

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(err)
	funded, err := ids.ToID(pub)
	require.NoError(err)

	config := Config{
		DBDir:    t.TempDir(),
		Genesis:  testGenesis(t, funded),
		VMConfig: []byte(`{"buildInterval": "10ms"}`),
	}
	n, err := New(context.Background(), config)
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	genesisID, err := n.VM().LastAccepted(ctx)
	require.NoError(err)
	tx, err := vm.NewTx(n.VM().ChainID(), 1, &vm.Transfer{To: ids.GenerateTestID(), Amount: 5}, priv)
	require.NoError(err)
	require.NoError(n.VM().IssueTx(tx))

	require.Eventually(func() bool {
		lastAccepted, err := n.VM().LastAccepted(ctx)
		return err == nil && lastAccepted != genesisID
	}, 5*time.Second, 10*time.Millisecond)
	lastAccepted, err := n.VM().LastAccepted(ctx)
	require.NoError(err)

	cancel()
	require.NoError(<-done)
	require.NoError(n.Close(context.Background()))

	restarted, err := New(context.Background(), config)
	require.NoError(err)
	defer func() {
		require.NoError(restarted.Close(context.Background()))
	}()

	reloaded, err := restarted.VM().LastAccepted(context.Background())
	require.NoError(err)
	require.Equal(lastAccepted, reloaded)
	require.ErrorContains(restarted.VM().IssueTx(tx), "already accepted")
}

func TestNodeServesAPI(t *testing.T) {
	require := require.New(t)

	n, err := New(context.Background(), Config{Genesis: testGenesis(t, ids.GenerateTestID())})
	require.NoError(err)
	defer func() {
		require.NoError(n.Close(context.Background()))
	}()

	server := httptest.NewServer(n.Handler())
	defer server.Close()

	resp, err := http.Post(
		server.URL+APIPrefix+vm.RPCEndpoint,
		"application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ledgervm.chainInfo","params":{}}`),
	)
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Contains(string(body), n.VM().ChainID().String())

	resp, err = http.Get(server.URL + APIPrefix + vm.MetricsEndpoint)
	require.NoError(err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Contains(string(body), "ledgervm_blocks_accepted")
}

func TestNodeRejectsBadGenesis(t *testing.T) {
	_, err := New(context.Background(), Config{Genesis: []byte("not json")})
	require.Error(t, err)
}

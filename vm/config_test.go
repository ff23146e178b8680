// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/programs/vault"
	"github.com/ava-labs/ledgervm/state"
)

func TestParseConfigDefaults(t *testing.T) {
	require := require.New(t)

	config, err := ParseConfig(nil)
	require.NoError(err)
	require.Equal(DefaultConfig(), config)
	require.Equal(state.DefaultRentSchedule, config.Rent)
	require.Equal(vault.Symmetric, config.LockPolicy)
}

func TestParseConfigOverrides(t *testing.T) {
	require := require.New(t)

	config, err := ParseConfig([]byte(`{
		"maxBlockTxs": 3,
		"lockPolicy": "withdraw-only",
		"buildInterval": "250ms"
	}`))
	require.NoError(err)
	require.Equal(3, config.MaxBlockTxs)
	require.Equal(vault.WithdrawOnly, config.LockPolicy)
	require.Equal(Duration(250*time.Millisecond), config.BuildInterval)
	require.Equal(defaultMempoolSize, config.MempoolSize)
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{name: "not json", config: `{`},
		{name: "zero block size", config: `{"maxBlockTxs": 0}`},
		{name: "bad duration", config: `{"buildInterval": "soon"}`},
		{name: "negative duration", config: `{"buildInterval": "-1s"}`},
		{name: "unknown lock policy", config: `{"lockPolicy": "never"}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(test.config))
			require.Error(t, err)
		})
	}
}

func TestParseGenesis(t *testing.T) {
	require := require.New(t)

	addr := ids.GenerateTestID()
	genesis, err := ParseGenesis([]byte(`{
		"timestamp": 1700000000,
		"allocations": [{"address": "` + addr.String() + `", "balance": "1000"}]
	}`))
	require.NoError(err)
	require.Equal(int64(1_700_000_000), genesis.Timestamp)
	require.Len(genesis.Allocations, 1)
	require.Equal(addr, genesis.Allocations[0].Address)
	require.EqualValues(1000, genesis.Allocations[0].Balance)
}

func TestParseGenesisDuplicate(t *testing.T) {
	addr := ids.GenerateTestID().String()
	_, err := ParseGenesis([]byte(`{"allocations": [
		{"address": "` + addr + `", "balance": "1"},
		{"address": "` + addr + `", "balance": "2"}
	]}`))
	require.ErrorIs(t, err, errDuplicateAllocation)
}

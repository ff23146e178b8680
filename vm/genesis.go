// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	cjson "github.com/ava-labs/avalanchego/utils/json"
)

var errDuplicateAllocation = errors.New("duplicate genesis allocation")

// Allocation credits native value to a holder at genesis.
type Allocation struct {
	Address ids.ID       `json:"address"`
	Balance cjson.Uint64 `json:"balance"`
}

// Genesis is the JSON document a chain starts from.
type Genesis struct {
	// Timestamp of the genesis block, in unix seconds.
	Timestamp   int64        `json:"timestamp"`
	Allocations []Allocation `json:"allocations"`
}

func ParseGenesis(b []byte) (*Genesis, error) {
	genesis := &Genesis{}
	if err := json.Unmarshal(b, genesis); err != nil {
		return nil, fmt.Errorf("failed to parse genesis: %w", err)
	}
	seen := make(map[ids.ID]struct{}, len(genesis.Allocations))
	for _, alloc := range genesis.Allocations {
		if _, ok := seen[alloc.Address]; ok {
			return nil, fmt.Errorf("%w: %s", errDuplicateAllocation, alloc.Address)
		}
		seen[alloc.Address] = struct{}{}
	}
	return genesis, nil
}

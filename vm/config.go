// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ava-labs/ledgervm/programs/vault"
	"github.com/ava-labs/ledgervm/state"
)

// Config is the JSON configuration handed to Initialize.
type Config struct {
	MempoolSize int `json:"mempoolSize"`
	MaxBlockTxs int `json:"maxBlockTxs"`
	// AccountCacheSize is the number of decoded slots kept in memory.
	AccountCacheSize int                `json:"accountCacheSize"`
	Rent             state.RentSchedule `json:"rent"`
	LockPolicy       vault.LockPolicy   `json:"lockPolicy"`
	// BuildInterval is how often the engine checks for pending transactions
	// when it was not notified.
	BuildInterval Duration `json:"buildInterval"`
}

// DefaultConfig is used for every field the supplied config leaves out.
func DefaultConfig() Config {
	return Config{
		MempoolSize:      defaultMempoolSize,
		MaxBlockTxs:      256,
		AccountCacheSize: 1024,
		Rent:             state.DefaultRentSchedule,
		LockPolicy:       vault.Symmetric,
		BuildInterval:    Duration(time.Second),
	}
}

// ParseConfig overlays [b] on DefaultConfig. Empty config bytes yield the
// defaults.
func ParseConfig(b []byte) (Config, error) {
	config := DefaultConfig()
	if len(b) == 0 {
		return config, nil
	}
	if err := json.Unmarshal(b, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if config.MaxBlockTxs <= 0 {
		return Config{}, fmt.Errorf("maxBlockTxs must be positive, got %d", config.MaxBlockTxs)
	}
	if config.BuildInterval <= 0 {
		return Config{}, fmt.Errorf("buildInterval must be positive, got %s", time.Duration(config.BuildInterval))
	}
	return config, nil
}

// Duration is a time.Duration encoded as a string such as "500ms".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

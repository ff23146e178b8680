// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/ledger"
)

const defaultCacheSize = 1024

var (
	// These are prefixes for db keys.
	// It's important to set different prefixes for each separate database objects.
	singletonPrefix = []byte("singleton")
	slotPrefix      = []byte("slot")
	balancePrefix   = []byte("balance")
	eventPrefix     = []byte("event")
	blockPrefix     = []byte("block")
	heightPrefix    = []byte("height")
	receiptPrefix   = []byte("receipt")

	initializedKey = []byte("initialized")
	acceptedKey    = []byte("acceptedBlock")
	eventSeqKey    = []byte("eventSeq")
)

// Config tunes the state layer.
type Config struct {
	Rent      RentSchedule
	CacheSize int
}

// State is the host side of the ledger: the account table, native balances,
// the event log and the chain index, all behind a single versiondb so that a
// block either lands on disk completely or not at all.
type State struct {
	baseDB *versiondb.Database

	singletonDB database.Database
	eventDB     database.Database
	blockDB     database.Database
	heightDB    database.Database
	receiptDB   database.Database

	rent RentSchedule
	// decoded slots of the block-level state, keyed by address
	slotCache *lru.Cache

	nextEvent uint64
	pending   []*ledger.Event
	listener  func(*ledger.Event)
}

func New(db database.Database, config Config) (*State, error) {
	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	slotCache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create slot cache: %w", err)
	}

	baseDB := versiondb.New(db)
	s := &State{
		baseDB:      baseDB,
		singletonDB: prefixdb.New(singletonPrefix, baseDB),
		eventDB:     prefixdb.New(eventPrefix, baseDB),
		blockDB:     prefixdb.New(blockPrefix, baseDB),
		heightDB:    prefixdb.New(heightPrefix, baseDB),
		receiptDB:   prefixdb.New(receiptPrefix, baseDB),
		rent:        config.Rent,
		slotCache:   slotCache,
	}
	if err := s.loadEventSeq(); err != nil {
		return nil, err
	}
	return s, nil
}

// Rent returns the storage deposit schedule.
func (s *State) Rent() RentSchedule { return s.rent }

// SetListener registers the function committed events are delivered to.
func (s *State) SetListener(listener func(*ledger.Event)) {
	s.listener = listener
}

func (s *State) newView() *View {
	db := versiondb.New(s.baseDB)
	return &View{
		state:       s,
		db:          db,
		slotDB:      prefixdb.New(slotPrefix, db),
		balanceDB:   prefixdb.New(balancePrefix, db),
		eventDB:     prefixdb.New(eventPrefix, db),
		singletonDB: prefixdb.New(singletonPrefix, db),
		nextEvent:   s.nextEvent,
		dirty:       make(map[ids.ID]struct{}),
	}
}

// Atomic runs [fn] in a transaction scope. The writes of [fn] become visible
// only if it returns nil; otherwise they are discarded.
func (s *State) Atomic(fn func(*View) error) error {
	v := s.newView()
	if err := fn(v); err != nil {
		v.db.Abort()
		return err
	}
	if err := v.db.Commit(); err != nil {
		v.db.Abort()
		return fmt.Errorf("failed to commit view: %w", err)
	}
	for addr := range v.dirty {
		s.slotCache.Remove(addr)
	}
	s.nextEvent = v.nextEvent
	s.pending = append(s.pending, v.events...)
	return nil
}

// Read runs [fn] against a view that is always discarded.
func (s *State) Read(fn func(*View) error) error {
	v := s.newView()
	defer v.db.Abort()
	return fn(v)
}

// Commit flushes every pending write to the underlying database and delivers
// the events of the committed transactions.
func (s *State) Commit() error {
	if err := s.baseDB.Commit(); err != nil {
		return err
	}
	pending := s.pending
	s.pending = nil
	if s.listener != nil {
		for _, ev := range pending {
			s.listener(ev)
		}
	}
	return nil
}

// Abort discards every write since the last Commit.
func (s *State) Abort() error {
	s.baseDB.Abort()
	s.slotCache.Purge()
	s.pending = nil
	return s.loadEventSeq()
}

// Close closes the underlying base database
func (s *State) Close() error {
	return s.baseDB.Close()
}

func (s *State) IsInitialized() (bool, error) {
	return s.singletonDB.Has(initializedKey)
}

func (s *State) SetInitialized() error {
	return s.singletonDB.Put(initializedKey, nil)
}

func (s *State) loadEventSeq() error {
	seqBytes, err := s.singletonDB.Get(eventSeqKey)
	switch {
	case errors.Is(err, database.ErrNotFound):
		s.nextEvent = 0
		return nil
	case err != nil:
		return fmt.Errorf("failed to read event sequence: %w", err)
	}
	s.nextEvent = binary.BigEndian.Uint64(seqBytes)
	return nil
}

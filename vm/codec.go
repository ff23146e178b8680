// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

// CodecVersion is the current default codec version
const CodecVersion = 0

// Codec serializes transactions and blocks. Action type IDs follow the
// registration order below, so new actions are only ever appended.
var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewDefaultManager()

	errs := wrappers.Errs{}
	errs.Add(
		c.RegisterType(&InitializeVault{}),
		c.RegisterType(&Deposit{}),
		c.RegisterType(&Withdraw{}),
		c.RegisterType(&ToggleLock{}),
		c.RegisterType(&InitializeBoard{}),
		c.RegisterType(&PostMessage{}),
		c.RegisterType(&InitializeTweet{}),
		c.RegisterType(&AddComment{}),
		c.RegisterType(&RemoveComment{}),
		c.RegisterType(&AddReaction{}),
		c.RegisterType(&RemoveReaction{}),
		c.RegisterType(&GetFortune{}),
		c.RegisterType(&Transfer{}),
	)
	errs.Add(
		Codec.RegisterCodec(CodecVersion, c),
	)
	if errs.Errored() {
		panic(errs.Err)
	}
}

// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"errors"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/ledger"
	"github.com/ava-labs/ledgervm/programs/board"
	"github.com/ava-labs/ledgervm/programs/fortune"
	"github.com/ava-labs/ledgervm/programs/twitter"
	"github.com/ava-labs/ledgervm/programs/vault"
)

// SystemID is the program native transfers execute as.
var SystemID = ids.ID{'s', 'y', 's', 't', 'e', 'm'}

var errZeroAmount = errors.New("amount must be positive")

// Rules are the chain-wide parameters actions execute under.
type Rules struct {
	LockPolicy vault.LockPolicy
}

// Action is the payload of a transaction: one call of one program handler.
// The signer of the transaction is the signer of the call.
type Action interface {
	// Name identifies the action in logs, metrics and the API.
	Name() string
	// Program is the program the action executes as.
	Program() ids.ID
	// Verify performs the structural checks that need no state.
	Verify() error
	Execute(call *ledger.Call, rules Rules) error
}

var (
	_ Action = (*InitializeVault)(nil)
	_ Action = (*Deposit)(nil)
	_ Action = (*Withdraw)(nil)
	_ Action = (*ToggleLock)(nil)
	_ Action = (*InitializeBoard)(nil)
	_ Action = (*PostMessage)(nil)
	_ Action = (*InitializeTweet)(nil)
	_ Action = (*AddComment)(nil)
	_ Action = (*RemoveComment)(nil)
	_ Action = (*AddReaction)(nil)
	_ Action = (*RemoveReaction)(nil)
	_ Action = (*GetFortune)(nil)
	_ Action = (*Transfer)(nil)
)

// InitializeVault creates the vault of the signer.
type InitializeVault struct{}

func (*InitializeVault) Name() string    { return "initializeVault" }
func (*InitializeVault) Program() ids.ID { return vault.ID }
func (*InitializeVault) Verify() error   { return nil }

func (*InitializeVault) Execute(call *ledger.Call, _ Rules) error {
	_, err := vault.Initialize(call, call.Signer)
	return err
}

// Deposit funds [Vault] from the signer.
type Deposit struct {
	Vault  ids.ID `serialize:"true" json:"vault"`
	Amount uint64 `serialize:"true" json:"amount"`
}

func (*Deposit) Name() string    { return "deposit" }
func (*Deposit) Program() ids.ID { return vault.ID }
func (*Deposit) Verify() error   { return nil }

func (a *Deposit) Execute(call *ledger.Call, rules Rules) error {
	return vault.Deposit(call, vault.DepositAccounts{Vault: a.Vault, User: call.Signer}, a.Amount, rules.LockPolicy)
}

// Withdraw moves [Amount] from [Vault] to the signer, who must be its authority.
type Withdraw struct {
	Vault  ids.ID `serialize:"true" json:"vault"`
	Amount uint64 `serialize:"true" json:"amount"`
}

func (*Withdraw) Name() string    { return "withdraw" }
func (*Withdraw) Program() ids.ID { return vault.ID }
func (*Withdraw) Verify() error   { return nil }

func (a *Withdraw) Execute(call *ledger.Call, _ Rules) error {
	return vault.Withdraw(call, vault.AuthorityAccounts{Vault: a.Vault, Authority: call.Signer}, a.Amount)
}

type ToggleLock struct {
	Vault ids.ID `serialize:"true" json:"vault"`
}

func (*ToggleLock) Name() string    { return "toggleLock" }
func (*ToggleLock) Program() ids.ID { return vault.ID }
func (*ToggleLock) Verify() error   { return nil }

func (a *ToggleLock) Execute(call *ledger.Call, _ Rules) error {
	return vault.ToggleLock(call, vault.AuthorityAccounts{Vault: a.Vault, Authority: call.Signer})
}

type InitializeBoard struct{}

func (*InitializeBoard) Name() string    { return "initializeBoard" }
func (*InitializeBoard) Program() ids.ID { return board.ID }
func (*InitializeBoard) Verify() error   { return nil }

func (*InitializeBoard) Execute(call *ledger.Call, _ Rules) error {
	_, err := board.Initialize(call, call.Signer)
	return err
}

type PostMessage struct {
	Content string `serialize:"true" json:"content"`
}

func (*PostMessage) Name() string    { return "postMessage" }
func (*PostMessage) Program() ids.ID { return board.ID }

func (a *PostMessage) Verify() error {
	return ledger.CheckLength(a.Content, board.MaxContent, board.ErrContentTooLong)
}

func (a *PostMessage) Execute(call *ledger.Call, _ Rules) error {
	_, err := board.PostMessage(call, call.Signer, a.Content)
	return err
}

type InitializeTweet struct {
	Topic   string `serialize:"true" json:"topic"`
	Content string `serialize:"true" json:"content"`
}

func (*InitializeTweet) Name() string    { return "initializeTweet" }
func (*InitializeTweet) Program() ids.ID { return twitter.ID }

func (a *InitializeTweet) Verify() error {
	if err := ledger.CheckLength(a.Topic, twitter.TopicLength, twitter.ErrTopicTooLong); err != nil {
		return err
	}
	return ledger.CheckLength(a.Content, twitter.ContentLength, twitter.ErrContentTooLong)
}

func (a *InitializeTweet) Execute(call *ledger.Call, _ Rules) error {
	_, err := twitter.InitializeTweet(call, call.Signer, a.Topic, a.Content)
	return err
}

type AddComment struct {
	Tweet   ids.ID `serialize:"true" json:"tweet"`
	Content string `serialize:"true" json:"content"`
}

func (*AddComment) Name() string    { return "addComment" }
func (*AddComment) Program() ids.ID { return twitter.ID }

func (a *AddComment) Verify() error {
	return ledger.CheckLength(a.Content, twitter.CommentLength, twitter.ErrCommentTooLong)
}

func (a *AddComment) Execute(call *ledger.Call, _ Rules) error {
	_, err := twitter.AddComment(call, twitter.TweetAccounts{Tweet: a.Tweet, Author: call.Signer}, a.Content)
	return err
}

type RemoveComment struct {
	Comment ids.ID `serialize:"true" json:"comment"`
}

func (*RemoveComment) Name() string    { return "removeComment" }
func (*RemoveComment) Program() ids.ID { return twitter.ID }
func (*RemoveComment) Verify() error   { return nil }

func (a *RemoveComment) Execute(call *ledger.Call, _ Rules) error {
	return twitter.RemoveComment(call, a.Comment, call.Signer)
}

type AddReaction struct {
	Tweet ids.ID               `serialize:"true" json:"tweet"`
	Kind  twitter.ReactionType `serialize:"true" json:"kind"`
}

func (*AddReaction) Name() string    { return "addReaction" }
func (*AddReaction) Program() ids.ID { return twitter.ID }
func (a *AddReaction) Verify() error { return a.Kind.Verify() }

func (a *AddReaction) Execute(call *ledger.Call, _ Rules) error {
	_, err := twitter.AddReaction(call, twitter.TweetAccounts{Tweet: a.Tweet, Author: call.Signer}, a.Kind)
	return err
}

type RemoveReaction struct {
	Reaction ids.ID `serialize:"true" json:"reaction"`
	Tweet    ids.ID `serialize:"true" json:"tweet"`
}

func (*RemoveReaction) Name() string    { return "removeReaction" }
func (*RemoveReaction) Program() ids.ID { return twitter.ID }
func (*RemoveReaction) Verify() error   { return nil }

func (a *RemoveReaction) Execute(call *ledger.Call, _ Rules) error {
	return twitter.RemoveReaction(call, twitter.ReactionAccounts{
		Reaction: a.Reaction,
		Tweet:    a.Tweet,
		Author:   call.Signer,
	})
}

type GetFortune struct {
	Counter uint64 `serialize:"true" json:"counter"`
}

func (*GetFortune) Name() string    { return "getFortune" }
func (*GetFortune) Program() ids.ID { return fortune.ID }
func (*GetFortune) Verify() error   { return nil }

func (a *GetFortune) Execute(call *ledger.Call, _ Rules) error {
	_, err := fortune.GetFortune(call, call.Signer, a.Counter)
	return err
}

// Transfer sends native value from the signer to [To].
type Transfer struct {
	To     ids.ID `serialize:"true" json:"to"`
	Amount uint64 `serialize:"true" json:"amount"`
}

func (*Transfer) Name() string    { return "transfer" }
func (*Transfer) Program() ids.ID { return SystemID }

func (a *Transfer) Verify() error {
	if a.Amount == 0 {
		return errZeroAmount
	}
	return nil
}

func (a *Transfer) Execute(call *ledger.Call, _ Rules) error {
	return ledger.Transfer(call, ledger.Signer(call.Signer), a.To, a.Amount)
}

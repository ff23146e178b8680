// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package twitter implements tweets with comments and reactions.
//
// A tweet lives at [topic, TWEET_SEED, author], so an author has at most one
// tweet per topic. Comments are keyed by the hash of their content and
// reactions by their author, one per tweet.
package twitter

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/ledgervm/ledger"
)

const (
	Name = "twitter"

	TopicLength   = 32
	ContentLength = 500
	CommentLength = 500

	TweetInitializedEvent = "tweet_initialized"
	CommentAddedEvent     = "comment_added"
	CommentRemovedEvent   = "comment_removed"
	ReactionAddedEvent    = "reaction_added"
	ReactionRemovedEvent  = "reaction_removed"
)

var (
	ID = ids.ID{'t', 'w', 'i', 't', 't', 'e', 'r'}

	tweetSeed    = []byte("TWEET_SEED")
	commentSeed  = []byte("COMMENT_SEED")
	reactionSeed = []byte("TWEET_REACTION_SEED")

	tweetDiscriminator    = ledger.DiscriminatorOf("Tweet")
	commentDiscriminator  = ledger.DiscriminatorOf("Comment")
	reactionDiscriminator = ledger.DiscriminatorOf("Reaction")

	_ ledger.Record = (*Tweet)(nil)
	_ ledger.Record = (*Comment)(nil)
	_ ledger.Record = (*Reaction)(nil)
)

var (
	ErrTopicTooLong       = ledger.NewError(ledger.ClassValidation, 6000, "topic too long")
	ErrContentTooLong     = ledger.NewError(ledger.ClassValidation, 6001, "content too long")
	ErrCommentTooLong     = ledger.NewError(ledger.ClassValidation, 6002, "comment too long")
	ErrInvalidReaction    = ledger.NewError(ledger.ClassValidation, 6003, "unknown reaction type")
	ErrMaxLikesReached    = ledger.NewError(ledger.ClassArithmetic, 6004, "maximum number of likes reached")
	ErrMaxDislikesReached = ledger.NewError(ledger.ClassArithmetic, 6005, "maximum number of dislikes reached")
	ErrMinLikesReached    = ledger.NewError(ledger.ClassArithmetic, 6006, "minimum number of likes reached")
	ErrMinDislikesReached = ledger.NewError(ledger.ClassArithmetic, 6007, "minimum number of dislikes reached")
	ErrUnauthorized       = ledger.NewError(ledger.ClassAuthorization, 6008, "signer is not the author")
	ErrWrongParent        = ledger.NewError(ledger.ClassState, 6009, "reaction belongs to another tweet")
)

type Tweet struct {
	Author   ids.ID `serialize:"true" json:"author"`
	Topic    string `serialize:"true" json:"topic"`
	Content  string `serialize:"true" json:"content"`
	Likes    uint64 `serialize:"true" json:"likes"`
	Dislikes uint64 `serialize:"true" json:"dislikes"`
	Bump     byte   `serialize:"true" json:"bump"`
}

func (*Tweet) Discriminator() ledger.Discriminator { return tweetDiscriminator }

func (*Tweet) Space() uint64 {
	return ledger.HeaderLen +
		ledger.IDLen +
		ledger.TextSpace(TopicLength) +
		ledger.TextSpace(ContentLength) +
		8 + 8 + 1
}

type Comment struct {
	Author      ids.ID `serialize:"true" json:"author"`
	ParentTweet ids.ID `serialize:"true" json:"parentTweet"`
	Content     string `serialize:"true" json:"content"`
	Bump        byte   `serialize:"true" json:"bump"`
}

func (*Comment) Discriminator() ledger.Discriminator { return commentDiscriminator }

func (*Comment) Space() uint64 {
	return ledger.HeaderLen + 2*ledger.IDLen + ledger.TextSpace(CommentLength) + 1
}

type Reaction struct {
	Author      ids.ID       `serialize:"true" json:"author"`
	ParentTweet ids.ID       `serialize:"true" json:"parentTweet"`
	Kind        ReactionType `serialize:"true" json:"kind"`
	Bump        byte         `serialize:"true" json:"bump"`
}

func (*Reaction) Discriminator() ledger.Discriminator { return reactionDiscriminator }

func (*Reaction) Space() uint64 {
	return ledger.HeaderLen + 2*ledger.IDLen + 1 + 1
}

// ReactionType is either Like or Dislike.
type ReactionType uint8

const (
	Like ReactionType = iota
	Dislike
)

func (r ReactionType) Verify() error {
	switch r {
	case Like, Dislike:
		return nil
	default:
		return ErrInvalidReaction
	}
}

func (r ReactionType) String() string {
	switch r {
	case Like:
		return "like"
	case Dislike:
		return "dislike"
	default:
		return fmt.Sprintf("ReactionType(%d)", uint8(r))
	}
}

func TweetAddress(author ids.ID, topic string) (ids.ID, byte, error) {
	return ledger.FindAddress(ID, [][]byte{[]byte(topic), tweetSeed, author[:]})
}

// CommentAddress keys a comment by the hash of its content, so the same author
// cannot post the same comment twice under one tweet.
func CommentAddress(author ids.ID, content string, tweet ids.ID) (ids.ID, byte, error) {
	contentHash := hashing.ComputeHash256([]byte(content))
	return ledger.FindAddress(ID, [][]byte{commentSeed, author[:], contentHash, tweet[:]})
}

func ReactionAddress(author ids.ID, tweet ids.ID) (ids.ID, byte, error) {
	return ledger.FindAddress(ID, [][]byte{reactionSeed, author[:], tweet[:]})
}

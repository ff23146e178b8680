// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package twitter

import (
	"fmt"
	"math"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/ledger"
)

// InitializeTweet creates the tweet of [author] under [topic] with zeroed
// counters. The author pays for the storage.
func InitializeTweet(call *ledger.Call, author ids.ID, topic, content string) (ids.ID, error) {
	if err := ledger.CheckLength(topic, TopicLength, ErrTopicTooLong); err != nil {
		return ids.Empty, err
	}
	if err := ledger.CheckLength(content, ContentLength, ErrContentTooLong); err != nil {
		return ids.Empty, err
	}
	if err := ledger.RequireSigner(call, author); err != nil {
		return ids.Empty, err
	}

	addr, bump, err := TweetAddress(author, topic)
	if err != nil {
		return ids.Empty, err
	}
	tweet := &Tweet{
		Author:  author,
		Topic:   topic,
		Content: content,
		Bump:    bump,
	}
	if err := ledger.Create(call, addr, author, tweet); err != nil {
		return ids.Empty, fmt.Errorf("couldn't create tweet: %w", err)
	}
	return addr, ledger.Emit(call, &ledger.Event{
		Name:    TweetInitializedEvent,
		Actor:   author,
		Account: addr,
	})
}

// TweetAccounts names a tweet and the identity acting on it.
type TweetAccounts struct {
	Tweet  ids.ID
	Author ids.ID
}

// AddComment attaches [content] to a tweet. The parent must be a tweet.
func AddComment(call *ledger.Call, accts TweetAccounts, content string) (ids.ID, error) {
	if err := ledger.CheckLength(content, CommentLength, ErrCommentTooLong); err != nil {
		return ids.Empty, err
	}
	if err := ledger.RequireSigner(call, accts.Author); err != nil {
		return ids.Empty, err
	}
	if err := ledger.Load(call, accts.Tweet, &Tweet{}); err != nil {
		return ids.Empty, err
	}

	addr, bump, err := CommentAddress(accts.Author, content, accts.Tweet)
	if err != nil {
		return ids.Empty, err
	}
	comment := &Comment{
		Author:      accts.Author,
		ParentTweet: accts.Tweet,
		Content:     content,
		Bump:        bump,
	}
	if err := ledger.Create(call, addr, accts.Author, comment); err != nil {
		return ids.Empty, fmt.Errorf("couldn't create comment: %w", err)
	}
	return addr, ledger.Emit(call, &ledger.Event{
		Name:         CommentAddedEvent,
		Actor:        accts.Author,
		Account:      addr,
		Counterparty: accts.Tweet,
	})
}

// RemoveComment closes a comment and refunds its storage to the stored author.
// The parent tweet is not needed.
func RemoveComment(call *ledger.Call, commentAddr ids.ID, author ids.ID) error {
	comment := &Comment{}
	if err := ledger.Load(call, commentAddr, comment); err != nil {
		return err
	}
	if err := authorize(call, comment.Author, author); err != nil {
		return err
	}
	if err := ledger.Close(call, commentAddr, comment.Author); err != nil {
		return err
	}
	return ledger.Emit(call, &ledger.Event{
		Name:         CommentRemovedEvent,
		Actor:        comment.Author,
		Account:      commentAddr,
		Counterparty: comment.ParentTweet,
	})
}

// AddReaction records the reaction of the author and bumps the matching
// counter of the tweet.
func AddReaction(call *ledger.Call, accts TweetAccounts, kind ReactionType) (ids.ID, error) {
	if err := kind.Verify(); err != nil {
		return ids.Empty, err
	}
	if err := ledger.RequireSigner(call, accts.Author); err != nil {
		return ids.Empty, err
	}
	tweet := &Tweet{}
	if err := ledger.Load(call, accts.Tweet, tweet); err != nil {
		return ids.Empty, err
	}

	switch kind {
	case Like:
		if tweet.Likes == math.MaxUint64 {
			return ids.Empty, ErrMaxLikesReached
		}
		tweet.Likes++
	case Dislike:
		if tweet.Dislikes == math.MaxUint64 {
			return ids.Empty, ErrMaxDislikesReached
		}
		tweet.Dislikes++
	}

	addr, bump, err := ReactionAddress(accts.Author, accts.Tweet)
	if err != nil {
		return ids.Empty, err
	}
	reaction := &Reaction{
		Author:      accts.Author,
		ParentTweet: accts.Tweet,
		Kind:        kind,
		Bump:        bump,
	}
	if err := ledger.Create(call, addr, accts.Author, reaction); err != nil {
		return ids.Empty, fmt.Errorf("couldn't create reaction: %w", err)
	}
	if err := ledger.Save(call, accts.Tweet, tweet); err != nil {
		return ids.Empty, err
	}
	return addr, ledger.Emit(call, &ledger.Event{
		Name:         ReactionAddedEvent,
		Actor:        accts.Author,
		Account:      addr,
		Counterparty: accts.Tweet,
	})
}

// ReactionAccounts names a reaction, the tweet it belongs to and its author.
type ReactionAccounts struct {
	Reaction ids.ID
	Tweet    ids.ID
	Author   ids.ID
}

// RemoveReaction undoes a reaction: the tweet counter goes back down and the
// reaction storage is refunded to its author.
func RemoveReaction(call *ledger.Call, accts ReactionAccounts) error {
	reaction := &Reaction{}
	if err := ledger.Load(call, accts.Reaction, reaction); err != nil {
		return err
	}
	if err := authorize(call, reaction.Author, accts.Author); err != nil {
		return err
	}
	if reaction.ParentTweet != accts.Tweet {
		return ErrWrongParent
	}
	tweet := &Tweet{}
	if err := ledger.Load(call, accts.Tweet, tweet); err != nil {
		return err
	}

	switch reaction.Kind {
	case Like:
		if tweet.Likes == 0 {
			return ErrMinLikesReached
		}
		tweet.Likes--
	case Dislike:
		if tweet.Dislikes == 0 {
			return ErrMinDislikesReached
		}
		tweet.Dislikes--
	default:
		return ErrInvalidReaction
	}

	if err := ledger.Save(call, accts.Tweet, tweet); err != nil {
		return err
	}
	if err := ledger.Close(call, accts.Reaction, reaction.Author); err != nil {
		return err
	}
	return ledger.Emit(call, &ledger.Event{
		Name:         ReactionRemovedEvent,
		Actor:        reaction.Author,
		Account:      accts.Reaction,
		Counterparty: accts.Tweet,
	})
}

func authorize(call *ledger.Call, stored, presented ids.ID) error {
	if err := ledger.Authorize(stored, presented); err != nil {
		return ErrUnauthorized
	}
	return ledger.RequireSigner(call, presented)
}

package askme

import "errors"

// Scoring deltas. Votes move an item's score by exactly one in either
// direction.
const (
	Upvote   int64 = 1
	Downvote int64 = -1
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrOwnItem           = errors.New("own content cannot be voted on")
	ErrAlreadyVoted      = errors.New("already voted")
	ErrNotFound          = errors.New("record not found")
	ErrNotQuestionAuthor = errors.New("only the question author can accept an answer")
)

// A Votable exposes the storage operations the vote workflow needs for one
// content kind. Questions, answers and comments each provide one, which is
// how the single CastVote below replaces three near-identical flows.
type Votable interface {
	// Author returns the author id of the item, or ErrNotFound.
	Author(itemID int64) (int64, error)
	// RegisterVote inserts a ledger row for (itemID, userID). The
	// implementation must enforce uniqueness atomically and return
	// ErrAlreadyVoted when a row already exists.
	RegisterVote(itemID int64, userID int64) error
	// AdjustScore atomically moves the item score by delta and returns the
	// new value. Scores may go negative.
	AdjustScore(itemID int64, delta int64) (int64, error)
	// OwningQuestion resolves the question an item ultimately belongs to,
	// for redirecting the voter back to it.
	OwningQuestion(itemID int64) (int64, error)
}

// An ActivityLedger mutates the incrementally maintained per-user counters.
type ActivityLedger interface {
	// RecordVoteCast bumps the voter's activity score by one point and its
	// votes-cast counter by one.
	RecordVoteCast(userID int64) error
	// RecordAccept bumps the answer author's activity score by the accept
	// bonus and its accepts counter by one.
	RecordAccept(userID int64) error
}

// CastVote runs the vote workflow for one item: reject anonymous callers,
// authors voting on their own content and repeat votes; otherwise record
// the vote, move the score and credit the voter. It returns the item's new
// score.
//
// Steps are not rolled back on a later failure: a registered vote stays
// registered even if the score adjustment fails. Each step surfaces its
// error to the caller, which turns it into a flash message.
func CastVote(items Votable, users ActivityLedger, itemID int64, userID int64, delta int64) (int64, error) {
	if userID == 0 {
		return 0, ErrNotAuthenticated
	}

	author, err := items.Author(itemID)
	if err != nil {
		return 0, err
	}

	if author == userID {
		return 0, ErrOwnItem
	}

	if err := items.RegisterVote(itemID, userID); err != nil {
		return 0, err
	}

	score, err := items.AdjustScore(itemID, delta)
	if err != nil {
		return 0, err
	}

	if err := users.RecordVoteCast(userID); err != nil {
		return score, err
	}

	return score, nil
}

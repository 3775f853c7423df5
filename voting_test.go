package askme

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
)

// fakeVotable implements Votable in memory, with pluggable failures.
type fakeVotable struct {
	authorID       int64
	authorErr      error
	registered     map[int64]bool
	registerErr    error
	score          int64
	adjustErr      error
	owningQuestion int64
}

func newFakeVotable(authorID int64) *fakeVotable {
	return &fakeVotable{
		authorID:       authorID,
		registered:     map[int64]bool{},
		owningQuestion: 1,
	}
}

func (f *fakeVotable) Author(itemID int64) (int64, error) {
	if f.authorErr != nil {
		return 0, f.authorErr
	}
	return f.authorID, nil
}

func (f *fakeVotable) RegisterVote(itemID int64, userID int64) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	if f.registered[userID] {
		return ErrAlreadyVoted
	}
	f.registered[userID] = true
	return nil
}

func (f *fakeVotable) AdjustScore(itemID int64, delta int64) (int64, error) {
	if f.adjustErr != nil {
		return 0, f.adjustErr
	}
	f.score += delta
	return f.score, nil
}

func (f *fakeVotable) OwningQuestion(itemID int64) (int64, error) {
	return f.owningQuestion, nil
}

type fakeLedger struct {
	votesCast  map[int64]int
	accepts    map[int64]int
	votesErr   error
	acceptsErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		votesCast: map[int64]int{},
		accepts:   map[int64]int{},
	}
}

func (f *fakeLedger) RecordVoteCast(userID int64) error {
	if f.votesErr != nil {
		return f.votesErr
	}
	f.votesCast[userID]++
	return nil
}

func (f *fakeLedger) RecordAccept(userID int64) error {
	if f.acceptsErr != nil {
		return f.acceptsErr
	}
	f.accepts[userID]++
	return nil
}

func TestCastVote(t *testing.T) {
	c := qt.New(t)

	c.Run("rejects anonymous users", func(c *qt.C) {
		items := newFakeVotable(1)
		ledger := newFakeLedger()

		_, err := CastVote(items, ledger, 10, 0, Upvote)
		c.Assert(errors.Is(err, ErrNotAuthenticated), qt.IsTrue)
		c.Assert(items.registered, qt.HasLen, 0)
	})

	c.Run("rejects voting on own content", func(c *qt.C) {
		items := newFakeVotable(2)
		ledger := newFakeLedger()

		_, err := CastVote(items, ledger, 10, 2, Upvote)
		c.Assert(errors.Is(err, ErrOwnItem), qt.IsTrue)
		c.Assert(items.registered, qt.HasLen, 0)
		c.Assert(ledger.votesCast, qt.HasLen, 0)
	})

	c.Run("rejects a second vote from the same user", func(c *qt.C) {
		items := newFakeVotable(1)
		ledger := newFakeLedger()

		_, err := CastVote(items, ledger, 10, 2, Upvote)
		c.Assert(err, qt.IsNil)

		_, err = CastVote(items, ledger, 10, 2, Downvote)
		c.Assert(errors.Is(err, ErrAlreadyVoted), qt.IsTrue)

		// the rejected vote moved nothing
		c.Assert(items.score, qt.Equals, int64(1))
		c.Assert(ledger.votesCast[2], qt.Equals, 1)
	})

	c.Run("upvote moves the score up and credits the voter", func(c *qt.C) {
		items := newFakeVotable(1)
		ledger := newFakeLedger()

		score, err := CastVote(items, ledger, 10, 2, Upvote)
		c.Assert(err, qt.IsNil)
		c.Assert(score, qt.Equals, int64(1))
		c.Assert(items.registered[2], qt.IsTrue)
		c.Assert(ledger.votesCast[2], qt.Equals, 1)
	})

	c.Run("downvote moves the score below zero", func(c *qt.C) {
		items := newFakeVotable(1)
		ledger := newFakeLedger()

		score, err := CastVote(items, ledger, 10, 2, Downvote)
		c.Assert(err, qt.IsNil)
		c.Assert(score, qt.Equals, int64(-1))
	})

	c.Run("missing item surfaces as not found", func(c *qt.C) {
		items := newFakeVotable(1)
		items.authorErr = ErrNotFound
		ledger := newFakeLedger()

		_, err := CastVote(items, ledger, 10, 2, Upvote)
		c.Assert(errors.Is(err, ErrNotFound), qt.IsTrue)
	})

	c.Run("a failed score adjustment does not unregister the vote", func(c *qt.C) {
		items := newFakeVotable(1)
		items.adjustErr = errors.New("boom")
		ledger := newFakeLedger()

		_, err := CastVote(items, ledger, 10, 2, Upvote)
		c.Assert(err, qt.Not(qt.IsNil))
		c.Assert(items.registered[2], qt.IsTrue)
		c.Assert(ledger.votesCast, qt.HasLen, 0)
	})

	c.Run("a failed voter credit still reports the new score", func(c *qt.C) {
		items := newFakeVotable(1)
		ledger := newFakeLedger()
		ledger.votesErr = errors.New("boom")

		score, err := CastVote(items, ledger, 10, 2, Upvote)
		c.Assert(err, qt.Not(qt.IsNil))
		c.Assert(score, qt.Equals, int64(1))
		c.Assert(items.score, qt.Equals, int64(1))
	})
}

package pgstore

import (
	"database/sql"
	"errors"

	"github.com/GunnarEriksson/askme"
	"github.com/lib/pq"
)

// votable is one content kind's view on the vote ledger. The same four
// operations back the single vote workflow for questions, answers and
// comments; only the table names and the owning-question resolution differ.
type votable struct {
	store          *PGStore
	itemTable      string
	voteTable      string
	owningQuestion func(s *PGStore, itemID int64) (int64, error)
}

// QuestionVotes returns the ledger view for votes on questions.
func (s *PGStore) QuestionVotes() askme.Votable {
	return &votable{
		store:     s,
		itemTable: "questions",
		voteTable: "question_votes",
		owningQuestion: func(s *PGStore, itemID int64) (int64, error) {
			// a question owns itself, but a dangling id is still not found
			var id int64
			err := s.db.Get(&id, "SELECT id FROM questions WHERE id = $1", itemID)
			if errors.Is(err, sql.ErrNoRows) {
				return 0, askme.ErrNotFound
			}
			return id, err
		},
	}
}

// AnswerVotes returns the ledger view for votes on answers.
func (s *PGStore) AnswerVotes() askme.Votable {
	return &votable{
		store:     s,
		itemTable: "answers",
		voteTable: "answer_votes",
		owningQuestion: func(s *PGStore, itemID int64) (int64, error) {
			var id int64
			err := s.db.Get(&id, "SELECT question_id FROM answers WHERE id = $1", itemID)
			if errors.Is(err, sql.ErrNoRows) {
				return 0, askme.ErrNotFound
			}
			return id, err
		},
	}
}

// CommentVotes returns the ledger view for votes on comments. A comment
// hangs off either an answer or a question, so resolution tries the answer
// hop first and falls back to the direct question link.
func (s *PGStore) CommentVotes() askme.Votable {
	return &votable{
		store:     s,
		itemTable: "comments",
		voteTable: "comment_votes",
		owningQuestion: func(s *PGStore, itemID int64) (int64, error) {
			var id int64
			err := s.db.Get(&id,
				"SELECT answers.question_id FROM comments JOIN answers ON comments.answer_id = answers.id WHERE comments.id = $1",
				itemID)
			if err == nil {
				return id, nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return 0, err
			}

			err = s.db.Get(&id, "SELECT question_id FROM comments WHERE id = $1 AND question_id IS NOT NULL", itemID)
			if errors.Is(err, sql.ErrNoRows) {
				return 0, askme.ErrNotFound
			}
			return id, err
		},
	}
}

func (v *votable) Author(itemID int64) (int64, error) {
	var authorID int64
	err := v.store.db.Get(&authorID, "SELECT author_id FROM "+v.itemTable+" WHERE id = $1", itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, askme.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	return authorID, nil
}

// RegisterVote inserts the ledger row. The unique index over
// (item_id, user_id) makes the insert the uniqueness check; a violation
// comes back as ErrAlreadyVoted.
func (v *votable) RegisterVote(itemID int64, userID int64) error {
	_, err := v.store.db.Exec(
		"INSERT INTO "+v.voteTable+" (item_id, user_id, created_at) VALUES ($1, $2, $3)",
		itemID, userID, askme.NowFunc())

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return askme.ErrAlreadyVoted
	}

	return err
}

// AdjustScore moves the score in a single update so concurrent votes can't
// lose increments to a read-modify-write race.
func (v *votable) AdjustScore(itemID int64, delta int64) (int64, error) {
	var score int64
	err := v.store.db.Get(&score,
		"UPDATE "+v.itemTable+" SET score = score + $2 WHERE id = $1 RETURNING score",
		itemID, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, askme.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	return score, nil
}

func (v *votable) OwningQuestion(itemID int64) (int64, error) {
	return v.owningQuestion(v.store, itemID)
}

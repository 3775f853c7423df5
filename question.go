package askme

import (
	"database/sql"
	"time"
)

type Question struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	Body         string    `db:"body"`
	Score        int64     `db:"score"`
	Author       string    `db:"author"`
	AuthorID     int64     `db:"author_id"`
	AnswersCount int64     `db:"answers_count"`
	CreatedAt    time.Time `db:"created_at"`
}

// A QuestionSeenByUser carries, on top of the question itself, whether a
// given user already voted on it. VoterID is only valid when a ledger row
// exists for that user.
type QuestionSeenByUser struct {
	Question
	VoterID sql.NullInt64 `db:"voter_id"`
}

func (q *QuestionSeenByUser) Voted() bool {
	return q.VoterID.Valid
}

func NewQuestion(title string, body string, authorID int64) *Question {
	return &Question{
		Title:     title,
		Body:      body,
		Score:     0,
		AuthorID:  authorID,
		CreatedAt: NowFunc(),
	}
}

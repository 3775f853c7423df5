package askme

import (
	"database/sql"
	"time"
)

// An Answer belongs to exactly one question. At most one answer per
// question carries Accepted=true, enforced both by the accept workflow and
// by a partial unique index in the schema.
type Answer struct {
	ID         int64     `db:"id"`
	QuestionID int64     `db:"question_id"`
	Body       string    `db:"body"`
	Score      int64     `db:"score"`
	Accepted   bool      `db:"accepted"`
	Author     string    `db:"author"`
	AuthorID   int64     `db:"author_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type AnswerSeenByUser struct {
	Answer
	VoterID sql.NullInt64 `db:"voter_id"`
}

func (a *AnswerSeenByUser) Voted() bool {
	return a.VoterID.Valid
}

func NewAnswer(questionID int64, body string, authorID int64) *Answer {
	return &Answer{
		QuestionID: questionID,
		Body:       body,
		Score:      0,
		AuthorID:   authorID,
		CreatedAt:  NowFunc(),
	}
}

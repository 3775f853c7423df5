package askme

import (
	"database/sql"
	"time"
)

// A Comment hangs off either a question or an answer, never both. The two
// nullable parent columns mirror that; resolving the owning question for an
// answer comment takes the extra hop through the answer.
type Comment struct {
	ID         int64         `db:"id"`
	QuestionID sql.NullInt64 `db:"question_id"`
	AnswerID   sql.NullInt64 `db:"answer_id"`
	Body       string        `db:"body"`
	Score      int64         `db:"score"`
	Author     string        `db:"author"`
	AuthorID   int64         `db:"author_id"`
	CreatedAt  time.Time     `db:"created_at"`
}

func NewQuestionComment(questionID int64, body string, authorID int64) *Comment {
	return &Comment{
		QuestionID: sql.NullInt64{Int64: questionID, Valid: true},
		Body:       body,
		AuthorID:   authorID,
		CreatedAt:  NowFunc(),
	}
}

func NewAnswerComment(answerID int64, body string, authorID int64) *Comment {
	return &Comment{
		AnswerID:  sql.NullInt64{Int64: answerID, Valid: true},
		Body:      body,
		AuthorID:  authorID,
		CreatedAt: NowFunc(),
	}
}

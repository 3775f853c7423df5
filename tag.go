package askme

import "time"

type Tag struct {
	ID             int64     `db:"id"`
	Label          string    `db:"label"`
	QuestionsCount int64     `db:"questions_count"`
	CreatedAt      time.Time `db:"created_at"`
}

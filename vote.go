package askme

import "time"

// ItemKind discriminates the three votable content kinds.
type ItemKind int

const (
	KindQuestion ItemKind = iota
	KindAnswer
	KindComment
)

func (k ItemKind) String() string {
	switch k {
	case KindQuestion:
		return "question"
	case KindAnswer:
		return "answer"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// A Vote row is the sole evidence that a user voted on an item. No
// direction is stored: once a user voted, up or down, they are done with
// that item for good.
type Vote struct {
	ID        int64     `db:"id"`
	ItemID    int64     `db:"item_id"`
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

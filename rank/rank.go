// Package rank computes the activity breakdown shown on profile pages.
// It is a read-only derived view: given the same underlying tables it must
// always produce the same numbers, and nothing else may use it as a source
// of truth.
package rank

// Per-category weights applied to authored content counts.
const (
	QuestionWeight = 5
	AnswerWeight   = 3
	CommentWeight  = 2
	AcceptWeight   = 3
	VoteWeight     = 1
)

// Totals are the raw per-user sums the store aggregates on each profile
// view.
type Totals struct {
	Questions     int64
	QuestionScore int64 // sum of the scores of authored questions
	Answers       int64
	AnswerScore   int64
	Comments      int64
	CommentScore  int64
	Accepts       int64
	VotesCast     int64
}

// A Breakdown is the ranking table of a profile page. The Score fields are
// weighted counts, the Rank fields are the summed scores of the authored
// content itself.
type Breakdown struct {
	QuestionScore int64
	QuestionRank  int64
	AnswerScore   int64
	AnswerRank    int64
	CommentScore  int64
	CommentRank   int64
	AcceptScore   int64
	VoteScore     int64
	RankPoints    int64
	Sum           int64
}

func Compute(t Totals) Breakdown {
	b := Breakdown{
		QuestionScore: QuestionWeight * t.Questions,
		QuestionRank:  t.QuestionScore,
		AnswerScore:   AnswerWeight * t.Answers,
		AnswerRank:    t.AnswerScore,
		CommentScore:  CommentWeight * t.Comments,
		CommentRank:   t.CommentScore,
		AcceptScore:   AcceptWeight * t.Accepts,
		VoteScore:     VoteWeight * t.VotesCast,
	}

	b.RankPoints = b.QuestionRank + b.AnswerRank + b.CommentRank
	b.Sum = b.QuestionScore + b.AnswerScore + b.CommentScore + b.AcceptScore + b.VoteScore + b.RankPoints

	return b
}

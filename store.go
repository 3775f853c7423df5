package askme

import "github.com/GunnarEriksson/askme/rank"

// Store is the persistence boundary of the application. Implementations
// must map their "no such row" condition to ErrNotFound and vote
// uniqueness violations to ErrAlreadyVoted.
type Store interface {
	Connect() error

	FindQuestion(id int64) (*Question, error)
	ListQuestions(page int, perPage int) ([]*Question, error)
	ListQuestionsWithVotes(userID int64, page int, perPage int) ([]*QuestionSeenByUser, error)
	ListQuestionsByTag(label string) ([]*Question, error)
	InsertQuestion(question *Question, tags []string) error

	FindAnswer(id int64) (*Answer, error)
	ListAnswers(questionID int64) ([]*Answer, error)
	ListAnswersWithVotes(questionID int64, userID int64) ([]*AnswerSeenByUser, error)
	InsertAnswer(answer *Answer) error

	FindComment(id int64) (*Comment, error)
	ListQuestionComments(questionID int64) ([]*Comment, error)
	ListAnswerComments(answerID int64) ([]*Comment, error)
	InsertComment(comment *Comment) error

	ListTags() ([]*Tag, error)

	FindUserByID(id int64) (*User, error)
	FindUserByAcronym(acronym string) (*User, error)
	ListUsers() ([]*User, error)
	CreateOrUpdateUser(acronym string, email string) (int64, error)
	UpdateUser(user *User) error

	// one Votable per content kind, all driving the same CastVote workflow
	QuestionVotes() Votable
	AnswerVotes() Votable
	CommentVotes() Votable

	// ActivityLedger
	RecordVoteCast(userID int64) error
	RecordAccept(userID int64) error

	// AcceptStore
	AcceptedAnswer(questionID int64) (int64, bool, error)
	SwapAcceptedAnswer(questionID int64, answerID int64) error

	// UserContributions aggregates the raw sums behind a profile page.
	UserContributions(userID int64) (rank.Totals, error)
}

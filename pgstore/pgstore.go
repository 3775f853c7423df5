package pgstore

import (
	"database/sql"
	"errors"
	"time"

	"github.com/GunnarEriksson/askme"
	"github.com/GunnarEriksson/askme/rank"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the class 23 error code Postgres returns when an
// insert collides with a unique index. For vote tables this is the whole
// AlreadyVoted mechanism: no check-then-insert, the index decides.
const uniqueViolation = pq.ErrorCode("23505")

// A PGStore is responsible of interacting with the storage layer using a
// Postgresql database.
type PGStore struct {
	dbString string
	db       *sqlx.DB
}

// New returns a PGStore configured for a given address string, using the
// "user=postgres dbname=askme ..." format.
func New(addr string) *PGStore {
	return &PGStore{
		dbString: addr,
	}
}

// Connect establish a connection with the database using the address given
// at initialization.
func (s *PGStore) Connect() error {
	db, err := sqlx.Connect("postgres", s.dbString)
	if err != nil {
		return err
	}

	s.db = db

	return nil
}

// DB returns the existing connection, making it suitable to perform
// requests not already supported by the store interface. If called while
// not connected, it will return nil.
func (s *PGStore) DB() *sqlx.DB {
	return s.db
}

const questionColumns = `questions.*, users.acronym AS author,
	(SELECT COUNT(*) FROM answers WHERE answers.question_id = questions.id) AS answers_count`

func (s *PGStore) FindQuestion(id int64) (*askme.Question, error) {
	question := askme.Question{}
	err := s.db.Get(&question,
		"SELECT "+questionColumns+" FROM questions JOIN users ON questions.author_id = users.id WHERE questions.id=$1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, askme.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &question, nil
}

// https://www.citusdata.com/blog/2016/03/30/five-ways-to-paginate/
func (s *PGStore) ListQuestions(page int, perPage int) ([]*askme.Question, error) {
	questions := []*askme.Question{}
	err := s.db.Select(&questions,
		"SELECT "+questionColumns+" FROM questions JOIN users ON questions.author_id = users.id ORDER BY questions.created_at DESC LIMIT $1 OFFSET $2",
		perPage, page*perPage)
	if err != nil {
		return nil, err
	}

	return questions, nil
}

func (s *PGStore) ListQuestionsWithVotes(userID int64, page int, perPage int) ([]*askme.QuestionSeenByUser, error) {
	questions := []*askme.QuestionSeenByUser{}
	err := s.db.Select(&questions,
		"SELECT "+questionColumns+`, question_votes.user_id AS voter_id
		FROM questions
		JOIN users ON questions.author_id = users.id
		LEFT JOIN question_votes ON question_votes.item_id = questions.id AND question_votes.user_id = $1
		ORDER BY questions.created_at DESC LIMIT $2 OFFSET $3`,
		userID, perPage, page*perPage)
	if err != nil {
		return nil, err
	}

	return questions, nil
}

func (s *PGStore) ListQuestionsByTag(label string) ([]*askme.Question, error) {
	questions := []*askme.Question{}
	err := s.db.Select(&questions,
		"SELECT "+questionColumns+` FROM questions
		JOIN users ON questions.author_id = users.id
		JOIN question_tags ON question_tags.question_id = questions.id
		JOIN tags ON tags.id = question_tags.tag_id
		WHERE tags.label = $1
		ORDER BY questions.created_at DESC`, label)
	if err != nil {
		return nil, err
	}

	return questions, nil
}

// InsertQuestion stores a question and links it to its tags, creating the
// tags that don't exist yet.
func (s *PGStore) InsertQuestion(question *askme.Question, tags []string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int64
	err = tx.Get(&id,
		"INSERT INTO questions (title, body, score, author_id, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		question.Title, question.Body, question.Score, question.AuthorID, question.CreatedAt)
	if err != nil {
		return err
	}

	for _, label := range tags {
		_, err = tx.Exec("INSERT INTO tags (label, created_at) VALUES ($1, $2) ON CONFLICT (label) DO NOTHING", label, time.Now())
		if err != nil {
			return err
		}

		var tagID int64
		err = tx.Get(&tagID, "SELECT id FROM tags WHERE label = $1", label)
		if err != nil {
			return err
		}

		_, err = tx.Exec("INSERT INTO question_tags (question_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", id, tagID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	question.ID = id

	return nil
}

func (s *PGStore) FindAnswer(id int64) (*askme.Answer, error) {
	answer := askme.Answer{}
	err := s.db.Get(&answer,
		"SELECT answers.*, users.acronym AS author FROM answers JOIN users ON answers.author_id = users.id WHERE answers.id=$1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, askme.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &answer, nil
}

func (s *PGStore) ListAnswers(questionID int64) ([]*askme.Answer, error) {
	answers := []*askme.Answer{}
	err := s.db.Select(&answers,
		`SELECT answers.*, users.acronym AS author FROM answers
		JOIN users ON answers.author_id = users.id
		WHERE question_id=$1
		ORDER BY answers.accepted DESC, answers.score DESC, answers.created_at ASC`, questionID)
	if err != nil {
		return nil, err
	}

	return answers, nil
}

func (s *PGStore) ListAnswersWithVotes(questionID int64, userID int64) ([]*askme.AnswerSeenByUser, error) {
	answers := []*askme.AnswerSeenByUser{}
	err := s.db.Select(&answers,
		`SELECT answers.*, users.acronym AS author, answer_votes.user_id AS voter_id
		FROM answers
		JOIN users ON answers.author_id = users.id
		LEFT JOIN answer_votes ON answer_votes.item_id = answers.id AND answer_votes.user_id = $2
		WHERE question_id=$1
		ORDER BY answers.accepted DESC, answers.score DESC, answers.created_at ASC`, questionID, userID)
	if err != nil {
		return nil, err
	}

	return answers, nil
}

func (s *PGStore) InsertAnswer(answer *askme.Answer) error {
	var id int64
	err := s.db.Get(&id,
		"INSERT INTO answers (question_id, body, score, accepted, author_id, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
		answer.QuestionID, answer.Body, answer.Score, answer.Accepted, answer.AuthorID, answer.CreatedAt)
	if err != nil {
		return err
	}

	answer.ID = id

	return nil
}

func (s *PGStore) FindComment(id int64) (*askme.Comment, error) {
	comment := askme.Comment{}
	err := s.db.Get(&comment,
		"SELECT comments.*, users.acronym AS author FROM comments JOIN users ON comments.author_id = users.id WHERE comments.id=$1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, askme.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

func (s *PGStore) ListQuestionComments(questionID int64) ([]*askme.Comment, error) {
	comments := []*askme.Comment{}
	err := s.db.Select(&comments,
		"SELECT comments.*, users.acronym AS author FROM comments JOIN users ON comments.author_id = users.id WHERE question_id=$1 ORDER BY comments.created_at ASC", questionID)
	if err != nil {
		return nil, err
	}

	return comments, nil
}

func (s *PGStore) ListAnswerComments(answerID int64) ([]*askme.Comment, error) {
	comments := []*askme.Comment{}
	err := s.db.Select(&comments,
		"SELECT comments.*, users.acronym AS author FROM comments JOIN users ON comments.author_id = users.id WHERE answer_id=$1 ORDER BY comments.created_at ASC", answerID)
	if err != nil {
		return nil, err
	}

	return comments, nil
}

func (s *PGStore) InsertComment(comment *askme.Comment) error {
	var id int64
	err := s.db.Get(&id,
		"INSERT INTO comments (question_id, answer_id, body, score, author_id, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
		comment.QuestionID, comment.AnswerID, comment.Body, comment.Score, comment.AuthorID, comment.CreatedAt)
	if err != nil {
		return err
	}

	comment.ID = id

	return nil
}

func (s *PGStore) ListTags() ([]*askme.Tag, error) {
	tags := []*askme.Tag{}
	err := s.db.Select(&tags,
		`SELECT tags.*, (SELECT COUNT(*) FROM question_tags WHERE question_tags.tag_id = tags.id) AS questions_count
		FROM tags ORDER BY tags.label ASC`)
	if err != nil {
		return nil, err
	}

	return tags, nil
}

func (s *PGStore) FindUserByID(id int64) (*askme.User, error) {
	user := askme.User{}
	err := s.db.Get(&user, "SELECT * FROM users WHERE id=$1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, askme.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindUserByAcronym returns nil without an error when no user carries the
// acronym, so callers can distinguish "not registered yet" from a failure.
func (s *PGStore) FindUserByAcronym(acronym string) (*askme.User, error) {
	user := askme.User{}
	err := s.db.Get(&user, "SELECT * FROM users WHERE acronym=$1", acronym)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *PGStore) ListUsers() ([]*askme.User, error) {
	users := []*askme.User{}
	err := s.db.Select(&users, "SELECT * FROM users ORDER BY activity_score DESC, acronym ASC")
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (s *PGStore) CreateOrUpdateUser(acronym string, email string) (int64, error) {
	var id int64
	now := time.Now()
	err := s.db.Get(&id,
		"INSERT INTO users (acronym, email, created_at, last_login_at) VALUES ($1, $2, $3, $4) ON CONFLICT (acronym) DO UPDATE SET last_login_at = $4 RETURNING id",
		acronym, email, now, now)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (s *PGStore) UpdateUser(user *askme.User) error {
	res, err := s.db.Exec("UPDATE users SET email = $2, settings = $3 WHERE id = $1",
		user.ID, user.Email, user.Settings)
	if err != nil {
		return err
	}

	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return askme.ErrNotFound
	}

	return nil
}

// RecordVoteCast credits a voter: one activity point, one more vote cast.
// Both counters move in a single atomic update.
func (s *PGStore) RecordVoteCast(userID int64) error {
	_, err := s.db.Exec(
		"UPDATE users SET activity_score = activity_score + $2, num_votes = num_votes + 1 WHERE id = $1",
		userID, rank.VoteWeight)
	return err
}

// RecordAccept credits the author of a freshly accepted answer.
func (s *PGStore) RecordAccept(userID int64) error {
	_, err := s.db.Exec(
		"UPDATE users SET activity_score = activity_score + $2, num_accepts = num_accepts + 1 WHERE id = $1",
		userID, rank.AcceptWeight)
	return err
}

func (s *PGStore) AcceptedAnswer(questionID int64) (int64, bool, error) {
	var id int64
	err := s.db.Get(&id, "SELECT id FROM answers WHERE question_id = $1 AND accepted", questionID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return id, true, nil
}

// SwapAcceptedAnswer clears the previously accepted answer of the question,
// if any, and marks the given one. Runs in a transaction so no observer can
// see two accepted answers, and the partial unique index in the schema
// backs that up.
func (s *PGStore) SwapAcceptedAnswer(questionID int64, answerID int64) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec("UPDATE answers SET accepted = FALSE WHERE question_id = $1 AND accepted", questionID)
	if err != nil {
		return err
	}

	res, err := tx.Exec("UPDATE answers SET accepted = TRUE WHERE id = $1 AND question_id = $2", answerID, questionID)
	if err != nil {
		return err
	}

	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return askme.ErrNotFound
	}

	return tx.Commit()
}

// UserContributions aggregates the raw sums behind a profile page. Content
// counts and accepted answers are recomputed from the content tables on
// every call; only the votes-cast count comes from the user row, there is
// no per-voter column on the ledger side to sum over cheaply.
func (s *PGStore) UserContributions(userID int64) (rank.Totals, error) {
	totals := rank.Totals{}

	row := struct {
		Count int64 `db:"count"`
		Score int64 `db:"score"`
	}{}

	err := s.db.Get(&row, "SELECT COUNT(*) AS count, COALESCE(SUM(score), 0) AS score FROM questions WHERE author_id = $1", userID)
	if err != nil {
		return totals, err
	}
	totals.Questions, totals.QuestionScore = row.Count, row.Score

	err = s.db.Get(&row, "SELECT COUNT(*) AS count, COALESCE(SUM(score), 0) AS score FROM answers WHERE author_id = $1", userID)
	if err != nil {
		return totals, err
	}
	totals.Answers, totals.AnswerScore = row.Count, row.Score

	err = s.db.Get(&row, "SELECT COUNT(*) AS count, COALESCE(SUM(score), 0) AS score FROM comments WHERE author_id = $1", userID)
	if err != nil {
		return totals, err
	}
	totals.Comments, totals.CommentScore = row.Count, row.Score

	err = s.db.Get(&totals.Accepts, "SELECT COUNT(*) FROM answers WHERE author_id = $1 AND accepted", userID)
	if err != nil {
		return totals, err
	}

	err = s.db.Get(&totals.VotesCast, "SELECT num_votes FROM users WHERE id = $1", userID)
	if err != nil {
		return totals, err
	}

	return totals, nil
}

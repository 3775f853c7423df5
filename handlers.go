package askme

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GunnarEriksson/askme/rank"
	"github.com/julienschmidt/httprouter"
)

// questionPresenter carries a question plus everything the templates need
// that isn't stored as-is.
type questionPresenter struct {
	ID           int64
	Title        string
	Body         template.HTML
	Score        int64
	Author       string
	AuthorID     int64
	AnswersCount int64
	CreatedAt    time.Time
	Voted        bool
	Pos          int
}

func newQuestionPresenter(q *Question) *questionPresenter {
	return &questionPresenter{
		ID:           q.ID,
		Title:        q.Title,
		Score:        q.Score,
		Author:       q.Author,
		AuthorID:     q.AuthorID,
		AnswersCount: q.AnswersCount,
		CreatedAt:    q.CreatedAt,
	}
}

func newQuestionPresenterWithPos(q *Question, pos int) *questionPresenter {
	p := newQuestionPresenter(q)
	p.Pos = pos
	return p
}

func newQuestionPresenterWithBody(q *Question) *questionPresenter {
	p := newQuestionPresenter(q)
	p.Body = renderBody(q.Body)
	return p
}

type commentPresenter struct {
	ID        int64
	Body      template.HTML
	Score     int64
	Author    string
	CreatedAt time.Time
}

func newCommentPresenter(c *Comment) *commentPresenter {
	return &commentPresenter{
		ID:        c.ID,
		Body:      renderBody(c.Body),
		Score:     c.Score,
		Author:    c.Author,
		CreatedAt: c.CreatedAt,
	}
}

type answerPresenter struct {
	ID        int64
	Body      template.HTML
	Score     int64
	Accepted  bool
	Author    string
	AuthorID  int64
	CreatedAt time.Time
	Voted     bool
	Comments  []*commentPresenter
}

// HandleIndex handles requests for the root path, listing paginated
// questions, newest first. If the client isn't authenticated, it serves a
// template with no voting nor answering capabilities.
func (s *Server) HandleIndex() httprouter.Handle {
	tmpl, err := template.New("index.html").Funcs(helpers).ParseFiles(
		"assets/templates/index.html",
		"assets/templates/_header.html",
		"assets/templates/_footer.html",
		"assets/templates/_question.html")
	if err != nil {
		s.Logger.Fatal().Err(err).Msg("Failed to load templates")
	}

	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		session := ctxSession(req.Context())

		if session != nil {
			s.handleAuthenticatedIndex(res, req, params, tmpl)
		} else {
			s.handleUnauthenticatedIndex(res, req, params, tmpl)
		}
	}
}

func (s *Server) handleAuthenticatedIndex(res http.ResponseWriter, req *http.Request, params httprouter.Params, tmpl *template.Template) {
	session := ctxSession(req.Context())

	userRecord, err := s.store.FindUserByAcronym(session.Login)
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to fetch user from db")
		http.Error(res, "Failed to fetch user from database", http.StatusInternalServerError)
		return
	}

	if userRecord == nil {
		// there is a session but no user in the database, wiping the session
		s.authService.Destroy(res, req)
		return
	}

	res.Header().Set("Content-Type", "text/html")

	var page int
	rawPage, ok := req.URL.Query()["page"]
	if ok && len(rawPage) > 0 {
		page, _ = strconv.Atoi(rawPage[0])
	}

	questions, err := s.store.ListQuestionsWithVotes(userRecord.ID, page, s.config.QuestionsPerPage)
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to list questions")
		http.Error(res, "Failed to list questions", http.StatusInternalServerError)
		return
	}

	presenters := []*questionPresenter{}
	for i, q := range questions {
		pos := 1 + i + (page * s.config.QuestionsPerPage)
		pr := newQuestionPresenterWithPos(&q.Question, pos)
		pr.Voted = q.Voted()
		presenters = append(presenters, pr)
	}

	vars := map[string]interface{}{
		"Questions": presenters,
		"Session":   session,
		"Flashes":   s.popFlashes(res, req),
		"NextPage":  page + 1,
		"PrevPage":  page - 1,
		"CurrPage":  page,
	}

	// HACK, not very elegant but does the job
	nextPage, err := s.store.ListQuestions(page+1, s.config.QuestionsPerPage)
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to list questions")
		http.Error(res, "Failed to list questions", http.StatusInternalServerError)
		return
	}
	if len(nextPage) == 0 {
		vars["NextPage"] = -1
	}

	err = tmpl.Execute(res, vars)
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to render template")
		http.Error(res, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

func (s *Server) handleUnauthenticatedIndex(res http.ResponseWriter, req *http.Request, params httprouter.Params, tmpl *template.Template) {
	res.Header().Set("Content-Type", "text/html")

	var page int
	rawPage, ok := req.URL.Query()["page"]
	if ok && len(rawPage) > 0 {
		page, _ = strconv.Atoi(rawPage[0])
	}

	questions, err := s.store.ListQuestions(page, s.config.QuestionsPerPage)
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to list questions")
		http.Error(res, "Failed to list questions", http.StatusInternalServerError)
		return
	}

	presenters := []*questionPresenter{}
	for i, q := range questions {
		pos := 1 + i + (page * s.config.QuestionsPerPage)
		presenters = append(presenters, newQuestionPresenterWithPos(q, pos))
	}

	vars := map[string]interface{}{
		"Questions": presenters,
		"Session":   nil,
		"Flashes":   s.popFlashes(res, req),
		"NextPage":  page + 1,
		"PrevPage":  page - 1,
		"CurrPage":  page,
	}

	nextPage, err := s.store.ListQuestions(page+1, s.config.QuestionsPerPage)
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to list questions")
		http.Error(res, "Failed to list questions", http.StatusInternalServerError)
		return
	}
	if len(nextPage) == 0 {
		vars["NextPage"] = -1
	}

	err = tmpl.Execute(res, vars)
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to render template")
		http.Error(res, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

// HandleShowQuestion handles requests to access a particular question,
// showing its answers, accepted one first, and their comments. When the
// viewer is the question's author, the page arms the accept action for
// each shown answer.
func (s *Server) HandleShowQuestion() httprouter.Handle {
	tmpl, err := template.New("show.html").Funcs(helpers).ParseFiles(
		"assets/templates/show.html",
		"assets/templates/_answer.html",
		"assets/templates/_comment.html",
		"assets/templates/_comment_form.html",
		"assets/templates/_header.html",
		"assets/templates/_footer.html")
	if err != nil {
		s.Logger.Fatal().Err(err).Msg("Failed to load template")
	}

	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		res.Header().Set("Content-Type", "text/html")

		session := ctxSession(req.Context())
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		question, err := s.store.FindQuestion(id)
		if err != nil {
			if e := Maybe404(err); e.RespondError(res, req) {
				return
			}
			s.Logger.Error().Err(err).Int64("id", id).Msg("Failed to find question")
			http.Error(res, "Failed to find question", http.StatusInternalServerError)
			return
		}

		var userRecord *User
		if session != nil {
			userRecord, err = s.store.FindUserByAcronym(session.Login)
			if err != nil {
				s.Logger.Error().Err(err).Msg("Failed to fetch user from db")
				http.Error(res, "Failed to fetch user from database", http.StatusInternalServerError)
				return
			}
		}

		answers, err := s.listAnswerPresenters(question, userRecord)
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to list answers")
			http.Error(res, "Failed to list answers", http.StatusInternalServerError)
			return
		}

		comments, err := s.store.ListQuestionComments(question.ID)
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to list comments")
			http.Error(res, "Failed to list comments", http.StatusInternalServerError)
			return
		}

		commentPresenters := make([]*commentPresenter, 0, len(comments))
		for _, c := range comments {
			commentPresenters = append(commentPresenters, newCommentPresenter(c))
		}

		isAuthor := userRecord != nil && userRecord.ID == question.AuthorID
		if isAuthor {
			s.issueToken(res, req, "accept", question.ID)
		}

		err = tmpl.Execute(res, map[string]interface{}{
			"Question":  newQuestionPresenterWithBody(question),
			"Answers":   answers,
			"Comments":  commentPresenters,
			"Session":   session,
			"Flashes":   s.popFlashes(res, req),
			"CanAccept": isAuthor,
		})

		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to render template")
			http.Error(res, "Failed to render template", http.StatusInternalServerError)
			return
		}
	}
}

// listAnswerPresenters loads a question's answers, their comments, and the
// viewer's prior votes when a user record is given. Accepted answer first,
// then by score.
func (s *Server) listAnswerPresenters(question *Question, userRecord *User) ([]*answerPresenter, error) {
	presenters := []*answerPresenter{}

	push := func(a *Answer, voted bool) error {
		comments, err := s.store.ListAnswerComments(a.ID)
		if err != nil {
			return err
		}

		cc := make([]*commentPresenter, 0, len(comments))
		for _, c := range comments {
			cc = append(cc, newCommentPresenter(c))
		}

		presenters = append(presenters, &answerPresenter{
			ID:        a.ID,
			Body:      renderBody(a.Body),
			Score:     a.Score,
			Accepted:  a.Accepted,
			Author:    a.Author,
			AuthorID:  a.AuthorID,
			CreatedAt: a.CreatedAt,
			Voted:     voted,
			Comments:  cc,
		})
		return nil
	}

	if userRecord != nil {
		answers, err := s.store.ListAnswersWithVotes(question.ID, userRecord.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range answers {
			if err := push(&a.Answer, a.Voted()); err != nil {
				return nil, err
			}
		}
	} else {
		answers, err := s.store.ListAnswers(question.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range answers {
			if err := push(a, false); err != nil {
				return nil, err
			}
		}
	}

	return presenters, nil
}

// HandleSubmit handles requests to get the form for asking a question. It
// redirects to the root path if not authenticated.
func (s *Server) HandleSubmit() httprouter.Handle {
	tmpl, err := template.New("submit.html").Funcs(helpers).ParseFiles(
		"assets/templates/submit.html",
		"assets/templates/_header.html",
		"assets/templates/_footer.html")
	if err != nil {
		s.Logger.Fatal().Err(err).Msg("Failed to parse template")
	}

	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		res.Header().Set("Content-Type", "text/html")

		session := ctxSession(req.Context())

		// redirect if unauthenticated
		if session == nil {
			http.Redirect(res, req, "/", http.StatusFound)
			return
		}

		vars := map[string]interface{}{
			"Session": session,
			"Flashes": s.popFlashes(res, req),
		}

		err = tmpl.Execute(res, vars)
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to render template")
			http.Error(res, "Failed to render template", http.StatusInternalServerError)
			return
		}
	}
}

// HandleSubmitAction handles requests for when a user submits the question
// form. In case someone bypasses the client-side form validations with
// invalid form data, it returns an HTTP error.
func (s *Server) HandleSubmitAction() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		res.Header().Set("Content-Type", "text/html")

		err := req.ParseForm()
		if err != nil {
			s.Logger.Warn().Err(err).Msg("Failed to parse form")
			http.Error(res, "Failed to parse form", http.StatusBadRequest)
			return
		}

		title := strings.TrimSpace(req.FormValue("title"))
		body := strings.TrimSpace(req.FormValue("body"))
		rawTags := strings.TrimSpace(req.FormValue("tags"))

		if title == "" || len(title) > 128 {
			http.Error(res, "", http.StatusBadRequest)
			return
		}

		if body == "" {
			http.Error(res, "", http.StatusBadRequest)
			return
		}

		var tags []string
		for _, t := range strings.Split(rawTags, ",") {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				tags = append(tags, t)
			}
		}

		userRecord := ctxUser(req.Context())
		question := NewQuestion(title, body, userRecord.ID)

		err = s.store.InsertQuestion(question, tags)
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to insert question")
			s.addFlash(res, req, FlashWarning, "Your question could not be saved.")
			http.Redirect(res, req, "/submit", http.StatusFound)
			return
		}

		question.Author = userRecord.Acronym

		for _, h := range s.questionHooks {
			err := h(question)
			if err != nil {
				s.Logger.Warn().Err(err).Msg("question hook failed")
			}
		}

		http.Redirect(res, req, "/questions/"+strconv.FormatInt(question.ID, 10), http.StatusFound)
	}
}

// HandleSubmitAnswerAction handles requests for when a user submits an
// answer on a question.
func (s *Server) HandleSubmitAnswerAction() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		res.Header().Set("Content-Type", "text/html")

		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		question, err := s.store.FindQuestion(id)
		if err != nil {
			if e := Maybe404(err); e.RespondError(res, req) {
				return
			}
			s.Logger.Error().Err(err).Int64("id", id).Msg("Failed to find question")
			http.Error(res, "Failed to find question", http.StatusInternalServerError)
			return
		}

		err = req.ParseForm()
		if err != nil {
			s.Logger.Warn().Err(err).Msg("Failed to parse form")
			http.Error(res, "Failed to parse form", http.StatusBadRequest)
			return
		}

		body := strings.TrimSpace(req.FormValue("body"))
		if body == "" {
			http.Error(res, "", http.StatusBadRequest)
			return
		}

		userRecord := ctxUser(req.Context())
		answer := NewAnswer(question.ID, body, userRecord.ID)

		err = s.store.InsertAnswer(answer)
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to insert answer")
			s.addFlash(res, req, FlashWarning, "Your answer could not be saved.")
		}

		http.Redirect(res, req, questionPath(question.ID), http.StatusFound)
	}
}

// HandleSubmitQuestionCommentAction handles comment submissions on a
// question.
func (s *Server) HandleSubmitQuestionCommentAction() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		question, err := s.store.FindQuestion(id)
		if err != nil {
			if e := Maybe404(err); e.RespondError(res, req) {
				return
			}
			s.Logger.Error().Err(err).Int64("id", id).Msg("Failed to find question")
			http.Error(res, "Failed to find question", http.StatusInternalServerError)
			return
		}

		userRecord := ctxUser(req.Context())
		body := strings.TrimSpace(req.FormValue("body"))
		if body == "" {
			http.Error(res, "", http.StatusBadRequest)
			return
		}

		comment := NewQuestionComment(question.ID, body, userRecord.ID)
		s.insertCommentAndRedirect(res, req, question, comment)
	}
}

// HandleSubmitAnswerCommentAction handles comment submissions on an answer.
func (s *Server) HandleSubmitAnswerCommentAction() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		answer, err := s.store.FindAnswer(id)
		if err != nil {
			if e := Maybe404(err); e.RespondError(res, req) {
				return
			}
			s.Logger.Error().Err(err).Int64("id", id).Msg("Failed to find answer")
			http.Error(res, "Failed to find answer", http.StatusInternalServerError)
			return
		}

		question, err := s.store.FindQuestion(answer.QuestionID)
		if err != nil {
			if e := Maybe404(err); e.RespondError(res, req) {
				return
			}
			s.Logger.Error().Err(err).Msg("Failed to find question")
			http.Error(res, "Failed to find question", http.StatusInternalServerError)
			return
		}

		userRecord := ctxUser(req.Context())
		body := strings.TrimSpace(req.FormValue("body"))
		if body == "" {
			http.Error(res, "", http.StatusBadRequest)
			return
		}

		comment := NewAnswerComment(answer.ID, body, userRecord.ID)
		s.insertCommentAndRedirect(res, req, question, comment)
	}
}

func (s *Server) insertCommentAndRedirect(res http.ResponseWriter, req *http.Request, question *Question, comment *Comment) {
	err := s.store.InsertComment(comment)
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to insert comment")
		s.addFlash(res, req, FlashWarning, "Your comment could not be saved.")
		http.Redirect(res, req, questionPath(question.ID), http.StatusFound)
		return
	}

	comment.Author = ctxUser(req.Context()).Acronym
	for _, h := range s.commentHooks {
		err := h(question, comment)
		if err != nil {
			s.Logger.Warn().Err(err).Msg("comment hook failed")
		}
	}

	http.Redirect(res, req, questionPath(question.ID), http.StatusFound)
}

// HandleVoteQuestionAction handles requests to vote on a question.
func (s *Server) HandleVoteQuestionAction() httprouter.Handle {
	return s.voteHandler(KindQuestion, func() Votable { return s.store.QuestionVotes() })
}

// HandleVoteAnswerAction handles requests to vote on an answer.
func (s *Server) HandleVoteAnswerAction() httprouter.Handle {
	return s.voteHandler(KindAnswer, func() Votable { return s.store.AnswerVotes() })
}

// HandleVoteCommentAction handles requests to vote on a comment.
func (s *Server) HandleVoteCommentAction() httprouter.Handle {
	return s.voteHandler(KindComment, func() Votable { return s.store.CommentVotes() })
}

// voteHandler runs the vote workflow for one content kind and redirects
// back to the owning question whatever the outcome, surfacing rejections as
// flash messages.
func (s *Server) voteHandler(kind ItemKind, items func() Votable) httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		delta := Upvote
		if req.FormValue("dir") == "down" {
			delta = Downvote
		}

		votes := items()

		questionID, err := votes.OwningQuestion(id)
		if err != nil {
			if e := Maybe404(err); e.RespondError(res, req) {
				return
			}
			s.Logger.Error().Err(err).Str("kind", kind.String()).Int64("id", id).Msg("Failed to resolve owning question")
			http.Error(res, "Failed to resolve owning question", http.StatusInternalServerError)
			return
		}

		userRecord := ctxUser(req.Context())

		_, err = CastVote(votes, s.store, id, userRecord.ID, delta)
		switch {
		case err == nil:
		case errors.Is(err, ErrAlreadyVoted):
			s.addFlash(res, req, FlashNotice, "You have already voted on this item.")
		case errors.Is(err, ErrOwnItem):
			s.addFlash(res, req, FlashNotice, "You cannot vote on your own contribution.")
		case errors.Is(err, ErrNotFound):
			if e := Maybe404(err); e.RespondError(res, req) {
				return
			}
		default:
			s.Logger.Error().Err(err).Str("kind", kind.String()).Int64("id", id).Msg("Failed to register vote")
			s.addFlash(res, req, FlashWarning, "Your vote could not be saved.")
		}

		http.Redirect(res, req, questionPath(questionID), http.StatusFound)
	}
}

// HandleAcceptAnswerAction handles requests to accept an answer. The accept
// action must have been armed by viewing the question page; the capability
// token is single use and expires.
func (s *Server) HandleAcceptAnswerAction() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		answerID, err := strconv.ParseInt(params.ByName("answer_id"), 10, 64)
		if err != nil {
			http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		question, err := s.store.FindQuestion(id)
		if err != nil {
			if e := Maybe404(err); e.RespondError(res, req) {
				return
			}
			s.Logger.Error().Err(err).Int64("id", id).Msg("Failed to find question")
			http.Error(res, "Failed to find question", http.StatusInternalServerError)
			return
		}

		answer, err := s.store.FindAnswer(answerID)
		if err != nil {
			if e := Maybe404(err); e.RespondError(res, req) {
				return
			}
			s.Logger.Error().Err(err).Int64("id", answerID).Msg("Failed to find answer")
			http.Error(res, "Failed to find answer", http.StatusInternalServerError)
			return
		}

		if !s.consumeToken(res, req, "accept", question.ID) {
			s.addFlash(res, req, FlashWarning, "The accept action expired, please try again.")
			http.Redirect(res, req, questionPath(question.ID), http.StatusFound)
			return
		}

		userRecord := ctxUser(req.Context())

		err = AcceptAnswer(s.store, s.store, question, answer, userRecord.ID)
		switch {
		case err == nil:
			s.addFlash(res, req, FlashNotice, "Answer accepted.")
		case errors.Is(err, ErrNotQuestionAuthor):
			s.addFlash(res, req, FlashNotice, "Only the author of the question can accept an answer.")
		case errors.Is(err, ErrNotFound):
			http.Error(res, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		default:
			s.Logger.Error().Err(err).Int64("answer_id", answerID).Msg("Failed to accept answer")
			s.addFlash(res, req, FlashWarning, "The answer could not be accepted.")
		}

		http.Redirect(res, req, questionPath(question.ID), http.StatusFound)
	}
}

// HandleUsers handles requests listing users, most active first.
func (s *Server) HandleUsers() httprouter.Handle {
	tmpl, err := template.New("users.html").Funcs(helpers).ParseFiles(
		"assets/templates/users.html",
		"assets/templates/_header.html",
		"assets/templates/_footer.html")
	if err != nil {
		s.Logger.Fatal().Err(err).Msg("Failed to parse template")
	}

	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		res.Header().Set("Content-Type", "text/html")

		users, err := s.store.ListUsers()
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to list users")
			http.Error(res, "Failed to list users", http.StatusInternalServerError)
			return
		}

		err = tmpl.Execute(res, map[string]interface{}{
			"Users":   users,
			"Session": ctxSession(req.Context()),
			"Flashes": s.popFlashes(res, req),
		})
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to render template")
			http.Error(res, "Failed to render template", http.StatusInternalServerError)
			return
		}
	}
}

// HandleUserProfile handles requests for a user profile, showing the
// activity breakdown. The breakdown is recomputed on every view from the
// content tables; only the flat counters on the user row are stored.
func (s *Server) HandleUserProfile() httprouter.Handle {
	tmpl, err := template.New("user.html").Funcs(helpers).ParseFiles(
		"assets/templates/user.html",
		"assets/templates/_header.html",
		"assets/templates/_footer.html")
	if err != nil {
		s.Logger.Fatal().Err(err).Msg("Failed to parse template")
	}

	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		res.Header().Set("Content-Type", "text/html")

		acronym := params.ByName("acronym")
		user, err := s.store.FindUserByAcronym(acronym)
		if err != nil {
			s.Logger.Error().Err(err).Str("acronym", acronym).Msg("Failed to find user")
			http.Error(res, "Failed to fetch user from database", http.StatusInternalServerError)
			return
		}

		if user == nil {
			http.Error(res, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		totals, err := s.store.UserContributions(user.ID)
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to aggregate contributions")
			http.Error(res, "Failed to aggregate contributions", http.StatusInternalServerError)
			return
		}

		err = tmpl.Execute(res, map[string]interface{}{
			"User":      user,
			"Totals":    totals,
			"Breakdown": rank.Compute(totals),
			"Session":   ctxSession(req.Context()),
			"Flashes":   s.popFlashes(res, req),
		})
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to render template")
			http.Error(res, "Failed to render template", http.StatusInternalServerError)
			return
		}
	}
}

// HandleTags handles requests listing all tags with their usage counts.
func (s *Server) HandleTags() httprouter.Handle {
	tmpl, err := template.New("tags.html").Funcs(helpers).ParseFiles(
		"assets/templates/tags.html",
		"assets/templates/_header.html",
		"assets/templates/_footer.html")
	if err != nil {
		s.Logger.Fatal().Err(err).Msg("Failed to parse template")
	}

	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		res.Header().Set("Content-Type", "text/html")

		tags, err := s.store.ListTags()
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to list tags")
			http.Error(res, "Failed to list tags", http.StatusInternalServerError)
			return
		}

		err = tmpl.Execute(res, map[string]interface{}{
			"Tags":    tags,
			"Session": ctxSession(req.Context()),
			"Flashes": s.popFlashes(res, req),
		})
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to render template")
			http.Error(res, "Failed to render template", http.StatusInternalServerError)
			return
		}
	}
}

// HandleShowTag handles requests listing the questions carrying a tag.
func (s *Server) HandleShowTag() httprouter.Handle {
	tmpl, err := template.New("tag.html").Funcs(helpers).ParseFiles(
		"assets/templates/tag.html",
		"assets/templates/_header.html",
		"assets/templates/_footer.html",
		"assets/templates/_question.html")
	if err != nil {
		s.Logger.Fatal().Err(err).Msg("Failed to parse template")
	}

	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		res.Header().Set("Content-Type", "text/html")

		label := params.ByName("label")
		questions, err := s.store.ListQuestionsByTag(label)
		if err != nil {
			s.Logger.Error().Err(err).Str("label", label).Msg("Failed to list questions by tag")
			http.Error(res, "Failed to list questions", http.StatusInternalServerError)
			return
		}

		presenters := []*questionPresenter{}
		for i, q := range questions {
			presenters = append(presenters, newQuestionPresenterWithPos(q, i+1))
		}

		err = tmpl.Execute(res, map[string]interface{}{
			"Label":     label,
			"Questions": presenters,
			"Session":   ctxSession(req.Context()),
			"Flashes":   s.popFlashes(res, req),
		})
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to render template")
			http.Error(res, "Failed to render template", http.StatusInternalServerError)
			return
		}
	}
}

func questionPath(id int64) string {
	return "/questions/" + strconv.FormatInt(id, 10)
}

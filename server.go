package askme

import (
	"context"
	"net/http"

	"github.com/GunnarEriksson/askme/authentication"
	"github.com/gorilla/sessions"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	_ "github.com/lib/pq"
)

// A QuestionHook runs right after a question was stored, eg. to announce it
// on a chat channel. A CommentHook does the same for comments.
type QuestionHook func(question *Question) error
type CommentHook func(question *Question, comment *Comment) error

type ServerConfig struct {
	Addr             string
	QuestionsPerPage int
	SessionSecret    string
}

type Server struct {
	Logger          zerolog.Logger
	config          *ServerConfig
	store           Store
	router          *httprouter.Router
	done            chan struct{}
	idleConnsClosed chan struct{}
	sessionStore    *sessions.CookieStore
	authService     authentication.AuthService
	questionHooks   []QuestionHook
	commentHooks    []CommentHook
}

func NewServer(config *ServerConfig, logger zerolog.Logger, store Store, authService authentication.AuthService) *Server {
	return &Server{
		config:          config,
		store:           store,
		authService:     authService,
		router:          httprouter.New(),
		Logger:          logger,
		sessionStore:    sessions.NewCookieStore([]byte(config.SessionSecret)),
		done:            make(chan struct{}),
		idleConnsClosed: make(chan struct{}),
	}
}

// AddQuestionHook registers a hook called for every newly submitted
// question.
func (s *Server) AddQuestionHook(h QuestionHook) {
	s.questionHooks = append(s.questionHooks, h)
}

// AddCommentHook registers a hook called for every newly submitted comment.
func (s *Server) AddCommentHook(h CommentHook) {
	s.commentHooks = append(s.commentHooks, h)
}

func (s *Server) Prepare() error {
	// database
	err := s.store.Connect()
	if err != nil {
		return err
	}

	// routes
	s.router.GET("/oauth/start", s.HandleOAuthStart())
	s.router.GET("/oauth/authorize", s.HandleOAuthCallback())
	s.router.GET("/oauth/destroy", s.HandleOAuthDestroy())
	s.router.ServeFiles("/static/*filepath", http.Dir("assets/static"))

	withMiddlewares(func(m middleware) {
		s.router.GET("/", m(s.HandleIndex()))
		s.router.GET("/questions/:id", m(s.HandleShowQuestion()))
		s.router.GET("/submit", m(s.HandleSubmit()))
		s.router.GET("/users", m(s.HandleUsers()))
		s.router.GET("/users/:acronym", m(s.HandleUserProfile()))
		s.router.GET("/tags", m(s.HandleTags()))
		s.router.GET("/tags/:label", m(s.HandleShowTag()))
	}, s.loadSessionMiddleware())

	withMiddlewares(func(m middleware) {
		s.router.POST("/submit", m(s.HandleSubmitAction()))
		s.router.POST("/questions/:id/answers", m(s.HandleSubmitAnswerAction()))
		s.router.POST("/questions/:id/comments", m(s.HandleSubmitQuestionCommentAction()))
		s.router.POST("/answers/:id/comments", m(s.HandleSubmitAnswerCommentAction()))
		s.router.POST("/questions/:id/vote", m(s.HandleVoteQuestionAction()))
		s.router.POST("/answers/:id/vote", m(s.HandleVoteAnswerAction()))
		s.router.POST("/comments/:id/vote", m(s.HandleVoteCommentAction()))
		s.router.POST("/questions/:id/accept/:answer_id", m(s.HandleAcceptAnswerAction()))
	}, s.loadSessionMiddleware(), s.loadUserMiddleware())

	return nil
}

func (s *Server) Start() error {
	httpServer := http.Server{Addr: s.config.Addr, Handler: s}

	go func() {
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			// should probably bubble this up
			s.Logger.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-s.done

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return err
	}
	close(s.idleConnsClosed)

	return nil
}

func (s *Server) Stop() {
	close(s.done)
	<-s.idleConnsClosed
}

func (s *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(res, req)
}

// HandleOAuthStart handles requests starting the OAuth authentication
// process.
func (s *Server) HandleOAuthStart() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		s.authService.Start(res, req)
	}
}

// HandleOAuthCallback handles requests of the OAuth provider redirecting
// the user back after successfully authenticating on its side.
func (s *Server) HandleOAuthCallback() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		s.authService.Callback(res, req, func(u *authentication.User) error {
			_, err := s.store.CreateOrUpdateUser(u.Login, u.Email)
			return err
		})
	}
}

// HandleOAuthDestroy handles requests destroying the current session.
func (s *Server) HandleOAuthDestroy() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		s.authService.Destroy(res, req)
	}
}

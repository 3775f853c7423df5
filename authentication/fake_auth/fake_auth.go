// Package fake_auth provides an AuthService that authenticates anybody,
// for development and integration tests.
package fake_auth

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/GunnarEriksson/askme/authentication"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const sessionKey = "fake_auth_key"

type Handler struct {
	sessionStore *sessions.CookieStore
	logger       zerolog.Logger
	serverUrl    string
	counter      int // used to return a different user for each auth
}

func New(sessionStore *sessions.CookieStore, logger zerolog.Logger) *Handler {
	return &Handler{
		sessionStore: sessionStore,
		logger:       logger,
	}
}

func (h *Handler) SetServerURL(url string) {
	h.serverUrl = url
}

// SetCounter resets the login counter, letting tests authenticate as a
// specific user again. The next sign-in gets the suffix n+1.
func (h *Handler) SetCounter(n int) {
	h.counter = n
}

func (h *Handler) loadUserData(req *http.Request, res http.ResponseWriter) (*authentication.User, error) {
	session, err := h.sessionStore.Get(req, sessionKey)
	if err != nil {
		return nil, err
	}

	userSession := &authentication.User{
		Login:     "fakeLogin" + strconv.Itoa(h.counter),
		Email:     "fake" + strconv.Itoa(h.counter) + "@example.com",
		AvatarURL: "https://www.placecage.com/g/200/200",
	}
	b, err := json.Marshal(userSession)
	if err != nil {
		return nil, err
	}

	session.Values["user"] = b
	if err := session.Save(req, res); err != nil {
		return nil, err
	}

	return userSession, nil
}

func (h *Handler) CurrentUser(req *http.Request) (*authentication.User, error) {
	session, err := h.sessionStore.Get(req, sessionKey)
	if err != nil {
		return nil, err
	}

	var b []byte
	b, ok := session.Values["user"].([]byte)
	if !ok {
		h.logger.Debug().Msg("no session")
		return nil, nil
	}

	var userSession authentication.User
	err = json.Unmarshal(b, &userSession)
	if err != nil {
		return nil, err
	}

	return &userSession, nil
}

func (h *Handler) Start(res http.ResponseWriter, req *http.Request) {
	h.counter++

	session, err := h.sessionStore.Get(req, sessionKey)
	if err != nil {
		http.Error(res, "cannot get session", http.StatusInternalServerError)
		return
	}

	session.Values["state"] = "state"
	err = session.Save(req, res)
	if err != nil {
		http.Error(res, "cannot save cookies", http.StatusInternalServerError)
		return
	}

	http.Redirect(res, req, h.serverUrl+"/oauth/authorize", http.StatusFound)
}

func (h *Handler) Callback(res http.ResponseWriter, req *http.Request, beforeWriteCallback func(*authentication.User) error) {
	u, err := h.loadUserData(req, res)
	if err != nil {
		http.Error(res, "couldn't load user data from fake auth", http.StatusInternalServerError)
		return
	}

	err = beforeWriteCallback(u)
	if err != nil {
		http.Error(res, "failed to execute oauth callback", http.StatusInternalServerError)
		return
	}

	http.Redirect(res, req, "/", http.StatusFound)
}

func (h *Handler) Destroy(res http.ResponseWriter, req *http.Request) {
	session, err := h.sessionStore.Get(req, sessionKey)
	if err != nil {
		http.Error(res, "aborted", http.StatusInternalServerError)
		return
	}

	session.Options.MaxAge = -1
	session.Save(req, res)

	http.Redirect(res, req, "/", http.StatusFound)
}

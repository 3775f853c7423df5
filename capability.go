package askme

import (
	"net/http"
	"time"
)

const (
	flashSessionKey = "askme-flash"
	tokenTTL        = 10 * time.Minute
)

// An actionToken is a short-lived, single-use capability granting
// permission to complete the next step of a multi-step workflow. It is
// bound to an action kind and a subject id, so arming one action cannot
// authorize another, and it lives in the signed cookie session rather than
// in ambient server state.
type actionToken struct {
	Kind     string
	Subject  int64
	IssuedAt time.Time
}

// issueToken arms an action of the given kind on the given subject. A
// previously issued token of the same kind is overwritten.
func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, kind string, subject int64) {
	session, err := s.sessionStore.Get(r, flashSessionKey)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("Failed to get token session")
		return
	}

	session.Values["token:"+kind] = actionToken{
		Kind:     kind,
		Subject:  subject,
		IssuedAt: NowFunc(),
	}

	if err := session.Save(r, w); err != nil {
		s.Logger.Warn().Err(err).Msg("Failed to save token session")
	}
}

// consumeToken redeems the token of the given kind for the given subject.
// The token is cleared whether or not redemption succeeds; expired or
// mismatched tokens redeem as false.
func (s *Server) consumeToken(w http.ResponseWriter, r *http.Request, kind string, subject int64) bool {
	session, err := s.sessionStore.Get(r, flashSessionKey)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("Failed to get token session")
		return false
	}

	v, ok := session.Values["token:"+kind]
	if !ok {
		return false
	}

	delete(session.Values, "token:"+kind)
	if err := session.Save(r, w); err != nil {
		s.Logger.Warn().Err(err).Msg("Failed to save token session")
		return false
	}

	token, ok := v.(actionToken)
	if !ok {
		return false
	}

	if token.Subject != subject {
		return false
	}

	if NowFunc().Sub(token.IssuedAt) > tokenTTL {
		return false
	}

	return true
}

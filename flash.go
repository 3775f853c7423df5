package askme

import (
	"encoding/gob"
	"net/http"
)

// Flash severities. Anything that halts a workflow without being a hard
// failure ends up as one of these on the next page view.
const (
	FlashNotice  = "notice"
	FlashWarning = "warning"
	FlashError   = "error"
)

type Flash struct {
	Severity string
	Message  string
}

func init() {
	// flashes and capability tokens travel in the cookie session
	gob.Register(&Flash{})
	gob.Register(actionToken{})
}

// addFlash queues a message for the next rendered page. Failing to save the
// session only loses the message, so it is logged and otherwise ignored.
func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, severity string, message string) {
	session, err := s.sessionStore.Get(r, flashSessionKey)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("Failed to get flash session")
		return
	}

	session.AddFlash(&Flash{Severity: severity, Message: message})
	if err := session.Save(r, w); err != nil {
		s.Logger.Warn().Err(err).Msg("Failed to save flash session")
	}
}

// popFlashes drains and returns all queued flash messages.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []*Flash {
	session, err := s.sessionStore.Get(r, flashSessionKey)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("Failed to get flash session")
		return nil
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}

	if err := session.Save(r, w); err != nil {
		s.Logger.Warn().Err(err).Msg("Failed to save flash session")
	}

	flashes := make([]*Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(*Flash); ok {
			flashes = append(flashes, f)
		}
	}

	return flashes
}

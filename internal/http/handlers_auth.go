package http

import (
	"net/http"

	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/log"
	"github.com/jfprgin/home-budget/internal/services"
)

// requirePresent records MsgRequired for every absent or empty key.
func requirePresent(p *RequestBodyParser, keys ...string) error {
	verr := &core.ValidationError{}
	for _, k := range keys {
		switch {
		case !p.Has(k):
			verr.Add(k, core.MsgRequired)
		case p.IsNull(k):
			verr.Add(k, msgNull)
		case p.Value(k) == "":
			verr.Add(k, core.MsgBlank)
		}
	}
	return verr.OrNil()
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	p, err := s.parseBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	u, pair, err := s.svc.Auth.Register(r.Context(), core.Registration{
		Username:  p.Get("username"),
		Email:     p.Get("email"),
		Password:  p.Value("password"),
		Password2: p.Value("password2"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.countWrite(&s.appMetrics.usersRegistered)

	log.FromContext(r.Context()).WithComponent(log.ComponentAuth).InfoContext(r.Context(), "User registered",
		log.FieldOperation, log.OpRegister,
		log.FieldUserID, u.ID)

	NewJSONResponse().Status(http.StatusCreated).Body(map[string]string{
		"username": u.Username,
		"refresh":  pair.Refresh,
		"access":   pair.Access,
	}).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p, err := s.parseBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := requirePresent(p, "username", "password"); err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := s.svc.Auth.Login(r.Context(), p.Get("username"), p.Value("password"))
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentAuth).WarnContext(r.Context(), "Login failed",
			log.FieldOperation, log.OpLogin,
			log.FieldClientIP, s.securityDetector.ExtractClientIP(r))
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(pair).Write(w)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	p, err := s.parseBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := requirePresent(p, "refresh"); err != nil {
		writeError(w, r, err)
		return
	}

	access, err := s.svc.Auth.Refresh(r.Context(), p.Get("refresh"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]string{"access": access}).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, u core.User) {
	p, err := s.parseBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := requirePresent(p, "refresh"); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.Auth.Logout(r.Context(), u.ID, p.Get("refresh")); err != nil {
		writeError(w, r, err)
		return
	}
	ErrorResponse(http.StatusResetContent, "Successfully logged out.").Write(w)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, u core.User) {
	p, err := s.parseBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := s.svc.Auth.ChangePassword(r.Context(), u, services.PasswordChange{
		Current:      p.Value("current_password"),
		New:          p.Value("new_password"),
		Confirmation: p.Value("new_password2"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]string{
		"message": "Password changed successfully",
		"access":  pair.Access,
		"refresh": pair.Refresh,
	}).Write(w)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, u core.User) {
	view, err := s.svc.Profiles.View(r.Context(), u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newProfileJSON(view)).Write(w)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request, u core.User) {
	if err := s.svc.Profiles.DeleteAccount(r.Context(), u.ID); err != nil {
		writeError(w, r, err)
		return
	}
	ledgerLog(r).LogLedgerWrite(r.Context(), log.OpDelete, "user", u.ID, u.ID, u.ProfileID)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

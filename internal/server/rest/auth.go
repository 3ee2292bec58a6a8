package rest

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/secondmind/internal/server/models"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	IDToken string `json:"idToken"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type profileResponse struct {
	Message string             `json:"message"`
	User    models.UserSummary `json:"user"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.svc.Users.Register(r.Context(), req.Email, req.Password, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "User registered. Check your email to verify the account.")
}

func (s *HTTPServer) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Users.VerifyEmail(r.Context(), r.URL.Query().Get("token")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Email verified. You can now log in.")
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.svc.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *HTTPServer) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.svc.Users.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *HTTPServer) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.svc.Users.ChangePassword(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Password changed.")
}

func (s *HTTPServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	// a blank email means "keep the current one"
	var email *string
	if e := strings.TrimSpace(req.Email); e != "" {
		email = &e
	}

	user, err := s.svc.Users.UpdateProfile(r.Context(), id.UserID, req.Name, email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Message: "Profile updated.", User: *user})
}

package httpapi

import (
	"net/http"

	"github.com/taskcore/taskcore"
)

const refreshCookieName = "refreshToken"

// maxAvatarBytes bounds avatar uploads.
const maxAvatarBytes = 5 << 20

type credentialsResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	cfg := s.engine.Config()
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Security.RequireSecureCookies,
		SameSite: cfg.Security.SameSitePolicy,
		MaxAge:   int(cfg.JWT.RefreshTTL.Seconds()),
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	cfg := s.engine.Config()
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Security.RequireSecureCookies,
		SameSite: cfg.Security.SameSitePolicy,
		MaxAge:   -1,
	})
}

func refreshTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}

	sess, err := s.engine.Register(r.Context(), taskcore.RegisterInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		return err
	}

	s.setRefreshCookie(w, sess.RefreshToken)
	writeJSON(w, http.StatusCreated, credentialsResponse{
		ID:          sess.User.ID,
		Name:        sess.User.Name,
		Email:       sess.User.Email,
		AccessToken: sess.AccessToken,
	})
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}

	sess, err := s.engine.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		return err
	}

	s.setRefreshCookie(w, sess.RefreshToken)
	writeJSON(w, http.StatusOK, credentialsResponse{
		ID:          sess.User.ID,
		Name:        sess.User.Name,
		Email:       sess.User.Email,
		AccessToken: sess.AccessToken,
	})
	return nil
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) error {
	refresh := refreshTokenFromCookie(r)
	if refresh == "" {
		return taskcore.ErrUnauthenticated
	}

	access, err := s.engine.Refresh(r.Context(), refresh)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access})
	return nil
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) error {
	if err := s.engine.Logout(r.Context(), refreshTokenFromCookie(r)); err != nil {
		return err
	}

	s.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	return nil
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) error {
	user, err := identity(r)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":     user.ID,
		"name":   user.Name,
		"email":  user.Email,
		"role":   user.Role,
		"avatar": user.Avatar,
	})
	return nil
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) error {
	user, err := identity(r)
	if err != nil {
		return err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		return taskcore.ErrInvalidInput
	}
	defer file.Close()

	avatar, err := s.engine.UploadAvatar(r.Context(), user, header.Header.Get("Content-Type"), file)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Avatar uploaded successfully",
		"avatar":  avatar,
	})
	return nil
}

func (s *Server) handleDeleteAvatar(w http.ResponseWriter, r *http.Request) error {
	user, err := identity(r)
	if err != nil {
		return err
	}

	if err := s.engine.DeleteAvatar(r.Context(), user); err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Avatar deleted successfully"})
	return nil
}

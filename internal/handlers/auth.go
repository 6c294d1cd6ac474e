package handlers

import (
	"encoding/base64"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"

	"blogpress/internal/blog"
	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/render"
	"blogpress/internal/session"
)

const (
	setupPath   = "/accounts/2fa/setup/"
	adminHome   = "/admin/"
	msgBadCode  = "Invalid code. Please try again."
	msgBadLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer *render.Renderer
	sessions SessionStore
	svc      *blog.Service
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions SessionStore, svc *blog.Service) *Auth {
	return &Auth{
		renderer: renderer,
		sessions: sessions,
		svc:      svc,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.TwoFADone {
		http.Redirect(w, r, safeNext(next, "/"), http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "public/login", &render.PageData{
		Title: "Log in",
		Data:  map[string]any{"Next": next},
	})
}

// LoginSubmit checks the credentials and opens a session. Staff accounts
// continue to the second factor; everyone else goes to ?next= or home.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	next := r.PostFormValue("next")

	user, err := a.svc.Authenticate(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		if !errors.Is(err, blog.ErrInvalidCredentials) {
			slog.Error("login failed", "error", err)
			a.renderer.Error(w, r, http.StatusInternalServerError)
			return
		}
		slog.Info("login rejected", "username", username, "remote", r.RemoteAddr)
		a.renderer.Page(w, r, "public/login", &render.PageData{
			Title: "Log in",
			Data:  map[string]any{"Error": msgBadLogin, "Username": username, "Next": next},
		})
		return
	}

	// Staff must pass 2FA before the session counts as signed in.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Username:  user.Username,
		IsStaff:   user.IsStaff,
		TwoFADone: !user.IsStaff,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		a.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}
	slog.Info("user logged in", "username", user.Username, "staff", user.IsStaff)

	switch {
	case user.Needs2FASetup():
		http.Redirect(w, r, setupPath, http.StatusSeeOther)
	case user.IsStaff:
		http.Redirect(w, r, middleware.TwoFAPath, http.StatusSeeOther)
	default:
		http.Redirect(w, r, safeNext(next, "/"), http.StatusSeeOther)
	}
}

// Logout destroys the session and returns to the home page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// pendingStaff returns the user behind a staff session that still needs
// its second factor. Everyone else is redirected away.
func (a *Auth) pendingStaff(w http.ResponseWriter, r *http.Request) (*session.Data, *models.User, bool) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return nil, nil, false
	}
	if !sess.IsStaff || sess.TwoFADone {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, nil, false
	}
	user, err := a.svc.User(r.Context(), sess.UserID)
	if err != nil {
		fail(a.renderer, w, r, err)
		return nil, nil, false
	}
	return sess, user, true
}

// TwoFASetupPage generates a TOTP secret and displays the QR code.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	_, user, ok := a.pendingStaff(w, r)
	if !ok {
		return
	}
	if user.TOTPEnabled {
		http.Redirect(w, r, middleware.TwoFAPath, http.StatusSeeOther)
		return
	}

	key, err := a.svc.BeginTOTPEnrollment(r.Context(), user.ID)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.setupPage(w, r, key.URL(), key.Secret(), "")
}

func (a *Auth) setupPage(w http.ResponseWriter, r *http.Request, keyURL, secret, errMsg string) {
	qrPNG, err := qrcode.Encode(keyURL, qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		a.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}
	qr := template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG))

	a.renderer.Page(w, r, "public/2fa_setup", &render.PageData{
		Title: "Set up two-factor authentication",
		Data: map[string]any{
			"QR":     qr,
			"Secret": secret,
			"Error":  errMsg,
		},
	})
}

// totpURL rebuilds the otpauth URL for a stored secret so the QR code can
// be shown again after a wrong code.
func totpURL(username, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", blog.TOTPIssuer)
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + blog.TOTPIssuer + ":" + username,
		RawQuery: v.Encode(),
	}
	return u.String()
}

// TwoFASetupSubmit confirms enrollment with the first code.
func (a *Auth) TwoFASetupSubmit(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := a.pendingStaff(w, r)
	if !ok {
		return
	}
	if user.TOTPSecret == nil {
		http.Redirect(w, r, setupPath, http.StatusSeeOther)
		return
	}
	valid, err := a.svc.VerifyTOTP(r.Context(), user.ID, r.PostFormValue("code"))
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	if !valid {
		a.setupPage(w, r, totpURL(user.Username, *user.TOTPSecret), *user.TOTPSecret, msgBadCode)
		return
	}
	a.complete(w, r, sess)
}

// TwoFAVerifyPage renders the code entry form for enrolled staff.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	_, user, ok := a.pendingStaff(w, r)
	if !ok {
		return
	}
	if !user.TOTPEnabled {
		http.Redirect(w, r, setupPath, http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "public/2fa_verify", &render.PageData{
		Title: "Two-factor verification",
	})
}

// TwoFAVerifySubmit validates the TOTP code and completes the login.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess, user, ok := a.pendingStaff(w, r)
	if !ok {
		return
	}
	if !user.TOTPEnabled {
		http.Redirect(w, r, setupPath, http.StatusSeeOther)
		return
	}
	valid, err := a.svc.VerifyTOTP(r.Context(), user.ID, r.PostFormValue("code"))
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	if !valid {
		slog.Info("2fa code rejected", "username", user.Username)
		a.renderer.Page(w, r, "public/2fa_verify", &render.PageData{
			Title: "Two-factor verification",
			Data:  map[string]any{"Error": msgBadCode},
		})
		return
	}
	a.complete(w, r, sess)
}

func (a *Auth) complete(w http.ResponseWriter, r *http.Request, sess *session.Data) {
	updated := *sess
	updated.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, &updated); err != nil {
		slog.Error("session update failed", "error", err)
		a.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}
	slog.Info("2fa completed", "username", sess.Username)
	http.Redirect(w, r, adminHome, http.StatusSeeOther)
}

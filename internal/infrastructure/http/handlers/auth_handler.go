package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/MrDNightCore/warden/internal/application/auth"
	"github.com/MrDNightCore/warden/internal/application/validate"
	domerrors "github.com/MrDNightCore/warden/internal/domain/errors"
	"github.com/MrDNightCore/warden/internal/infrastructure/http/middleware"
)

// AuthHandler serves the public login and registration endpoints.
type AuthHandler struct {
	login    *auth.Login
	register *auth.Register
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthHandler(login *auth.Login, register *auth.Register, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		login:    login,
		register: register,
		validate: validator.New(),
		log:      log,
	}
}

// writeAuthDenied sends the one response body shared by every rejected login
// or registration. Wrong password, unknown account, locked account, inactive
// account and rate limit all produce these exact bytes.
func writeAuthDenied(w http.ResponseWriter) {
	writeErr(w, http.StatusUnauthorized, ErrCodeAuthDenied, domerrors.ErrAuthDenied.Error())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username" validate:"max=150"`
		Password string `json:"password" validate:"max=1024"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	// Over-long or whitespace-only credentials sanitize to empty and fall
	// into the generic denial below, never into a distinguishable error.
	result, err := h.login.Execute(r.Context(), auth.LoginInput{
		Username: SanitizeUsername(body.Username),
		Password: SanitizePassword(body.Password),
		ClientIP: getClientIP(r),
	})
	if err != nil {
		middleware.RecordAuthAttempt("login", false)
		if err == domerrors.ErrAuthDenied {
			writeAuthDenied(w)
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	middleware.RecordAuthAttempt("login", true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account": accountJSON(result.Account),
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username        string  `json:"username" validate:"max=150"`
		Email           string  `json:"email" validate:"max=254"`
		Password        string  `json:"password" validate:"max=1024"`
		PasswordConfirm *string `json:"password_confirm" validate:"omitempty,max=1024"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	result, err := h.register.Execute(r.Context(), auth.RegisterInput{
		Username:        SanitizeUsername(body.Username),
		Email:           SanitizeEmail(body.Email),
		Password:        body.Password,
		PasswordConfirm: body.PasswordConfirm,
		ClientIP:        getClientIP(r),
	})
	if err != nil {
		middleware.RecordAuthAttempt("register", false)
		var verr *validate.Error
		switch {
		case errors.As(err, &verr):
			writeFieldErr(w, verr.Field, verr.Reason)
		case err == domerrors.ErrAuthDenied:
			writeAuthDenied(w)
		case err == domerrors.ErrUsernameTaken || err == domerrors.ErrEmailTaken:
			writeErr(w, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			h.log.Error().Err(err).Msg("register failed")
			writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		}
		return
	}
	middleware.RecordAuthAttempt("register", true)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"account": accountJSON(result.Account),
	})
}

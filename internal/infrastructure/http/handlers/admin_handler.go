package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MrDNightCore/warden/internal/application/admin"
	"github.com/MrDNightCore/warden/internal/application/validate"
	"github.com/MrDNightCore/warden/internal/domain"
	domerrors "github.com/MrDNightCore/warden/internal/domain/errors"
)

// AdminHandler handles /admin/* (list/create accounts, unlock, activate,
// deactivate). Requires X-Warden-Admin-Secret.
type AdminHandler struct {
	listAccounts  *admin.ListAccounts
	createAccount *admin.CreateAccount
	unlockAccount *admin.UnlockAccount
	setActive     *admin.SetAccountActive
	validate      *validator.Validate
	log           zerolog.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(listAccounts *admin.ListAccounts, createAccount *admin.CreateAccount, unlockAccount *admin.UnlockAccount, setActive *admin.SetAccountActive, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		listAccounts:  listAccounts,
		createAccount: createAccount,
		unlockAccount: unlockAccount,
		setActive:     setActive,
		validate:      validator.New(),
		log:           log,
	}
}

// ListAccounts handles GET /admin/accounts?limit=&offset=. Returns { "accounts": [...] } with lockout state visible.
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid limit")
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid offset")
		return
	}
	result, err := h.listAccounts.Execute(r.Context(), admin.ListAccountsInput{Limit: limit, Offset: offset})
	if err != nil {
		h.log.Error().Err(err).Msg("list accounts failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	items := make([]map[string]interface{}, 0, len(result.Accounts))
	for _, acct := range result.Accounts {
		items = append(items, adminAccountJSON(acct))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": items})
}

// CreateAccount handles POST /admin/accounts. Body: { "username", "email", "password", "is_active" }.
// The registration field rules apply; only the rate limiter is skipped.
func (h *AdminHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username" validate:"max=150"`
		Email    string `json:"email" validate:"max=254"`
		Password string `json:"password" validate:"max=1024"`
		IsActive *bool  `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}
	result, err := h.createAccount.Execute(r.Context(), admin.CreateAccountInput{
		Username: SanitizeUsername(body.Username),
		Email:    SanitizeEmail(body.Email),
		Password: body.Password,
		IsActive: active,
		ClientIP: getClientIP(r),
	})
	if err != nil {
		var verr *validate.Error
		switch {
		case errors.As(err, &verr):
			writeFieldErr(w, verr.Field, verr.Reason)
		case err == domerrors.ErrUsernameTaken || err == domerrors.ErrEmailTaken:
			writeErr(w, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			h.log.Error().Err(err).Msg("create account failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"account": adminAccountJSON(result.Account),
	})
}

// UnlockAccount handles POST /admin/accounts/{id}/unlock. Clears the lock and
// zeroes the failure counter.
func (h *AdminHandler) UnlockAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDParam(w, r)
	if !ok {
		return
	}
	result, err := h.unlockAccount.Execute(r.Context(), admin.UnlockAccountInput{
		AccountID: id,
		ClientIP:  getClientIP(r),
	})
	if err != nil {
		if err == domerrors.ErrAccountNotFound {
			writeErr(w, http.StatusNotFound, "", err.Error())
			return
		}
		h.log.Error().Err(err).Msg("unlock account failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account": adminAccountJSON(result.Account),
	})
}

// ActivateAccount handles POST /admin/accounts/{id}/activate.
func (h *AdminHandler) ActivateAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountActive(w, r, true)
}

// DeactivateAccount handles POST /admin/accounts/{id}/deactivate. Deactivated
// accounts are denied login until reactivated.
func (h *AdminHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountActive(w, r, false)
}

func (h *AdminHandler) setAccountActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := accountIDParam(w, r)
	if !ok {
		return
	}
	result, err := h.setActive.Execute(r.Context(), admin.SetAccountActiveInput{
		AccountID: id,
		Active:    active,
		ClientIP:  getClientIP(r),
	})
	if err != nil {
		if err == domerrors.ErrAccountNotFound {
			writeErr(w, http.StatusNotFound, "", err.Error())
			return
		}
		h.log.Error().Err(err).Msg("set account active failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account": adminAccountJSON(result.Account),
	})
}

func accountIDParam(w http.ResponseWriter, r *http.Request) (domain.AccountID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		writeErr(w, http.StatusBadRequest, "", "account id required")
		return domain.AccountID{}, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid account id")
		return domain.AccountID{}, false
	}
	return domain.NewAccountID(id), true
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

package controllers

import (
	"encoding/json"
	"net/http"

	"agrilink-storefront/models"
	"agrilink-storefront/stores"
)

// UserController handles session-related requests
type UserController struct {
	Session *stores.Session
}

// NewUserController creates a new UserController
func NewUserController(session *stores.Session) *UserController {
	return &UserController{Session: session}
}

type sessionView struct {
	Authenticated bool          `json:"authenticated"`
	Status        stores.Status `json:"status"`
	User          *models.User  `json:"user,omitempty"`
	Redirect      string        `json:"redirect,omitempty"`
	LastError     *stores.Error `json:"lastError,omitempty"`
}

func (uc *UserController) view() sessionView {
	v := sessionView{
		Status:    uc.Session.Status(),
		User:      uc.Session.User(),
		LastError: uc.Session.LastError(),
	}
	if v.User != nil {
		v.Authenticated = true
		v.Redirect = v.User.Role.DashboardPath()
	}
	return v
}

// GetProfile reports who is signed in
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "", uc.view())
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		models.Registration
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badInput(w)
		return
	}
	reg := body.Registration
	reg.ConfirmPassword = body.ConfirmPassword

	writeAuthResult(w, uc.Session.Register(r.Context(), reg), http.StatusCreated)
}

// Login handles user login
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		badInput(w)
		return
	}

	writeAuthResult(w, uc.Session.Login(r.Context(), creds.Email, creds.Password), http.StatusOK)
}

func writeAuthResult(w http.ResponseWriter, res stores.AuthResult, okStatus int) {
	if !res.Success {
		writeError(w, res.Err)
		return
	}
	if res.VerificationPending {
		okStatus = http.StatusAccepted
	}
	writeData(w, okStatus, res.Message, res)
}

// Logout always succeeds locally
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	uc.Session.Logout(r.Context())
	writeData(w, http.StatusOK, "Logged out", uc.view())
}

// Refresh re-validates the stored credential against the backend
func (uc *UserController) Refresh(w http.ResponseWriter, r *http.Request) {
	uc.Session.Refresh(r.Context())
	writeData(w, http.StatusOK, "", uc.view())
}

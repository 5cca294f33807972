package stores

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"agrilink-storefront/api"
	"agrilink-storefront/models"
	"agrilink-storefront/storage"
	"agrilink-storefront/utils"

	"github.com/sirupsen/logrus"
)

// Status is the observable state of the session store
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusIdle         Status = "idle"
	StatusBusy         Status = "busy"
	StatusError        Status = "error"
)

// Reasons carried by unauthenticated events
const (
	ReasonSessionExpired = "session_expired"
	ReasonUnauthorized   = "unauthorized"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// Event tells navigation that the user is no longer signed in
type Event struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// AuthResult is the outcome of login and registration. Expected failures
// are reported through Err, never returned as a Go error.
type AuthResult struct {
	Success             bool         `json:"success"`
	User                *models.User `json:"user,omitempty"`
	Redirect            string       `json:"redirect,omitempty"`
	VerificationPending bool         `json:"verificationPending,omitempty"`
	Message             string       `json:"message,omitempty"`
	Err                 *Error       `json:"error,omitempty"`
}

// Session owns the signed-in identity and its bearer credential.
//
// Each operation takes a generation number when it starts; only the most
// recently started operation may apply its outcome, so a slow login that
// completes after a newer login or a logout cannot overwrite their result.
type Session struct {
	client  *api.Client
	storage storage.Store
	log     *logrus.Entry
	now     func() time.Time

	mu          sync.Mutex
	user        *models.User
	initialized bool
	inflight    int
	gen         uint64
	lastErr     *Error

	listenersMu sync.RWMutex
	listeners   []func(Event)
}

// NewSession creates the store and subscribes it to the client's 401 signal
func NewSession(client *api.Client, st storage.Store, log *logrus.Entry) *Session {
	s := &Session{
		client:  client,
		storage: st,
		log:     log,
		now:     time.Now,
	}
	client.OnUnauthorized(s.handleUnauthorized)
	return s
}

// OnUnauthenticated registers fn to run whenever the session ends without
// the user asking for it.
func (s *Session) OnUnauthenticated(fn func(Event)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// User returns a copy of the signed-in user, or nil
func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Status reports initializing until the first operation completes, busy
// while any operation is outstanding, and error when the latest operation
// failed.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.inflight > 0:
		return StatusBusy
	case !s.initialized:
		return StatusInitializing
	case s.lastErr != nil:
		return StatusError
	default:
		return StatusIdle
	}
}

// LastError is the failure of the most recent operation, if it failed
func (s *Session) LastError() *Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Initialize validates the stored credential against the backend. On any
// failure the credential and user are dropped and listeners are told the
// session expired.
func (s *Session) Initialize(ctx context.Context) {
	gen := s.begin()
	defer s.finish(gen, nil)

	token, ok, err := storage.Lookup(ctx, s.storage, storage.TokenKey)
	if err != nil {
		s.log.WithError(err).Error("failed to read stored credential")
	}
	if !ok || token == "" {
		s.apply(gen, func() { s.user = nil })
		return
	}

	if utils.TokenExpired(token, s.now()) {
		s.log.Info("stored credential has expired")
		s.expire(ctx, gen, true)
		return
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		s.log.WithError(err).Warn("auth initialization failed")
		// A 401 has already been signalled by the client hook.
		s.expire(ctx, gen, api.StatusOf(err) != http.StatusUnauthorized)
		return
	}
	s.apply(gen, func() { s.user = user })
}

// Refresh re-validates the credential; the UI calls it after external changes
func (s *Session) Refresh(ctx context.Context) {
	s.Initialize(ctx)
}

// Login signs in with email and password
func (s *Session) Login(ctx context.Context, email, password string) AuthResult {
	gen := s.begin()
	var failure *Error
	defer func() { s.finish(gen, failure) }()

	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		failure = newError("session.login", KindValidation, "Email and password are required")
		return AuthResult{Message: failure.Message, Err: failure}
	}

	payload, err := s.client.Login(ctx, email, password)
	if err != nil {
		failure = loginError(err)
		s.log.WithField("kind", failure.Kind).Warn("login error: " + failure.Message)
		return AuthResult{Message: failure.Message, Err: failure}
	}

	s.establish(ctx, gen, payload)
	user := *payload.User
	return AuthResult{
		Success:  true,
		User:     &user,
		Redirect: user.Role.DashboardPath(),
		Message:  "Login Successful",
	}
}

func loginError(err error) *Error {
	e := classify("session.login", err, "Login failed")
	switch e.Status {
	case http.StatusUnauthorized:
		if e.Message == "Login failed" {
			e.Message = "Invalid email or password"
		}
	case http.StatusForbidden:
		e.Message = "Account not verified. Please check your email"
	case http.StatusTooManyRequests:
		e.Message = "Too many attempts. Please try again later"
	}
	return e
}

// Register creates an account. If the backend signs the user in straight
// away the session is established as with Login; otherwise the result asks
// the user to verify their email first.
func (s *Session) Register(ctx context.Context, reg models.Registration) AuthResult {
	gen := s.begin()
	var failure *Error
	defer func() { s.finish(gen, failure) }()

	reg.Normalize()
	if problems := validateRegistration(reg); len(problems) > 0 {
		failure = newError("session.register", KindValidation, strings.Join(problems, ", "), problems...)
		return AuthResult{Message: failure.Message, Err: failure}
	}

	payload, msg, err := s.client.Register(ctx, reg)
	if err != nil {
		failure = registerError(err)
		s.log.WithField("kind", failure.Kind).Warn("registration error: " + failure.Message)
		return AuthResult{Message: failure.Message, Err: failure}
	}

	if payload.Token == "" {
		if msg == "" {
			msg = "Registration successful. Please check your email to verify your account"
		}
		return AuthResult{Success: true, VerificationPending: true, Message: msg}
	}

	s.establish(ctx, gen, payload)
	user := *payload.User
	return AuthResult{
		Success:  true,
		User:     &user,
		Redirect: user.Role.DashboardPath(),
		Message:  "Registration Successful",
	}
}

func registerError(err error) *Error {
	e := classify("session.register", err, "Registration failed")
	switch e.Status {
	case http.StatusBadRequest:
		e.Kind = KindValidation
		if len(e.Fields) > 0 {
			e.Message = "Validation error: " + strings.Join(e.Fields, ", ")
		} else {
			e.Message = "Validation error: Invalid data provided"
		}
	case http.StatusConflict:
		e.Message = "Account already exists with this email"
	}
	return e
}

func validateRegistration(reg models.Registration) []string {
	var problems []string
	required := []struct{ name, value string }{
		{"name", reg.Name},
		{"email", reg.Email},
		{"contact", reg.Contact},
		{"password", reg.Password},
		{"confirm password", reg.ConfirmPassword},
		{"role", string(reg.Role)},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.name+" is required")
		}
	}
	if len(problems) > 0 {
		return problems
	}

	if !emailPattern.MatchString(reg.Email) {
		problems = append(problems, "email is invalid")
	}
	if len(reg.Password) < minPasswordLength {
		problems = append(problems, "password must be at least 6 characters")
	}
	if reg.Password != reg.ConfirmPassword {
		problems = append(problems, "passwords do not match")
	}
	switch reg.Role {
	case models.RoleBuyer:
	case models.RoleFarmer:
		if reg.FarmName == "" {
			problems = append(problems, "farm name is required")
		}
		if reg.Lat == nil || *reg.Lat < -90 || *reg.Lat > 90 {
			problems = append(problems, "latitude is required")
		}
		if reg.Lng == nil || *reg.Lng < -180 || *reg.Lng > 180 {
			problems = append(problems, "longitude is required")
		}
	default:
		problems = append(problems, "role must be buyer or farmer")
	}
	return problems
}

// Logout ends the session locally whatever the backend answers
func (s *Session) Logout(ctx context.Context) {
	gen := s.begin()
	defer s.finish(gen, nil)

	if err := s.client.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("backend logout failed, clearing local session anyway")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCredentialLocked(ctx)
	s.user = nil
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.inflight++
	return s.gen
}

func (s *Session) finish(gen uint64, failure *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.initialized = true
	if gen == s.gen {
		s.lastErr = failure
	}
}

// apply runs fn under the lock if gen is still the latest operation
func (s *Session) apply(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	fn()
	return true
}

func (s *Session) establish(ctx context.Context, gen uint64, payload *api.AuthPayload) {
	applied := s.apply(gen, func() {
		if err := s.storage.Set(ctx, storage.TokenKey, payload.Token); err != nil {
			s.log.WithError(err).Error("failed to persist credential")
		}
		user := *payload.User
		s.user = &user
	})
	if !applied {
		s.log.Debug("discarding superseded authentication result")
	}
}

func (s *Session) expire(ctx context.Context, gen uint64, signal bool) {
	applied := s.apply(gen, func() {
		s.clearCredentialLocked(ctx)
		s.user = nil
	})
	if applied && signal {
		s.emit(ReasonSessionExpired)
	}
}

func (s *Session) clearCredentialLocked(ctx context.Context) {
	if err := s.storage.Delete(ctx, storage.TokenKey); err != nil {
		s.log.WithError(err).Error("failed to clear credential")
	}
}

// handleUnauthorized runs once per 401 from any endpoint. The client has
// already removed the credential.
func (s *Session) handleUnauthorized() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.log.Info("backend rejected the credential, session cleared")
	s.emit(ReasonUnauthorized)
}

func (s *Session) emit(reason string) {
	s.listenersMu.RLock()
	listeners := make([]func(Event), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	ev := Event{Reason: reason, At: s.now()}
	for _, fn := range listeners {
		fn(ev)
	}
}

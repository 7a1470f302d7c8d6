package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"horizon-server/models"
	"horizon-server/onboarding"
	"horizon-server/sessioncookie"
)

// AuthController contains references to the onboarding workflow needed by
// the auth routes.
type AuthController struct {
	flow *onboarding.Workflow
}

// NewAuthController takes an initialized workflow and returns a new auth
// controller.
func NewAuthController(flow *onboarding.Workflow) *AuthController {
	return &AuthController{flow: flow}
}

// Register handles /auth/register: runs the full onboarding sequence and,
// on success, opens a session and sets the session cookie.
func (a AuthController) Register(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Println("could not decode the register request body:", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	profile, secret, err := a.flow.RegisterUser(r.Context(), req)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	sessioncookie.New(w, r).Set(secret)
	profile.Scrub()
	writeJSON(w, http.StatusCreated, profile)
}

// Login handles /auth/login: exchanges the credential for a session cookie
// and returns the profile.
func (a AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Println("could not decode the login request body:", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	profile, secret, err := a.flow.AuthenticateUser(r.Context(), req)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	sessioncookie.New(w, r).Set(secret)
	profile.Scrub()
	writeJSON(w, http.StatusOK, profile)
}

// Logout handles /auth/logout: deletes the remote session and expires the
// cookie. Logging out without a session is a no-op.
func (a AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	store := sessioncookie.New(w, r)
	if secret, found := store.Get(); found {
		a.flow.Logout(r.Context(), secret)
	}
	store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

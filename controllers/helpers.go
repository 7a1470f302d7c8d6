package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"horizon-server/models"
	"horizon-server/onboarding"
	"horizon-server/sessioncookie"
)

// currentUser resolves the request's session cookie to a profile. Absence of
// a cookie and a stale secret both come back as ErrNoActiveSession.
func currentUser(w http.ResponseWriter, r *http.Request, flow *onboarding.Workflow) (*models.UserProfile, error) {
	secret, found := sessioncookie.New(w, r).Get()
	if !found {
		return nil, onboarding.ErrNoActiveSession
	}
	return flow.CurrentUser(r.Context(), secret)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	out, err := json.Marshal(v)
	if err != nil {
		log.Println("could not encode outbound data into writer:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(out)
}

// errorBody is the inline-form error payload. Stage is present only when the
// failure happened partway through registration, so the client can offer a
// resume instead of a restart.
type errorBody struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// writeFlowError maps the workflow error taxonomy onto HTTP statuses.
func writeFlowError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, onboarding.ErrNoActiveSession),
		errors.Is(err, onboarding.ErrAuthenticationFailed):
		status = http.StatusUnauthorized
	case errors.Is(err, onboarding.ErrIdentityCreationFailed):
		// Probably a duplicate email or weak password.
		status = http.StatusNotAcceptable
	}

	body := errorBody{Error: err.Error()}
	var stage *onboarding.StageError
	if errors.As(err, &stage) {
		body.Stage = string(stage.Stage)
	}
	writeJSON(w, status, body)
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

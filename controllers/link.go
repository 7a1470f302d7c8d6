package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"horizon-server/onboarding"
)

// LinkController contains references to the workflow needed by the bank
// linking routes.
type LinkController struct {
	flow *onboarding.Workflow
}

// NewLinkController takes an initialized workflow and returns a new link
// controller.
func NewLinkController(flow *onboarding.Workflow) *LinkController {
	return &LinkController{flow: flow}
}

// CreateToken handles /api/link/token: mints a link token for the
// browser-side linking widget, scoped to the authenticated user.
func (c LinkController) CreateToken(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	user, err := currentUser(w, r, c.flow)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	token, err := c.flow.CreateLinkToken(r.Context(), user)
	if err != nil {
		log.Println("link token creation failed for user", user.UserID, ":", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"linkToken": token})
}

// Exchange handles /api/link/exchange: turns the widget's temporary public
// token into a persisted linked bank account.
func (c LinkController) Exchange(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	user, err := currentUser(w, r, c.flow)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	var req struct {
		PublicToken string `json:"publicToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PublicToken == "" {
		log.Println("could not decode the exchange request body:", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	record, err := c.flow.LinkBankAccount(r.Context(), user, req.PublicToken)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	record.Scrub()
	writeJSON(w, http.StatusCreated, record)
}

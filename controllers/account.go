package controllers

import (
	"net/http"

	"horizon-server/onboarding"
)

// AccountController contains references to the workflow needed by the
// account and dashboard routes.
type AccountController struct {
	flow *onboarding.Workflow
}

// NewAccountController takes an initialized workflow and returns a new
// account controller.
func NewAccountController(flow *onboarding.Workflow) *AccountController {
	return &AccountController{flow: flow}
}

// Me handles /api/me to return the authenticated user's profile document.
func (c AccountController) Me(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	user, err := currentUser(w, r, c.flow)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	user.Scrub()
	writeJSON(w, http.StatusOK, user)
}

// Banks handles /api/banks: all of the user's linked bank accounts, or a
// single one when an id query parameter is present.
func (c AccountController) Banks(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	user, err := currentUser(w, r, c.flow)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		bank, err := c.flow.Bank(r.Context(), id)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		// A bank document is only readable by its owner.
		if bank.UserID != user.UserID {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		bank.Scrub()
		writeJSON(w, http.StatusOK, bank)
		return
	}

	banks, err := c.flow.Banks(r.Context(), user.UserID)
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	for i := range banks {
		banks[i].Scrub()
	}
	writeJSON(w, http.StatusOK, banks)
}

// Dashboard handles /api/dashboard to return the assembled home view.
func (c AccountController) Dashboard(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	user, err := currentUser(w, r, c.flow)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	dashboard, err := c.flow.Dashboard(r.Context(), user)
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

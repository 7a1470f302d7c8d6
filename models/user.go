package models

import (
	"fmt"
	"strings"
)

// UserProfile is the profile document stored in the identity service's user
// collection. Created once at sign-up; none of the flows update it afterward.
type UserProfile struct {
	DocumentID  string `json:"documentId" bson:"documentId"`
	UserID      string `json:"userId" bson:"userId"`
	Email       string `json:"email" bson:"email"`
	FirstName   string `json:"firstName" bson:"firstName"`
	LastName    string `json:"lastName" bson:"lastName"`
	Address     string `json:"address1" bson:"address1"`
	City        string `json:"city" bson:"city"`
	State       string `json:"state" bson:"state"`
	PostalCode  string `json:"postalCode" bson:"postalCode"`
	DateOfBirth string `json:"dateOfBirth" bson:"dateOfBirth"`
	SSN         string `json:"ssn,omitempty" bson:"ssn"`

	// Issued by the funds transfer service during onboarding.
	CustomerID  string `json:"dwollaCustomerId" bson:"dwollaCustomerId"`
	CustomerURL string `json:"dwollaCustomerUrl" bson:"dwollaCustomerUrl"`
}

// FullName is the display name registered with the identity service and the
// aggregator's link flow.
func (p UserProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Scrub blanks fields that must never reach the presentation layer.
func (p *UserProfile) Scrub() {
	p.SSN = ""
}

// SignInRequest carries only the credential pair. It is deliberately a
// distinct type from SignUpRequest: the two modes require different fields,
// so each gets its own shape instead of one struct with conditional rules.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest carries the credential pair plus the full personal profile
// required to register a funds-transfer customer.
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address     string `json:"address1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
}

// Validate checks the sign-in variant's required fields.
func (r SignInRequest) Validate() error {
	if err := validateCredential(r.Email, r.Password); err != nil {
		return err
	}
	return nil
}

// Validate checks the sign-up variant. The rules mirror the registration
// form: state is a two-letter code, postal codes run 3 to 6 characters.
func (r SignUpRequest) Validate() error {
	if err := validateCredential(r.Email, r.Password); err != nil {
		return err
	}
	switch {
	case len(r.FirstName) < 3:
		return fmt.Errorf("firstName must be at least 3 characters")
	case len(r.LastName) < 3:
		return fmt.Errorf("lastName must be at least 3 characters")
	case r.Address == "" || len(r.Address) > 50:
		return fmt.Errorf("address1 is required and capped at 50 characters")
	case r.City == "" || len(r.City) > 50:
		return fmt.Errorf("city is required and capped at 50 characters")
	case len(r.State) != 2:
		return fmt.Errorf("state must be a 2-letter code")
	case len(r.PostalCode) < 3 || len(r.PostalCode) > 6:
		return fmt.Errorf("postalCode must be 3 to 6 characters")
	case len(r.SSN) < 3:
		return fmt.Errorf("ssn is required")
	case len(r.DateOfBirth) < 3:
		return fmt.Errorf("dateOfBirth is required")
	}
	return nil
}

// Profile maps the request's profile fields into a UserProfile. The ids are
// filled in as onboarding progresses.
func (r SignUpRequest) Profile() *UserProfile {
	return &UserProfile{
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Address:     r.Address,
		City:        r.City,
		State:       r.State,
		PostalCode:  r.PostalCode,
		DateOfBirth: r.DateOfBirth,
		SSN:         r.SSN,
	}
}

func validateCredential(email, password string) error {
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return fmt.Errorf("email is not a valid address")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

package models

import "testing"

func validSignUp() SignUpRequest {
	return SignUpRequest{
		Email:       "a@x.com",
		Password:    "password1",
		FirstName:   "Jane",
		LastName:    "Doe",
		Address:     "1 Main St",
		City:        "Chicago",
		State:       "IL",
		PostalCode:  "60601",
		DateOfBirth: "1990-01-01",
		SSN:         "1234",
	}
}

func TestSignUpRequestValidate(t *testing.T) {
	if err := validSignUp().Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*SignUpRequest)
	}{
		{"bad email", func(r *SignUpRequest) { r.Email = "not-an-address" }},
		{"short password", func(r *SignUpRequest) { r.Password = "short" }},
		{"short first name", func(r *SignUpRequest) { r.FirstName = "Jo" }},
		{"short last name", func(r *SignUpRequest) { r.LastName = "D" }},
		{"missing address", func(r *SignUpRequest) { r.Address = "" }},
		{"long state", func(r *SignUpRequest) { r.State = "Illinois" }},
		{"short postal code", func(r *SignUpRequest) { r.PostalCode = "60" }},
		{"long postal code", func(r *SignUpRequest) { r.PostalCode = "6060160" }},
		{"missing ssn", func(r *SignUpRequest) { r.SSN = "" }},
		{"missing date of birth", func(r *SignUpRequest) { r.DateOfBirth = "" }},
	}
	for _, c := range cases {
		r := validSignUp()
		c.mutate(&r)
		if err := r.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", c.name)
		}
	}
}

func TestSignInRequestValidate(t *testing.T) {
	// The sign-in variant needs only the credential pair; none of the
	// profile fields apply.
	if err := (SignInRequest{Email: "a@x.com", Password: "password1"}).Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	if err := (SignInRequest{Email: "a@x.com", Password: "short"}).Validate(); err == nil {
		t.Error("expected a validation error for a short password")
	}
	if err := (SignInRequest{Email: "@x.com", Password: "password1"}).Validate(); err == nil {
		t.Error("expected a validation error for a bad email")
	}
}

func TestProfileCopiesFields(t *testing.T) {
	p := validSignUp().Profile()
	if p.Email != "a@x.com" || p.FirstName != "Jane" || p.State != "IL" {
		t.Errorf("profile = %+v", p)
	}
	if p.UserID != "" || p.CustomerID != "" {
		t.Error("ids must be empty before onboarding fills them")
	}
}

func TestFullName(t *testing.T) {
	p := UserProfile{FirstName: "Jane", LastName: "Doe"}
	if p.FullName() != "Jane Doe" {
		t.Errorf("FullName = %q", p.FullName())
	}
}

func TestScrubDropsSSN(t *testing.T) {
	p := UserProfile{SSN: "1234"}
	p.Scrub()
	if p.SSN != "" {
		t.Error("Scrub left the ssn in place")
	}
}

package onboarding

import (
	"errors"
	"fmt"
)

// One error per workflow step that can fail. Handlers map these to HTTP
// statuses; none of them is retried automatically — retrying is always the
// caller's decision.
var (
	// ErrIdentityCreationFailed means the identity service rejected the
	// account (duplicate email, weak password).
	ErrIdentityCreationFailed = errors.New("identity account creation failed")
	// ErrAuthenticationFailed covers every sign-in rejection. Unknown email
	// and wrong password are deliberately indistinguishable.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrCustomerCreationFailed means the transfer service rejected the
	// customer payload. An identity already exists at this point.
	ErrCustomerCreationFailed = errors.New("transfer customer creation failed")
	// ErrMalformedCustomerURL means the customer URL carried no trailing id
	// segment.
	ErrMalformedCustomerURL = errors.New("customer url carries no id segment")
	// ErrProfilePersistFailed means the profile document write failed after
	// identity and customer were both created.
	ErrProfilePersistFailed = errors.New("profile document persist failed")
	// ErrSessionCreationFailed means everything onboarded but the session
	// could not be opened.
	ErrSessionCreationFailed = errors.New("session creation failed")
	// ErrTokenExchangeFailed means the aggregator rejected the public token.
	ErrTokenExchangeFailed = errors.New("public token exchange failed")
	// ErrAccountFetchFailed means the aggregator returned no accounts for
	// the access token.
	ErrAccountFetchFailed = errors.New("no accounts returned for access token")
	// ErrProcessorTokenFailed means the processor token could not be minted.
	ErrProcessorTokenFailed = errors.New("processor token creation failed")
	// ErrFundingSourceFailed means the funding source could not be created.
	ErrFundingSourceFailed = errors.New("funding source creation failed")
	// ErrLinkedAccountPersistFailed means the bank document write failed
	// after the funding source was created.
	ErrLinkedAccountPersistFailed = errors.New("linked account persist failed")
	// ErrNoActiveSession is the one precondition violation in the taxonomy:
	// an authenticated operation was attempted without a session cookie.
	ErrNoActiveSession = errors.New("no active session")
)

// Stage names the furthest point a registration attempt reached. Stages are
// ordered; a checkpoint at a later stage implies all earlier steps
// succeeded.
type Stage string

const (
	StageUnregistered     Stage = "unregistered"
	StageIdentityCreated  Stage = "identity_created"
	StageCustomerCreated  Stage = "customer_created"
	StageProfilePersisted Stage = "profile_persisted"
	StageSessionActive    Stage = "session_active"
)

// StageError wraps a step failure with the last stage the attempt completed,
// so a caller can resume from there instead of restarting.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("onboarding halted after %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, kind, cause error) error {
	if cause != nil {
		kind = fmt.Errorf("%w: %v", kind, cause)
	}
	return &StageError{Stage: stage, Err: kind}
}

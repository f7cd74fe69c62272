package goVK

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the base of every configuration failure.
	ErrConfiguration = errors.New("vk configuration error")
	// ErrPasswordGrantDisabled is returned by [Client.PasswordToken]. The direct
	// password grant is only available to whitelisted VK applications.
	ErrPasswordGrantDisabled = fmt.Errorf("%w: password grant is not available", ErrConfiguration)
	// ErrAlreadyAuthorized is returned by [Client.ExchangeCode] when the client
	// already completed a code exchange and holds a token.
	ErrAlreadyAuthorized = errors.New("vk client already authorized")
	// ErrRemoteAPI matches every [*APIError].
	ErrRemoteAPI = errors.New("vk api error")
	// ErrMalformedURL matches every [*MalformedURLError].
	ErrMalformedURL = errors.New("malformed url")
	// ErrInvalidResponse is returned when a response body is not valid JSON.
	ErrInvalidResponse = errors.New("vk invalid response")
	// ErrSessionStoreDisabled is returned by session operations when no Redis
	// client was configured.
	ErrSessionStoreDisabled = errors.New("vk session store disabled")
	// ErrStateDisabled is returned by state operations when state signing is
	// not configured.
	ErrStateDisabled = errors.New("vk oauth state disabled")
	// ErrInvalidState is returned when an OAuth state fails verification.
	ErrInvalidState = errors.New("vk oauth state invalid")
	// ErrRateLimited is returned when the client-side rate limiter did not
	// admit a call before its context ended.
	ErrRateLimited = errors.New("vk call rate limited")
	// ErrMissingUserID is returned when a token response carries no user id.
	ErrMissingUserID = errors.New("vk token response has no user_id")
)

// APIError is an error object returned by the VK OAuth endpoints.
type APIError struct {
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Code + ": " + e.Description
}

// Is makes errors.Is(err, ErrRemoteAPI) match.
func (e *APIError) Is(target error) bool {
	return target == ErrRemoteAPI
}

// MalformedURLError reports a photo URL that cannot be rewritten.
type MalformedURLError struct {
	URL    string
	Reason string
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("malformed url %q: %s", e.URL, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedURL) match.
func (e *MalformedURLError) Is(target error) bool {
	return target == ErrMalformedURL
}

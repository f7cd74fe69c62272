package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	goVK "github.com/MrEthical07/goVK"
	"github.com/MrEthical07/goVK/jwt"
	"github.com/MrEthical07/goVK/permission"
	"github.com/MrEthical07/goVK/session"
)

// ErrMissingCode is passed to OnError when the redirect carries neither a
// code nor an error.
var ErrMissingCode = errors.New("vk redirect has no code")

// CallbackOptions configure [Callback].
type CallbackOptions struct {
	// RedirectURI is sent with the code exchange. When state is verified and
	// carries a redirect URI, that one wins. Empty means the client default.
	RedirectURI string
	// VerifyState requires a valid signed state (Client.NewState).
	VerifyState bool
	// SaveSession persists the token with Client.SaveSession.
	SaveSession bool
	// OnSuccess writes the response. The default writes the user id as JSON.
	OnSuccess func(w http.ResponseWriter, r *http.Request, res *CallbackResult)
	// OnError writes the failure response. The default maps invalid state to
	// 401, VK OAuth errors to 400, missing state or session support to 500,
	// and everything else to 502.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// CallbackResult is what a successful callback produced.
type CallbackResult struct {
	// Client is a fork holding the user's token.
	Client *goVK.Client
	Token  *goVK.TokenResponse
	// State is nil unless VerifyState is set.
	State *jwt.StateClaims
	// Session is nil unless SaveSession is set.
	Session *session.Record
}

type callbackResultContextKey struct{}

// TokenFromContext returns the token exchanged by [Callback], from inside
// OnSuccess.
func TokenFromContext(ctx context.Context) (*goVK.TokenResponse, bool) {
	res, ok := ctx.Value(callbackResultContextKey{}).(*CallbackResult)
	if !ok || res == nil {
		return nil, false
	}
	return res.Token, res.Token != nil
}

// Callback handles the OAuth redirect from VK (response_type=code).
func Callback(client *goVK.Client, opts CallbackOptions) http.Handler {
	if opts.OnSuccess == nil {
		opts.OnSuccess = defaultSuccess
	}
	if opts.OnError == nil {
		opts.OnError = defaultError
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ctx := requestContext(r)
		r = r.WithContext(ctx)

		if code := q.Get("error"); code != "" {
			opts.OnError(w, r, &goVK.APIError{Code: code, Description: q.Get("error_description")})
			return
		}

		code := q.Get("code")
		if code == "" {
			opts.OnError(w, r, ErrMissingCode)
			return
		}

		res := &CallbackResult{}
		redirectURI := opts.RedirectURI
		var scope permission.Mask

		if opts.VerifyState {
			claims, err := client.VerifyState(ctx, q.Get("state"))
			if err != nil {
				opts.OnError(w, r, err)
				return
			}
			res.State = claims
			scope = permission.Mask(claims.Scope)
			if claims.RedirectURI != "" {
				redirectURI = claims.RedirectURI
			}
		}

		res.Client = client.Fork()
		tok, err := res.Client.ExchangeCode(ctx, code, redirectURI)
		if err != nil {
			opts.OnError(w, r, err)
			return
		}
		res.Token = tok

		if opts.SaveSession {
			rec, err := res.Client.SaveSession(ctx, tok, scope)
			if err != nil {
				opts.OnError(w, r, err)
				return
			}
			res.Session = rec
		}

		ctx = context.WithValue(ctx, callbackResultContextKey{}, res)
		opts.OnSuccess(w, r.WithContext(ctx), res)
	})
}

func defaultSuccess(w http.ResponseWriter, _ *http.Request, res *CallbackResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]int64{
		"user_id":    res.Token.UserID,
		"expires_in": res.Token.ExpiresIn,
	})
}

func defaultError(w http.ResponseWriter, _ *http.Request, err error) {
	switch {
	case errors.Is(err, goVK.ErrInvalidState):
		http.Error(w, "invalid state", http.StatusUnauthorized)
	case errors.Is(err, goVK.ErrStateDisabled), errors.Is(err, goVK.ErrSessionStoreDisabled):
		http.Error(w, "misconfigured", http.StatusInternalServerError)
	case errors.Is(err, goVK.ErrRemoteAPI), errors.Is(err, ErrMissingCode):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "vk unavailable", http.StatusBadGateway)
	}
}

// requestContext copies the caller IP into the context for audit events.
func requestContext(r *http.Request) context.Context {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return goVK.WithClientIP(r.Context(), host)
}

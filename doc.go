// Package goVK is a client for the VK social-network REST API.
//
// It builds OAuth authorization URLs, exchanges authorization codes for
// access tokens, and issues signed API method calls. Permission scopes are
// built with the permission sub-package.
//
//	client, err := goVK.NewClient("12345", "app-secret", "")
//	scope := permission.NewScope().Add("friends,photos", "offline")
//	url := client.AuthorizeURL(goVK.AuthorizeOptions{Scope: scope.String(), ResponseType: "code"})
//	// ... user consents, VK redirects back with ?code=...
//	tok, err := client.ExchangeCode(ctx, code, redirectURI)
//	res, err := client.API(ctx, "users.get", goVK.Params{"user_ids": tok.UserID})
//
// # Architecture boundaries
//
// goVK is the public surface. It exposes [Client], [Builder], [Config] and
// value types ([Params], [TokenResponse], [MetricsSnapshot]). HTTP lives in
// transport, token persistence in session, state signing in jwt; rate
// limiting and audit dispatch live under internal/.
//
// # What this package must NOT do
//
//   - Interpret VK API error objects inside method responses; they are
//     returned to the caller as data.
//   - Retry calls.
//   - Log access tokens, secrets or signatures.
//   - Perform I/O during construction (Builder.Build is allocation-only).
package goVK

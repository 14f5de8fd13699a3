// Package api is the authenticated HTTP client used to talk to the storefront
// backend.
//
// Every request is sent with the bearer access credential held by the session
// store. When the backend answers 401 the client exchanges the refresh
// credential for a new pair and re-sends the original request once:
//
//	request ──401──▶ POST token/refresh/ ──ok──▶ persist pair ──▶ resend (once)
//	                                    └─fail─▶ clear session ──▶ *RefreshError
//
// Requests to the login and refresh endpoints are never retried, and a request
// that has already been re-sent is returned as is. Transport failures (no
// response at all) are returned unchanged and never trigger a refresh.
//
// Concurrent refreshes of the same credential share one backend call, which
// runs under the client timeout rather than any caller's context. A caller
// that gives up while waiting gets its own context error; the session is kept.
package api

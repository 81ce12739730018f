// Package api is the JSON HTTP layer shared by the Identity and Lobby clients.
//
// A Client is bound to one base host. Endpoints are resolved against that
// host, request bodies are encoded as JSON and responses are decoded only when
// the server declares a JSON content type. Any status outside [200,300) is
// returned as an *Error that carries the decoded error body, so callers can
// branch on the backend's error code:
//
//	err := client.Do(ctx, http.MethodPost, "/provider/login/register", body, nil)
//	switch api.Code(err) {
//	case api.CodeIdentityExists:
//		// account already present
//	case api.CodeIdentityNeedsActivation:
//		// continue with the activation code in api.BodyOf(err).Code
//	}
//
// The client never retries. A failed request surfaces immediately and the
// caller decides what to do with it.
package api

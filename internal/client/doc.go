// Package client is the entry point resource modules use to talk to the
// management API.
//
// A Client holds an immutable request context (endpoint and static headers)
// and, when an OAuth app is configured, the oauth.Handler and the
// transport.Interceptor that share one oauth.TokenStore. Nothing mutates a
// shared header map: Headers derives the Authorization header from the store
// each time it is called.
//
//	c, err := client.New(client.Config{
//		Endpoint: "https://api.contentstack.io/v3",
//		APIKey:   "blt...",
//		OAuth:    &oauth.Config{AppID: "...", ClientID: "...", RedirectURI: "http://localhost:8184"},
//	})
//	resp, err := c.Do(ctx, http.MethodGet, "stacks", nil)
package client

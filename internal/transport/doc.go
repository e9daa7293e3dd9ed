// Package transport sends management API requests on behalf of an OAuth
// handler.
//
// The Interceptor makes sure a valid access token exists before a request
// leaves, attaches the default headers, refreshes the token once when the
// server answers 401 and backs off on 429 and 5xx responses. Retries happen
// in a bounded loop; after the last attempt the final response is handed
// back unchanged.
package transport

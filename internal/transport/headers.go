package transport

import (
	"net/http"
	"strings"
)

// SDKName prefixes the user agent.
const SDKName = "contentstack-management-go"

// Version is the SDK version reported when no other is configured.
// It is set at build time.
var Version = "dev"

// Header names and values set on every request.
const (
	HeaderUserAgent     = "User-Agent"
	HeaderXUserAgent    = "X-User-Agent"
	HeaderEarlyAccess   = "x-header-ea"
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"

	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// UserAgent formats the SDK user agent for version.
func UserAgent(version string) string {
	return SDKName + "/" + version
}

// RequestContext is the immutable part of every request: the API endpoint
// and static headers such as api_key or organization_uid.
type RequestContext struct {
	Endpoint string
	Headers  http.Header
}

// WithHeader returns a copy of the context with one more static header.
func (rc RequestContext) WithHeader(key, value string) RequestContext {
	headers := rc.Headers.Clone()
	if headers == nil {
		headers = make(http.Header)
	}
	headers.Set(key, value)
	return RequestContext{Endpoint: rc.Endpoint, Headers: headers}
}

// earlyAccessValue joins the configured features, or reports "true" when
// none are configured.
func earlyAccessValue(features []string) string {
	if len(features) == 0 {
		return "true"
	}
	return strings.Join(features, ",")
}

// buildHeaders assembles the headers of one attempt. Later sources win:
// defaults, the static context headers, the bearer token, then the
// per-request headers. The token endpoint never gets an Authorization header.
func (i *Interceptor) buildHeaders(tokenEndpoint bool, accessToken string, extra http.Header) http.Header {
	h := make(http.Header)
	h.Set(HeaderUserAgent, i.userAgent)
	h.Set(HeaderXUserAgent, i.userAgent)
	h.Set(HeaderEarlyAccess, earlyAccessValue(i.earlyAccess))

	if tokenEndpoint {
		h.Set(HeaderContentType, ContentTypeForm)
	} else {
		h.Set(HeaderContentType, ContentTypeJSON)
	}

	for key, values := range i.reqCtx.Headers {
		h[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}
	if !tokenEndpoint && accessToken != "" {
		h.Set(HeaderAuthorization, "Bearer "+accessToken)
	}
	for key, values := range extra {
		h[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}
	if tokenEndpoint {
		h.Del(HeaderAuthorization)
	}
	return h
}

package login

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/contentstack/contentstack-management-go/pkg/logging"
)

// CallbackTimeout is how long the login waits for the browser redirect.
const CallbackTimeout = 10 * time.Minute

//go:embed templates/callback_success.html
var callbackSuccessHTML string

//go:embed templates/callback_error.html
var callbackErrorHTML string

var (
	successTemplate = template.Must(template.New("success").Parse(callbackSuccessHTML))
	errorTemplate   = template.Must(template.New("error").Parse(callbackErrorHTML))
)

// CallbackServer is a temporary local HTTP server that captures one OAuth
// redirect.
type CallbackServer struct {
	host     string
	port     string
	path     string
	server   *http.Server
	listener net.Listener
	resultCh chan string
	errorCh  chan error
	once     sync.Once
	stopOnce sync.Once
}

// NewCallbackServer prepares a server for redirectURI, which must point at
// localhost or a loopback address. Port 0 picks a free port.
func NewCallbackServer(redirectURI string) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", redirectURI, err)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("redirect URI %q must use http to be served locally", redirectURI)
	}
	host := u.Hostname()
	if host != "localhost" {
		if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
			return nil, fmt.Errorf("redirect URI %q is not a loopback address", redirectURI)
		}
	}
	port := u.Port()
	if port == "" {
		port = "80"
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	return &CallbackServer{
		host:     host,
		port:     port,
		path:     path,
		resultCh: make(chan string, 1),
		errorCh:  make(chan error, 1),
	}, nil
}

// Start listens on the redirect port and serves until the context is
// cancelled or a redirect has been captured.
func (s *CallbackServer) Start(ctx context.Context) error {
	bindHost := s.host
	if bindHost == "localhost" {
		bindHost = "127.0.0.1"
	}
	addr := net.JoinHostPort(bindHost, s.port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}
	s.listener = listener
	s.port = fmt.Sprint(listener.Addr().(*net.TCPAddr).Port)

	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	logging.Debug("Login", "Callback server listening on %s%s", addr, s.path)
	return nil
}

// RedirectURI is the URL the server answers on.
func (s *CallbackServer) RedirectURI() string {
	return "http://" + net.JoinHostPort(s.host, s.port) + s.path
}

// WaitForCallback returns the full redirect URL, including its query.
func (s *CallbackServer) WaitForCallback(ctx context.Context) (string, error) {
	select {
	case redirectURL := <-s.resultCh:
		return redirectURL, nil
	case err := <-s.errorCh:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	// Browsers also ask for /favicon.ico and the like on "/".
	if query.Get("code") == "" && query.Get("error") == "" {
		http.NotFound(w, r)
		return
	}

	handled := false
	s.once.Do(func() {
		handled = true
		s.processCallback(w, r)
	})
	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

func (s *CallbackServer) processCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	query := r.URL.Query()
	var err error
	if errCode := query.Get("error"); errCode != "" {
		err = errorTemplate.Execute(w, map[string]string{
			"Error":       errCode,
			"Description": query.Get("error_description"),
		})
	} else {
		err = successTemplate.Execute(w, nil)
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}

	redirectURL := "http://" + net.JoinHostPort(s.host, s.port) + r.URL.RequestURI()
	select {
	case s.resultCh <- redirectURL:
	default:
	}

	go func() {
		time.Sleep(time.Second)
		s.Stop()
	}()
}

// Stop shuts the server down. It is safe to call more than once.
func (s *CallbackServer) Stop() {
	s.stopOnce.Do(func() {
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

// trimQuery drops the query of a URL for logging.
func trimQuery(rawURL string) string {
	if idx := strings.IndexByte(rawURL, '?'); idx >= 0 {
		return rawURL[:idx]
	}
	return rawURL
}

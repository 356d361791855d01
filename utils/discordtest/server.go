// Package discordtest serves a scripted stand-in for the Discord REST API.
package discordtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sync"
	"testing"

	"community-bot/ratelimit"
	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// BotUserID is the user id the fake session reports for itself.
const BotUserID = "900000000000000001"

var (
	apiPrefix   = regexp.MustCompile(`^/api/v\d+`)
	channelPath = regexp.MustCompile(`^/channels/(\d+)$`)
)

// Request is one call received by the server.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Decode unmarshals the request body into v.
func (r Request) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Server records every request and answers from registered routes.
// Unregistered routes get the channel object for DELETE /channels/{id},
// 204 for other DELETE and PUT requests, and 200 "{}" otherwise.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []Request
}

func NewServer(t testing.TB) *Server {
	s := &Server{routes: make(map[string]http.HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers h for method and path, the path taken relative to the API root.
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = h
}

// Reply registers a fixed JSON response.
func (s *Server) Reply(method, path string, status int, body any) {
	data, _ := json.Marshal(body)
	s.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(data)
	})
}

// Requests returns the recorded calls matching method and path. Empty values match anything.
func (s *Server) Requests(method, path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Request
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && (path == "" || r.Path == path) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := apiPrefix.ReplaceAllString(r.URL.Path, "")

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: path, Body: body})
	h, ok := s.routes[r.Method+" "+path]
	s.mu.Unlock()

	if ok {
		h(w, r)
		return
	}
	if m := channelPath.FindStringSubmatch(path); m != nil && r.Method == http.MethodDelete {
		// Discord returns the deleted channel.
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": m[1]})
		return
	}
	switch r.Method {
	case http.MethodDelete, http.MethodPut:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{}"))
	}
}

// Transport redirects every request to the server, keeping method, path and body.
func (s *Server) Transport() http.RoundTripper {
	target, _ := url.Parse(s.URL)
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		out := req.Clone(req.Context())
		out.URL.Scheme = target.Scheme
		out.URL.Host = target.Host
		out.Host = target.Host
		return http.DefaultTransport.RoundTrip(out)
	})
}

// Session returns a discordgo session whose REST calls reach the server through th.
func (s *Server) Session(th *ratelimit.Throttle) *discordgo.Session {
	dg, _ := discordgo.New("Bot test-token")
	dg.Client = utils.NewHTTPClient(th, s.Transport())
	dg.ShouldRetryOnRateLimit = false
	dg.MaxRestRetries = 0
	dg.State.User = &discordgo.User{ID: BotUserID, Username: "bot"}
	return dg
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

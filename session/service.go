// Package session owns the client-side notion of "who is currently logged
// in". The Service is the façade every other component consumes: the login
// flow drives it, the request authorizer reads its token, the route guard
// reads its snapshot, and CRUD collaborators watch its current-user stream.
// It is the single writer of the credential store.
package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/erpinterno/erpadmin/credstore"
)

// Status is the session state: exactly one holds at any instant.
type Status int

const (
	// StatusUnauthenticated means no credential is held.
	StatusUnauthenticated Status = iota
	// StatusAuthenticatedPending means a token is held but the profile has
	// not been loaded yet.
	StatusAuthenticatedPending
	// StatusAuthenticated means a token and a fetched profile are held.
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticatedPending:
		return "authenticated_pending"
	case StatusAuthenticated:
		return "authenticated"
	}
	return "unauthenticated"
}

const (
	defaultLoginPath   = "/auth/login"
	defaultProfilePath = "/users/me"
)

// Service manages the session lifecycle. All state transitions happen under
// one lock together with the credential store write, so no reader ever
// observes a token without the session status reflecting it, or vice versa.
type Service struct {
	repo        credstore.Repo
	baseURL     string
	loginPath   string
	profilePath string
	httpClient  *http.Client
	nowTime     func() time.Time

	mu      sync.Mutex
	status  Status
	cred    *credstore.Credential
	profile *credstore.Profile
	subs    map[*Subscription]struct{}
}

// Option modifies the Service instance.
type Option func(*Service)

// WithHTTPClient sets the HTTP client used for the auth and profile
// endpoints. The service deliberately does not use the authorized client:
// both endpoints are its own traffic.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.httpClient = client
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithLoginPath overrides the login endpoint path.
func WithLoginPath(path string) Option {
	return func(s *Service) {
		s.loginPath = path
	}
}

// WithProfilePath overrides the profile endpoint path.
func WithProfilePath(path string) Option {
	return func(s *Service) {
		s.profilePath = path
	}
}

// New initializes the Service and restores any persisted session. A stored
// token whose JWT exp claim has already passed is discarded instead of
// restored, so the client never starts up believing in a dead session.
func New(repo credstore.Repo, baseURL string, options ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[session.New] credential repo is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[session.New] base URL is required")
	}

	s := &Service{
		repo:        repo,
		baseURL:     strings.TrimRight(baseURL, "/"),
		loginPath:   defaultLoginPath,
		profilePath: defaultProfilePath,
		httpClient:  http.DefaultClient,
		nowTime:     time.Now,
		subs:        make(map[*Subscription]struct{}),
	}
	for _, opt := range options {
		opt(s)
	}

	if err := s.restore(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) restore() error {
	cred, err := s.repo.Read()
	if err != nil {
		return errors.Wrap(err, "[Service.restore] read credential")
	}
	if cred == nil {
		return nil
	}
	if tokenExpired(cred.Token, s.nowTime()) {
		if err := s.repo.Clear(); err != nil {
			return errors.Wrap(err, "[Service.restore] clear expired credential")
		}
		return nil
	}
	profile, err := s.repo.ReadProfile()
	if err != nil {
		return errors.Wrap(err, "[Service.restore] read profile")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	s.profile = profile
	if profile != nil {
		s.status = StatusAuthenticated
	} else {
		s.status = StatusAuthenticatedPending
	}
	return nil
}

// Login exchanges the identifier and secret for a credential at the auth
// endpoint (form-encoded password grant). On success the credential is
// persisted and the session becomes AuthenticatedPending in one step; the
// profile is not fetched here. On failure the session is left untouched and
// an AuthError is returned.
func (s *Service) Login(ctx context.Context, identifier, secret string) (*credstore.Credential, error) {
	conf := oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.baseURL + s.loginPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	tok, err := conf.PasswordCredentialsToken(ctx, identifier, secret)
	if err != nil {
		return nil, classifyLoginError(err)
	}

	cred := &credstore.Credential{Token: tok.AccessToken, TokenType: tok.Type()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Write(cred, nil); err != nil {
		return nil, errors.Wrap(err, "[Service.Login] persist credential")
	}
	s.cred = cred
	s.profile = nil
	s.status = StatusAuthenticatedPending
	s.emitLocked()
	return cred, nil
}

// FetchCurrentProfile loads the profile for the held credential and advances
// the session to Authenticated. A failure is reported but never tears the
// session down: the token was accepted by the server that issued it, so a
// profile endpoint hiccup is not an authentication failure.
func (s *Service) FetchCurrentProfile(ctx context.Context) (*credstore.Profile, error) {
	scheme, token, ok := s.Token()
	if !ok {
		return nil, newAuthError(KindUnauthorized, errors.New("no credential held"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+s.profilePath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.FetchCurrentProfile] build request")
	}
	req.Header.Set("Authorization", scheme+" "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, newAuthError(KindProfileFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, newAuthError(KindProfileFetchFailed, errors.Errorf("profile endpoint returned %d", resp.StatusCode))
	}

	profile := &credstore.Profile{}
	if err := json.NewDecoder(resp.Body).Decode(profile); err != nil {
		return nil, newAuthError(KindProfileFetchFailed, err)
	}

	if err := s.ApplyProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ApplyProfile stores a profile for the held credential and advances the
// session to Authenticated. Used by the profile fetch and by explicit
// profile patches after login.
func (s *Service) ApplyProfile(profile *credstore.Profile) error {
	if profile == nil {
		return errors.New("[Service.ApplyProfile] profile is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return newAuthError(KindUnauthorized, errors.New("no credential held"))
	}
	if err := s.repo.Write(s.cred, profile); err != nil {
		return errors.Wrap(err, "[Service.ApplyProfile] persist profile")
	}
	s.profile = profile
	s.status = StatusAuthenticated
	s.emitLocked()
	return nil
}

// Logout clears the credential store and marks the session Unauthenticated.
// Idempotent: concurrent 401 handlers may all call it, the net effect is one
// transition and one emission.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusUnauthenticated {
		return
	}
	if err := s.repo.Clear(); err != nil {
		// The in-memory state still transitions: a failed disk clear must
		// not leave the client believing it is logged in.
		log.Err(err).Msg("failed to clear credential store on logout")
	}
	s.cred = nil
	s.profile = nil
	s.status = StatusUnauthenticated
	s.emitLocked()
}

// IsAuthenticated reports whether a credential is held. Token existence, not
// profile existence: callers needing the profile must read Snapshot.
func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred != nil
}

// Token returns the authorization scheme and raw token. Only the request
// authorizer should need this.
func (s *Service) Token() (scheme, token string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return "", "", false
	}
	return s.cred.Scheme(), s.cred.Token, true
}

// Snapshot returns the status and profile as one consistent read. Guard
// decisions are made from this, never from the stream.
func (s *Service) Snapshot() (Status, *credstore.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return s.status, nil
	}
	p := *s.profile
	return s.status, &p
}

// CurrentUser subscribes to the current-user stream. The subscription
// immediately carries the present value: nil while Unauthenticated or
// AuthenticatedPending, the profile once Authenticated.
func (s *Service) CurrentUser() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &Subscription{
		service: s,
		updates: make(chan *credstore.Profile, 1),
	}
	s.subs[sub] = struct{}{}
	sub.push(s.emittedLocked())
	return sub
}

func (s *Service) emittedLocked() *credstore.Profile {
	if s.status != StatusAuthenticated || s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *Service) emitLocked() {
	value := s.emittedLocked()
	for sub := range s.subs {
		sub.push(value)
	}
}

func classifyLoginError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		resp := retrieveErr.Response
		switch {
		case resp == nil:
			return newAuthError(KindUnknown, err)
		case resp.StatusCode == http.StatusBadRequest,
			resp.StatusCode == http.StatusUnauthorized,
			resp.StatusCode == http.StatusUnprocessableEntity:
			return newAuthError(KindInvalidCredentials, err)
		case resp.StatusCode >= http.StatusInternalServerError:
			return newAuthError(KindServerError, err)
		default:
			return newAuthError(KindUnknown, err)
		}
	}
	return newAuthError(KindNetworkUnreachable, err)
}

// tokenExpired reports whether a JWT carries an exp claim in the past. The
// parse is unverified: signature checking is the server's job, this is only
// a client-side freshness probe. Opaque tokens pass through as not expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

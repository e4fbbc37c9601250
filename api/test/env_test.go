package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/plutov/paypal/v4"
	"github.com/sinahosseinzadeh97/Projects-sub001/api"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/background"
	"github.com/sinahosseinzadeh97/Projects-sub001/config"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/claims"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/user"
	"github.com/sinahosseinzadeh97/Projects-sub001/database"
	"github.com/sinahosseinzadeh97/Projects-sub001/rate"
	"github.com/sinahosseinzadeh97/Projects-sub001/validate"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"golang.org/x/crypto/bcrypt"
)

// Server is the running API under test plus the cookie-carrying client used
// to talk to it.
type Server struct {
	URL    string
	client *http.Client
}

func (s *Server) Client() *http.Client {
	return s.client
}

// TestEnv wires a throwaway postgres container, mock payment providers and a
// mail recorder behind a live API server. Each test function gets its own.
type TestEnv struct {
	*Server

	DB     *sqlx.DB
	Paypal *mockPaypal
	Stripe *mockStripe
	Mail   *mailRecorder

	UserEmail  string
	UserPass   string
	AdminEmail string
	AdminPass  string

	WebhookSecret string
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("connecting to docker: %w", err)
	}

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       name,
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=postgres",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("running postgres container: %w", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(res); err != nil {
			t.Logf("purging postgres container: %v", err)
		}
	})

	dbCfg := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       "localhost:" + res.GetPort("5432/tcp"),
		Name:       "postgres",
		DisableTLS: true,
	}

	var db *sqlx.DB
	if err := pool.Retry(func() error {
		db, err = database.Open(dbCfg)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		return nil, fmt.Errorf("waiting for postgres: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating the test db: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(testWriter{t})

	session := scs.New()
	session.Lifetime = 24 * time.Hour

	mp := &mockPaypal{}
	ppSrv := httptest.NewServer(mp.handle())
	t.Cleanup(ppSrv.Close)

	pp, err := paypal.NewClient("test-client", "test-secret", ppSrv.URL)
	if err != nil {
		return nil, fmt.Errorf("building the paypal test client: %w", err)
	}

	ms := &mockStripe{}
	stSrv := httptest.NewServer(ms.handle())
	t.Cleanup(stSrv.Close)

	sb := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL: stripe.String(stSrv.URL),
	})
	strp := &stripecl.API{}
	strp.Init("sk_test_123", &stripe.Backends{API: sb, Uploads: sb, Connect: sb})

	const webhookSecret = "whsec_test"
	mail := &mailRecorder{}

	env := &TestEnv{
		DB:            db,
		Paypal:        mp,
		Stripe:        ms,
		Mail:          mail,
		UserEmail:     "user@test.com",
		UserPass:      "userpassword",
		AdminEmail:    "admin@test.com",
		AdminPass:     "adminpassword",
		WebhookSecret: webhookSecret,
	}

	if err := env.seed(); err != nil {
		return nil, fmt.Errorf("seeding test users: %w", err)
	}

	mux := api.APIMux(api.APIConfig{
		Log:          logger,
		DB:           db,
		Session:      session,
		Mailer:       mail,
		TokenTimeout: time.Hour,
		Background:   background.New(logger),
		Paypal:       pp,
		Stripe:       strp,
		StripeCfg: config.Stripe{
			WebhookSecret: webhookSecret,
			SuccessURL:    "http://localhost/success",
			CancelURL:     "http://localhost/cancel",
		},
		ActivationRequired: true,
		Limiter:            rate.NewLimiter(100, 100, 100),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	env.Server = &Server{
		URL:    srv.URL,
		client: &http.Client{Jar: jar},
	}

	return env, nil
}

func (e *TestEnv) seed() error {
	seedUser := func(name, email, pass, role string) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		return user.Create(context.Background(), e.DB, user.User{
			ID:           validate.GenerateID(),
			Name:         name,
			Email:        email,
			Role:         role,
			PasswordHash: hash,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	if err := seedUser("Test User", e.UserEmail, e.UserPass, claims.RoleUser); err != nil {
		return err
	}
	return seedUser("Test Admin", e.AdminEmail, e.AdminPass, claims.RoleAdmin)
}

func Login(s *Server, email string, password string) error {
	creds := map[string]string{"email": email, "password": password}
	b, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	w, err := s.Client().Post(s.URL+"/auth/login", "application/json", bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("login as %s failed: status code %s", email, w.Status)
	}
	return nil
}

func Logout(s *Server) error {
	w, err := s.Client().Post(s.URL+"/auth/logout", "application/json", nil)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout failed: status code %s", w.Status)
	}
	return nil
}

// mailRecorder stands in for the SMTP mailer and keeps the plaintext tokens
// so tests can complete activation and recovery flows.
type mailRecorder struct {
	mu         sync.Mutex
	Activation map[string]string
	Recovery   map[string]string
}

func (m *mailRecorder) SendActivationToken(token string, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Activation == nil {
		m.Activation = make(map[string]string)
	}
	m.Activation[to] = token
	return nil
}

func (m *mailRecorder) SendRecoveryToken(token string, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Recovery == nil {
		m.Recovery = make(map[string]string)
	}
	m.Recovery[to] = token
	return nil
}

// Token polls for a recorded token, since delivery happens on the background
// group.
func (m *mailRecorder) Token(scope string, to string) (string, bool) {
	for i := 0; i < 50; i++ {
		m.mu.Lock()
		var tok string
		var ok bool
		if scope == "activation" {
			tok, ok = m.Activation[to]
		} else {
			tok, ok = m.Recovery[to]
		}
		m.mu.Unlock()

		if ok {
			return tok, true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return "", false
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(b []byte) (int, error) {
	w.t.Log(string(b))
	return len(b), nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jmoiron/sqlx"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/web"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/weberr"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/claims"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/user"
	"github.com/sinahosseinzadeh97/Projects-sub001/random"
	"github.com/sinahosseinzadeh97/Projects-sub001/validate"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

const oauthStateKey = "oauth_state"

type ProviderConfig struct {
	Name        string
	Client      string
	Secret      string
	URL         string
	RedirectURL string
}

type Provider struct {
	config   oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// MakeProviders discovers each configured OIDC issuer and builds its oauth2
// exchange config and ID token verifier.
func MakeProviders(ctx context.Context, cfgs []ProviderConfig) (map[string]Provider, error) {
	provs := make(map[string]Provider, len(cfgs))
	for _, c := range cfgs {
		p, err := oidc.NewProvider(ctx, c.URL)
		if err != nil {
			return nil, fmt.Errorf("discovering provider %q at %s: %w", c.Name, c.URL, err)
		}

		provs[c.Name] = Provider{
			config: oauth2.Config{
				ClientID:     c.Client,
				ClientSecret: c.Secret,
				Endpoint:     p.Endpoint(),
				RedirectURL:  c.RedirectURL,
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
			verifier: p.Verifier(&oidc.Config{ClientID: c.Client}),
		}
	}

	return provs, nil
}

func HandleOauthLogin(session *scs.SessionManager, provs map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		name := web.Param(r, "provider")
		prov, ok := provs[name]
		if !ok {
			return weberr.NotFound(fmt.Errorf("unknown oauth provider %q", name))
		}

		state := random.String(32)
		session.Put(ctx, oauthStateKey, state)

		http.Redirect(w, r, prov.config.AuthCodeURL(state), http.StatusTemporaryRedirect)
		return nil
	}
}

func HandleOauthCallback(db *sqlx.DB, session *scs.SessionManager, provs map[string]Provider, redirectURL string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		name := web.Param(r, "provider")
		prov, ok := provs[name]
		if !ok {
			return weberr.NotFound(fmt.Errorf("unknown oauth provider %q", name))
		}

		state := session.PopString(ctx, oauthStateKey)
		if state == "" || state != r.URL.Query().Get("state") {
			return weberr.BadRequest(errors.New("oauth state mismatch"))
		}

		token, err := prov.config.Exchange(ctx, r.URL.Query().Get("code"))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("exchanging oauth code: %w", err))
		}

		rawID, ok := token.Extra("id_token").(string)
		if !ok {
			return weberr.BadRequest(errors.New("oauth token is missing the id_token"))
		}

		idToken, err := prov.verifier.Verify(ctx, rawID)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("verifying id token: %w", err))
		}

		var profile struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := idToken.Claims(&profile); err != nil {
			return fmt.Errorf("extracting id token claims: %w", err)
		}

		usr, err := resolveOauthUser(ctx, db, profile.Name, profile.Email)
		if err != nil {
			return fmt.Errorf("resolving oauth user: %w", err)
		}

		if err := Login(ctx, session, usr.ID, usr.Role); err != nil {
			return err
		}

		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
		return nil
	}
}

// resolveOauthUser upserts the account behind a provider-verified email:
// unknown emails get a fresh active account, and an existing account is
// activated if it wasn't already, since the provider vouches for the address.
func resolveOauthUser(ctx context.Context, db *sqlx.DB, name string, email string) (user.User, error) {
	usr, err := user.FetchByEmail(ctx, db, email)
	if errors.Is(err, user.ErrNotFound) {
		return oauthSignup(ctx, db, name, email)
	}
	if err != nil {
		return user.User{}, err
	}

	if !usr.Active {
		if err := user.Activate(ctx, db, usr.ID); err != nil {
			return user.User{}, err
		}
		usr.Active = true
	}

	return usr, nil
}

// oauthSignup creates an already-active account for a user who first signed in
// through an OIDC provider. The password is random and unknown: it can be
// reset later through the recovery flow.
func oauthSignup(ctx context.Context, db *sqlx.DB, name string, email string) (user.User, error) {
	pass, err := random.StringSecure(32)
	if err != nil {
		return user.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, err
	}

	now := time.Now().UTC()
	usr := user.User{
		ID:           validate.GenerateID(),
		Name:         name,
		Email:        email,
		Role:         claims.RoleUser,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Create(ctx, db, usr); err != nil {
		return user.User{}, err
	}

	return usr, nil
}

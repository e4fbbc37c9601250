package config

import "time"

// Config collects every tunable of the service. Values are parsed from the
// environment by ardanlabs/conf using the MARKET prefix.
type Config struct {
	Web    Web
	DB     DB
	Cors   Cors
	Auth   Auth
	Rate   Rate
	Email  Email
	Stripe Stripe
	Paypal Paypal
	Oauth  Oauth
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost:5432"`
	Name       string `conf:"default:postgres"`
	DisableTLS bool   `conf:"default:true"`
}

type Cors struct {
	Origin string
}

type Auth struct {
	ActivationRequired bool `conf:"default:false"`
}

type Rate struct {
	Burst    int     `conf:"default:5"`
	Expiry   int     `conf:"default:60"`
	LimitRPS float64 `conf:"default:1"`
}

type Email struct {
	Host          string
	Port          string
	Address       string
	Password      string `conf:"mask"`
	ActivationURL string
	RecoveryURL   string
	TokenTimeout  time.Duration `conf:"default:15m"`
}

type Stripe struct {
	APISecret     string `conf:"mask"`
	WebhookSecret string `conf:"mask"`
	SuccessURL    string
	CancelURL     string
}

type Paypal struct {
	ClientID string
	Secret   string `conf:"mask"`
	URL      string `conf:"default:https://api.sandbox.paypal.com"`
}

type Oauth struct {
	DiscoveryTimeout time.Duration `conf:"default:30s"`
	LoginRedirectURL string
	Google           Provider
}

type Provider struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string
}

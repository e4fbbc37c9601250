package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/plutov/paypal/v4"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/background"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/middleware"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/web"
	"github.com/sinahosseinzadeh97/Projects-sub001/config"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/auth"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/cart"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/order"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/product"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/project"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/token"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/tutor"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/user"
	"github.com/sinahosseinzadeh97/Projects-sub001/core/wallet"
	"github.com/sinahosseinzadeh97/Projects-sub001/rate"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

type APIConfig struct {
	CorsOrigin         string
	Log                logrus.FieldLogger
	DB                 *sqlx.DB
	Session            *scs.SessionManager
	Mailer             token.Mailer
	TokenTimeout       time.Duration
	Background         *background.Background
	Paypal             *paypal.Client
	Stripe             *stripecl.API
	StripeCfg          config.Stripe
	Providers          map[string]auth.Provider
	LoginRedirectURL   string
	ActivationRequired bool
	Limiter            *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)

	var limited web.Middleware
	if cfg.Limiter != nil {
		limited = middleware.RateLimit(cfg.Limiter)
	}

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session, cfg.ActivationRequired), limited)
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session), limited)
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Session, cfg.Providers, cfg.LoginRedirectURL))

	a.Handle(http.MethodPost, "/tokens", token.HandleToken(cfg.DB, cfg.Mailer, cfg.TokenTimeout, cfg.Background), limited)
	a.Handle(http.MethodPost, "/tokens/activate", token.HandleActivation(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/tokens/recover", token.HandleRecovery(cfg.DB))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodGet, "/users/{id}", user.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPost, "/users", user.HandleCreate(cfg.DB), admin)

	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/products", product.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/products/{id}", product.HandleUpdate(cfg.DB), admin)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/cart", cart.HandleDelete(cfg.DB), authen)
	a.Handle(http.MethodPut, "/cart/items", cart.HandleCreateItem(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/cart/items/{product_id}", cart.HandleDeleteItem(cfg.DB), authen)

	a.Handle(http.MethodGet, "/orders", order.HandleList(cfg.DB), authen)
	a.Handle(http.MethodPost, "/orders/paypal", order.HandlePaypalCheckout(cfg.DB, cfg.Paypal), authen)
	a.Handle(http.MethodPost, "/orders/paypal/{id}/capture", order.HandlePaypalCapture(cfg.DB, cfg.Paypal), authen)
	a.Handle(http.MethodPost, "/orders/stripe", order.HandleStripeCheckout(cfg.DB, cfg.Stripe, cfg.StripeCfg), authen)
	a.Handle(http.MethodPost, "/orders/stripe/capture", order.HandleStripeCapture(cfg.DB, cfg.StripeCfg))

	a.Handle(http.MethodGet, "/tutors/{id}", tutor.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/tutors", tutor.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/tutors", tutor.HandleCreate(cfg.DB), authen)

	a.Handle(http.MethodGet, "/bookings", tutor.HandleListBookings(cfg.DB), authen)
	a.Handle(http.MethodPost, "/bookings", tutor.HandleCreateBooking(cfg.DB), authen)
	a.Handle(http.MethodPut, "/bookings/{id}/confirm", tutor.HandleConfirmBooking(cfg.DB), authen)
	a.Handle(http.MethodPut, "/bookings/{id}/cancel", tutor.HandleCancelBooking(cfg.DB), authen)

	a.Handle(http.MethodGet, "/wallets/{id}/transactions", wallet.HandleListTransactions(cfg.DB), authen)
	a.Handle(http.MethodPost, "/wallets/{id}/transactions", wallet.HandleCreateTransaction(cfg.DB), authen)
	a.Handle(http.MethodGet, "/wallets/{id}", wallet.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodGet, "/wallets", wallet.HandleList(cfg.DB), authen)
	a.Handle(http.MethodPost, "/wallets", wallet.HandleCreate(cfg.DB), authen)

	a.Handle(http.MethodGet, "/projects/stats", project.HandleStats(cfg.DB), authen)
	a.Handle(http.MethodGet, "/projects/{id}", project.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodGet, "/projects", project.HandleList(cfg.DB), authen)
	a.Handle(http.MethodPost, "/projects", project.HandleCreate(cfg.DB), authen)
	a.Handle(http.MethodPut, "/projects/{id}", project.HandleUpdate(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/projects/{id}", project.HandleDelete(cfg.DB), authen)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}

package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/sinahosseinzadeh97/Projects-sub001/api/web"
	"github.com/sinahosseinzadeh97/Projects-sub001/api/weberr"
	"github.com/sinahosseinzadeh97/Projects-sub001/rate"
)

// RateLimit rejects clients exceeding the limiter's budget, keyed by the
// client IP.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !lim.Check(ip) {
				err := errors.New("rate limit exceeded")
				return weberr.NewError(err, err.Error(), http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

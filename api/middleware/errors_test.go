package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sinahosseinzadeh97/Projects-sub001/api/weberr"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestErrorsRendersResponse(t *testing.T) {
	base := errors.New("not enough stock")
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return weberr.NewError(base, base.Error(), http.StatusUnprocessableEntity)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	err := Errors(discardLogger())(h)(req.Context(), rec, req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"not enough stock"}`, rec.Body.String())
}

func TestErrorsRendersWrappedResponse(t *testing.T) {
	// Context added along the way must not hide the status the error carries.
	base := errors.New("not enough stock")
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		err := weberr.NewError(base, base.Error(), http.StatusUnprocessableEntity)
		return fmt.Errorf("checking out the cart: %w", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	err := Errors(discardLogger())(h)(req.Context(), rec, req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"not enough stock"}`, rec.Body.String())
}

func TestErrorsHidesPlainErrors(t *testing.T) {
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("connection refused")
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	err := Errors(discardLogger())(h)(req.Context(), rec, req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

// Package controllers holds the HTTP handlers of the mirror API. Every
// handler reads from or mutates a services.Mirror and answers with the
// response envelope.
package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"

	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/pkg/bind"
	"github.com/shashiranjanraj/stockmirror/pkg/logger"
	"github.com/shashiranjanraj/stockmirror/pkg/response"
)

// respond writes the outcome of a mutation.
func respond[T any](w http.ResponseWriter, r *http.Request, res services.Result[T], err error) {
	if err != nil {
		fail(w, r, err)
		return
	}
	switch res.Outcome {
	case services.NotFound:
		response.NotFound(w)
	case services.Created:
		response.Created(w, res.Record)
	case services.Deleted:
		response.Message(w, "Deleted", res.Record)
	default:
		response.Success(w, res.Record)
	}
}

// fail maps a service error to its status code.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(w, verr.Message, verr.Fields)
	case errors.Is(err, services.ErrNotReady):
		response.Unavailable(w, "The mirror is not loaded yet.")
	default:
		logger.WithCtx(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		response.ServerError(w)
	}
}

// decode binds a JSON body, answering 400 or 422 itself when it fails.
func decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	errs, err := bind.JSON(r, dest)
	if err != nil {
		response.BadRequest(w, err.Error())
		return false
	}
	if errs != nil {
		response.ValidationError(w, "", errs)
		return false
	}
	return true
}

// decodePatch binds a partial body. Rules run on the merged record.
func decodePatch(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := bind.Decode(r, dest); err != nil {
		response.BadRequest(w, err.Error())
		return false
	}
	return true
}

// show answers with the record or a 404.
func show[T any](w http.ResponseWriter, rec T, ok bool) {
	if !ok {
		response.NotFound(w)
		return
	}
	response.Success(w, rec)
}

func id(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// queryInt reads a positive integer query parameter, or fallback.
func queryInt(r *http.Request, key string, fallback int) int {
	n, err := cast.ToIntE(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

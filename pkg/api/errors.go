// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package api

import (
	"net/http"

	"github.com/go-chi/render"
)

// ErrResponse renders errors as problem details.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Render sets the http status before marshalling.
func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func newErrResponse(err error, status int, title string) render.Renderer {
	e := &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		Type:           "about:blank",
		Title:          title,
		Status:         status,
	}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

// ErrInvalidRequest is returned when the request cannot be processed.
func ErrInvalidRequest(err error) render.Renderer {
	return newErrResponse(err, http.StatusBadRequest, "Invalid request.")
}

// ErrServer is returned on a server side failure, typically a database error.
func ErrServer(err error) render.Renderer {
	return newErrResponse(err, http.StatusInternalServerError, "Server error.")
}

// ErrRender is returned when the response cannot be rendered.
func ErrRender(err error) render.Renderer {
	return newErrResponse(err, http.StatusUnprocessableEntity, "Error rendering response.")
}

// ErrNotFound is returned when a resource does not exist.
var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, Type: "about:blank", Title: "Resource not found.", Status: http.StatusNotFound}

// ErrUnauthorized is returned when the credentials or token are missing or invalid.
func ErrUnauthorized(err error) render.Renderer {
	return newErrResponse(err, http.StatusUnauthorized, "Unauthorized.")
}

// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package api

import (
	"context"
	"net/http"
	"strconv"
)

// PaginationKey is used to store pagination parameters in the context.
type PaginationKey string

const (
	PageKey    PaginationKey = "page"
	PerPageKey PaginationKey = "per_page"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
)

// Paginate reads the page and per_page query parameters and stores them in the context.
func Paginate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// default values
		page := DefaultPage
		perPage := DefaultPerPage

		// read query parameters
		q := r.URL.Query()
		if p := q.Get("page"); p != "" {
			if val, err := strconv.Atoi(p); err == nil && val > 0 {
				page = val
			}
		}
		if pp := q.Get("per_page"); pp != "" {
			if val, err := strconv.Atoi(pp); err == nil && val > 0 {
				perPage = val
			}
		}

		// add to context
		ctx := context.WithValue(r.Context(), PageKey, page)
		ctx = context.WithValue(ctx, PerPageKey, perPage)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// pagination returns the page parameters set by Paginate, zeros if absent.
func pagination(r *http.Request) (page, perPage int) {
	page, _ = r.Context().Value(PageKey).(int)
	perPage, _ = r.Context().Value(PerPageKey).(int)
	return page, perPage
}

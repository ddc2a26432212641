// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package track

import (
	"net/url"
)

// Environment gives access to the runtime context of the emitter,
// read each time an event is emitted.
type Environment interface {
	PageURL() string
	PageTitle() string
	UserAgent() string
}

// StaticEnvironment is an Environment with fixed values.
type StaticEnvironment struct {
	URL   string
	Title string
	Agent string
}

func (e StaticEnvironment) PageURL() string   { return e.URL }
func (e StaticEnvironment) PageTitle() string { return e.Title }
func (e StaticEnvironment) UserAgent() string { return e.Agent }

// pagePath returns the path of a page url, "/" for an empty path.
func pagePath(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// isDevelopmentHost indicates a page served from the local machine.
func isDevelopmentHost(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1"
}

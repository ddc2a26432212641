// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package main

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/claimnavigator/cn-analytics/pkg/api"
	"github.com/claimnavigator/cn-analytics/pkg/conf"
)

// tokenLifetime is the validity of a dashboard token.
const tokenLifetime = 1 * time.Hour

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// validateCredentials checks if the provided username and password match
// any of the configured admin accounts
func validateCredentials(username, password string, config *conf.Config) bool {
	if storedPassword, exists := config.JWT.Admin[username]; exists {
		return subtle.ConstantTimeCompare([]byte(storedPassword), []byte(password)) == 1
	}
	return false
}

// Login creates a login handler using the provided configuration
func Login(config *conf.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		err := json.NewDecoder(r.Body).Decode(&creds)
		if err != nil {
			render.Render(w, r, api.ErrInvalidRequest(err))
			return
		}

		if config.JWT.SecretKey == "" || !validateCredentials(creds.Username, creds.Password, config) {
			log.Warnf("Connection attempt failed for user: %s", creds.Username)
			render.Render(w, r, api.ErrUnauthorized(errors.New("invalid credentials")))
			return
		}

		log.Infof("User logged in: %s", creds.Username)

		// Create JWT token using the configured secret key
		expirationTime := time.Now().Add(tokenLifetime)
		claims := &Claims{
			Username: creds.Username,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(expirationTime),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte(config.JWT.SecretKey))
		if err != nil {
			render.Render(w, r, api.ErrServer(err))
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "token",
			Value:    tokenString,
			Expires:  expirationTime,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})

		render.JSON(w, r, map[string]any{
			"token": tokenString,
			"user": map[string]any{
				"name": creds.Username,
			},
		})
	}
}

// BasicAuthMiddleware protects the read api with the configured access credentials.
// Every request is refused when the username or the password is not configured.
func BasicAuthMiddleware(config *conf.Config) func(http.Handler) http.Handler {
	if config.Access.Username == "" || config.Access.Password == "" {
		log.Warn("Access credentials are not configured, the read api is closed")
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				render.Render(w, r, api.ErrUnauthorized(errors.New("read api authentication is not configured")))
			})
		}
	}
	credentials := map[string]string{config.Access.Username: config.Access.Password}
	return middleware.BasicAuth("restricted", credentials)
}

// AuthMiddleware creates JWT authentication middleware using the provided configuration
func AuthMiddleware(config *conf.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// without a secret, any token signed with an empty key would verify
			if config.JWT.SecretKey == "" {
				render.Render(w, r, api.ErrUnauthorized(errors.New("dashboard authentication is not configured")))
				return
			}

			var tokenStr string

			// Try to get a token from the Authorization header first (Bearer token)
			if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			} else if c, err := r.Cookie("token"); err == nil {
				tokenStr = c.Value
			}
			if tokenStr == "" {
				render.Render(w, r, api.ErrUnauthorized(errors.New("no authentication token provided")))
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
				return []byte(config.JWT.SecretKey), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

			if err != nil {
				log.Debugf("JWT parse error: %v", err)
				var msg string
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					msg = "token has expired"
				case errors.Is(err, jwt.ErrSignatureInvalid):
					msg = "invalid token signature"
				case errors.Is(err, jwt.ErrTokenMalformed):
					msg = "token is malformed"
				default:
					msg = "invalid or malformed token"
				}
				render.Render(w, r, api.ErrUnauthorized(errors.New(msg)))
				return
			}
			if !token.Valid {
				render.Render(w, r, api.ErrUnauthorized(errors.New("token is not valid")))
				return
			}

			// Add username to request headers for use in handlers
			r.Header.Set("X-Username", claims.Username)

			next.ServeHTTP(w, r)
		})
	}
}

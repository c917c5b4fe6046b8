/**
 * @description
 * This file sets up the HTTP router for the kudos-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies
 * standard middleware.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes creates and returns the router for the kudos service.
func Routes(h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Post("/accounts", h.CreateAccountHandler)
	r.Get("/accounts/{id}", h.GetAccountHandler)
	r.Get("/accounts/{id}/recognitions", h.ListRecognitionsHandler)

	r.Post("/recognitions", h.CreateRecognitionHandler)
	r.Post("/recognitions/{id}/endorse", h.EndorseRecognitionHandler)

	r.Post("/redeem", h.RedeemHandler)
	r.Get("/leaderboard", h.LeaderboardHandler)

	return r
}

/**
 * @description
 * This file contains the HTTP handlers for the kudos-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the
 * appropriate methods on the application service, and writing the HTTP
 * response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * Validation failures surface with a specific, stable error message;
 * unexpected store errors surface as a generic failure without leaking
 * internal detail.
 *
 * @dependencies
 * - encoding/json, log/slog, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kudoshq/kudos-service/internal/app"
	"github.com/kudoshq/kudos-service/internal/domain"
	"github.com/kudoshq/kudos-service/internal/store"
)

// Handlers holds the application service that handlers will use.
type Handlers struct {
	service *app.Service
	logger  *slog.Logger
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service, logger *slog.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

type redeemResponse struct {
	Message      string `json:"message"`
	VoucherValue int    `json:"voucher_value"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("response encode failed", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

// CreateAccountHandler handles account registration.
func (h *Handlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		h.writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	account, err := h.service.CreateAccount(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			h.writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		h.logger.Error("account creation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	h.writeJSON(w, http.StatusCreated, account)
}

// GetAccountHandler returns the account projection for the requested id.
func (h *Handlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			h.writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("account lookup failed", "account_id", accountID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch account")
		return
	}

	h.writeJSON(w, http.StatusOK, account)
}

// CreateRecognitionHandler handles credit transfer requests.
//
// Self-recognition maps to 400. Sender-not-found, insufficient credits and
// monthly-cap violations keep their original 500 mapping with a stable
// message, preserving the behavior clients already depend on.
func (h *Handlers) CreateRecognitionHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRecognitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	recognition, err := h.service.CreateRecognition(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSelfRecognition):
			h.writeError(w, http.StatusBadRequest, "Self-recognition is not allowed")
		case errors.Is(err, app.ErrInvalidAmount):
			h.writeError(w, http.StatusBadRequest, "Amount must be a positive integer")
		case errors.Is(err, store.ErrSenderNotFound):
			h.writeError(w, http.StatusInternalServerError, "Sender not found")
		case errors.Is(err, store.ErrInsufficientCredits):
			h.writeError(w, http.StatusInternalServerError, "Insufficient credits")
		case errors.Is(err, store.ErrMonthlyLimitExceeded):
			h.writeError(w, http.StatusInternalServerError, "Monthly sending limit exceeded")
		default:
			h.logger.Error("recognition creation failed", "sender_id", req.SenderID, "error", err)
			h.writeError(w, http.StatusInternalServerError, "Transfer failed")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, recognition)
}

// EndorseRecognitionHandler records an endorsement on a recognition.
func (h *Handlers) EndorseRecognitionHandler(w http.ResponseWriter, r *http.Request) {
	recognitionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid recognition id")
		return
	}

	var req domain.EndorseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	endorsement, err := h.service.EndorseRecognition(r.Context(), req.UserID, recognitionID)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEndorsement) {
			h.writeError(w, http.StatusConflict, "You have already endorsed this recognition")
			return
		}
		h.logger.Error("endorsement failed", "recognition_id", recognitionID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to endorse recognition")
		return
	}

	h.writeJSON(w, http.StatusCreated, endorsement)
}

// RedeemHandler converts received credits into a voucher value.
func (h *Handlers) RedeemHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	voucherValue, err := h.service.RedeemCredits(r.Context(), req.UserID, req.CreditsToRedeem)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidAmount):
			h.writeError(w, http.StatusBadRequest, "credits_to_redeem must be a positive integer")
		case errors.Is(err, store.ErrUserNotFound):
			h.writeError(w, http.StatusInternalServerError, "User not found")
		case errors.Is(err, store.ErrInsufficientRedeemable):
			h.writeError(w, http.StatusInternalServerError, "Insufficient credits to redeem")
		default:
			h.logger.Error("redemption failed", "user_id", req.UserID, "error", err)
			h.writeError(w, http.StatusInternalServerError, "Redemption failed")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, redeemResponse{
		Message:      "Credits redeemed successfully",
		VoucherValue: voucherValue,
	})
}

// LeaderboardHandler returns the top accounts by received balance.
func (h *Handlers) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		h.logger.Error("leaderboard query failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}

	h.writeJSON(w, http.StatusOK, entries)
}

// ListRecognitionsHandler returns one page of an account's received recognitions.
func (h *Handlers) ListRecognitionsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	recognitions, err := h.service.ListReceivedRecognitions(r.Context(), accountID, page, pageSize)
	if err != nil {
		h.logger.Error("recognition listing failed", "account_id", accountID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch recognitions")
		return
	}

	h.writeJSON(w, http.StatusOK, recognitions)
}

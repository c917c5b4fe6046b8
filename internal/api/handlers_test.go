package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kudoshq/kudos-service/internal/app"
	"github.com/kudoshq/kudos-service/internal/domain"
	"github.com/kudoshq/kudos-service/internal/store"
)

type handlerRepoStub struct {
	store.Repository

	account        *domain.Account
	accountErr     error
	recognition    *domain.Recognition
	transferErr    error
	endorsement    *domain.Endorsement
	endorseErr     error
	redeemErr      error
	leaderboard    []domain.LeaderboardEntry
	leaderboardErr error
}

func (s *handlerRepoStub) CreateAccount(ctx context.Context, name, email string) (*domain.Account, error) {
	if s.accountErr != nil {
		return nil, s.accountErr
	}
	return s.account, nil
}

func (s *handlerRepoStub) FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	if s.accountErr != nil {
		return nil, s.accountErr
	}
	return s.account, nil
}

func (s *handlerRepoStub) TransferCredits(ctx context.Context, senderID, recipientID int64, amount int, message *string) (*domain.Recognition, error) {
	if s.transferErr != nil {
		return nil, s.transferErr
	}
	return s.recognition, nil
}

func (s *handlerRepoStub) CreateEndorsement(ctx context.Context, accountID int64, recognitionID uuid.UUID) (*domain.Endorsement, error) {
	if s.endorseErr != nil {
		return nil, s.endorseErr
	}
	return s.endorsement, nil
}

func (s *handlerRepoStub) RedeemCredits(ctx context.Context, accountID int64, credits int) error {
	return s.redeemErr
}

func (s *handlerRepoStub) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if s.leaderboardErr != nil {
		return nil, s.leaderboardErr
	}
	return s.leaderboard, nil
}

func newTestRouter(repo store.Repository) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := app.NewService(repo, nil, nil, logger)
	return Routes(NewHandlers(service, logger))
}

func decodeError(t *testing.T, body io.Reader) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error
}

func TestCreateAccountHandler_Created(t *testing.T) {
	repo := &handlerRepoStub{account: &domain.Account{ID: 1, Name: "Ada", Email: "ada@example.com", GivableBalance: 100}}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"name":"Ada","email":"ada@example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var account domain.Account
	if err := json.NewDecoder(rec.Body).Decode(&account); err != nil {
		t.Fatalf("failed to decode account: %v", err)
	}
	if account.GivableBalance != 100 {
		t.Fatalf("expected default givable balance 100, got %d", account.GivableBalance)
	}
}

func TestCreateAccountHandler_DuplicateEmailConflicts(t *testing.T) {
	repo := &handlerRepoStub{accountErr: store.ErrDuplicateEmail}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"name":"Ada","email":"ada@example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestGetAccountHandler_NotFound(t *testing.T) {
	repo := &handlerRepoStub{accountErr: store.ErrAccountNotFound}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/accounts/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateRecognitionHandler_SelfRecognitionRejected(t *testing.T) {
	repo := &handlerRepoStub{}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/recognitions", strings.NewReader(`{"sender_id":5,"recipient_id":5,"amount":10}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec.Body); msg != "Self-recognition is not allowed" {
		t.Fatalf("unexpected error message: %q", msg)
	}
}

func TestCreateRecognitionHandler_StoreFailuresKeepStableMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"sender not found", store.ErrSenderNotFound, http.StatusInternalServerError, "Sender not found"},
		{"insufficient credits", store.ErrInsufficientCredits, http.StatusInternalServerError, "Insufficient credits"},
		{"monthly limit", store.ErrMonthlyLimitExceeded, http.StatusInternalServerError, "Monthly sending limit exceeded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &handlerRepoStub{transferErr: tc.err}
			router := newTestRouter(repo)

			req := httptest.NewRequest(http.MethodPost, "/recognitions", strings.NewReader(`{"sender_id":1,"recipient_id":2,"amount":10}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			if msg := decodeError(t, rec.Body); msg != tc.wantMessage {
				t.Fatalf("expected message %q, got %q", tc.wantMessage, msg)
			}
		})
	}
}

func TestCreateRecognitionHandler_Created(t *testing.T) {
	recognition := &domain.Recognition{ID: uuid.New(), SenderID: 1, RecipientID: 2, Amount: 10}
	repo := &handlerRepoStub{recognition: recognition}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/recognitions", strings.NewReader(`{"sender_id":1,"recipient_id":2,"amount":10,"message":"great work"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var got domain.Recognition
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode recognition: %v", err)
	}
	if got.ID != recognition.ID {
		t.Fatalf("expected recognition %s, got %s", recognition.ID, got.ID)
	}
}

func TestEndorseHandler_DuplicateConflicts(t *testing.T) {
	repo := &handlerRepoStub{endorseErr: store.ErrDuplicateEndorsement}
	router := newTestRouter(repo)

	target := "/recognitions/" + uuid.NewString() + "/endorse"
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"user_id":3}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if msg := decodeError(t, rec.Body); msg != "You have already endorsed this recognition" {
		t.Fatalf("unexpected error message: %q", msg)
	}
}

func TestEndorseHandler_InvalidRecognitionID(t *testing.T) {
	repo := &handlerRepoStub{}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/recognitions/not-a-uuid/endorse", strings.NewReader(`{"user_id":3}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRedeemHandler_ReturnsVoucherValue(t *testing.T) {
	repo := &handlerRepoStub{}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/redeem", strings.NewReader(`{"user_id":3,"credits_to_redeem":12}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		VoucherValue int `json:"voucher_value"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode redeem response: %v", err)
	}
	if resp.VoucherValue != 12*app.VoucherRate {
		t.Fatalf("expected voucher value %d, got %d", 12*app.VoucherRate, resp.VoucherValue)
	}
}

func TestRedeemHandler_NonPositiveCreditsRejected(t *testing.T) {
	repo := &handlerRepoStub{}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/redeem", strings.NewReader(`{"user_id":3,"credits_to_redeem":0}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLeaderboardHandler_ReturnsEntries(t *testing.T) {
	repo := &handlerRepoStub{leaderboard: []domain.LeaderboardEntry{
		{AccountID: 2, ReceivedBalance: 90},
		{AccountID: 1, ReceivedBalance: 40},
	}}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entries []domain.LeaderboardEntry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("failed to decode leaderboard: %v", err)
	}
	if len(entries) != 2 || entries[0].AccountID != 2 {
		t.Fatalf("unexpected leaderboard entries: %v", entries)
	}
}

func TestLeaderboardHandler_InvalidLimitRejected(t *testing.T) {
	repo := &handlerRepoStub{}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&handlerRepoStub{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

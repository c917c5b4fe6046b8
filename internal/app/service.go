/**
 * @description
 * This file contains the core business logic for the kudos-service. The
 * `Service` struct orchestrates all credit movement operations, coordinating
 * between the database repository, the leaderboard cache, and the message
 * broker.
 *
 * Key features:
 * - Implements the main use cases: recognitions (credit transfers),
 *   endorsements, and voucher redemption.
 * - Rejects self-recognition and non-positive amounts before any store
 *   access; balance and cap checks happen inside the store's transaction
 *   under a row lock.
 * - Publishes events to RabbitMQ for asynchronous processing by other
 *   services; publishing is fire-and-forget and never blocks a commit.
 *
 * @dependencies
 * - context, errors, log/slog: Standard Go libraries.
 * - github.com/google/uuid: Recognition identifiers.
 * - internal/domain, internal/store: Domain models and data access.
 * - pkg/rabbitmq: Event publishing.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kudoshq/kudos-service/internal/domain"
	"github.com/kudoshq/kudos-service/internal/store"
	"github.com/kudoshq/kudos-service/pkg/rabbitmq"
)

const (
	// VoucherRate converts redeemed credits into voucher value.
	VoucherRate = 5
	// DefaultLeaderboardLimit applies when a request does not bound the result size.
	DefaultLeaderboardLimit = 10
	// MaxLeaderboardLimit caps a client-supplied result bound.
	MaxLeaderboardLimit = 100
)

var (
	ErrSelfRecognition = errors.New("self-recognition is not allowed")
	ErrInvalidAmount   = errors.New("amount must be a positive integer")
)

// LeaderboardCache is the snapshot cache in front of the leaderboard query.
// A nil implementation error degrades to a direct database read.
type LeaderboardCache interface {
	Get(ctx context.Context, limit int) ([]domain.LeaderboardEntry, bool, error)
	Set(ctx context.Context, limit int, entries []domain.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}

// Service provides the core business logic for the credit ledger.
type Service struct {
	repo     store.Repository
	producer rabbitmq.Publisher
	cache    LeaderboardCache
	logger   *slog.Logger
}

// NewService creates a new kudos service instance. The cache may be nil, in
// which case every leaderboard read goes to the database.
func NewService(repo store.Repository, producer rabbitmq.Publisher, cache LeaderboardCache, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		producer: producer,
		cache:    cache,
		logger:   logger,
	}
}

// CreateAccount registers a new account with default balances.
func (s *Service) CreateAccount(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error) {
	account, err := s.repo.CreateAccount(ctx, req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account created", "account_id", account.ID)
	return account, nil
}

// GetAccount returns the account projection for the given id.
func (s *Service) GetAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.repo.FindAccountByID(ctx, accountID)
}

// CreateRecognition executes a credit transfer from sender to recipient and
// records the recognition. Self-transfer and non-positive amounts are
// rejected here, before any store access; everything else is validated inside
// the store's atomic unit of work.
func (s *Service) CreateRecognition(ctx context.Context, req domain.CreateRecognitionRequest) (*domain.Recognition, error) {
	if req.SenderID == req.RecipientID {
		return nil, ErrSelfRecognition
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	recognition, err := s.repo.TransferCredits(ctx, req.SenderID, req.RecipientID, req.Amount, req.Message)
	if err != nil {
		return nil, fmt.Errorf("transfer failed: %w", err)
	}

	s.logger.Info("recognition created",
		"recognition_id", recognition.ID,
		"sender_id", recognition.SenderID,
		"recipient_id", recognition.RecipientID,
		"amount", recognition.Amount,
	)

	s.invalidateLeaderboard(ctx)
	s.publishEvent(ctx, "recognition.created", rabbitmq.RecognitionEvent{
		RecognitionID: recognition.ID,
		SenderID:      recognition.SenderID,
		RecipientID:   recognition.RecipientID,
		Amount:        recognition.Amount,
		Timestamp:     time.Now().UTC(),
	})

	return recognition, nil
}

// EndorseRecognition records the (user, recognition) approval pair. The
// store's unique constraint is the only validation, per current behavior.
func (s *Service) EndorseRecognition(ctx context.Context, accountID int64, recognitionID uuid.UUID) (*domain.Endorsement, error) {
	endorsement, err := s.repo.CreateEndorsement(ctx, accountID, recognitionID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("recognition endorsed", "recognition_id", recognitionID, "account_id", accountID)
	return endorsement, nil
}

// RedeemCredits converts received credits into a voucher value. The balance
// decrement happens inside the store's atomic unit; the voucher value is a
// pure function of the validated input and is never stored.
func (s *Service) RedeemCredits(ctx context.Context, accountID int64, credits int) (int, error) {
	if credits <= 0 {
		return 0, ErrInvalidAmount
	}

	if err := s.repo.RedeemCredits(ctx, accountID, credits); err != nil {
		return 0, fmt.Errorf("redemption failed: %w", err)
	}

	voucherValue := credits * VoucherRate
	s.logger.Info("credits redeemed", "account_id", accountID, "credits", credits, "voucher_value", voucherValue)

	s.invalidateLeaderboard(ctx)
	s.publishEvent(ctx, "credits.redeemed", rabbitmq.RedemptionEvent{
		AccountID:    accountID,
		Credits:      credits,
		VoucherValue: voucherValue,
		Timestamp:    time.Now().UTC(),
	})

	return voucherValue, nil
}

// Leaderboard returns the top accounts by received balance. Reads go through
// the snapshot cache when one is configured; a cache outage degrades to a
// direct query.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	if s.cache != nil {
		entries, hit, err := s.cache.Get(ctx, limit)
		if err != nil {
			s.logger.Warn("leaderboard cache read failed", "error", err)
		} else if hit {
			return entries, nil
		}
	}

	entries, err := s.repo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, limit, entries); err != nil {
			s.logger.Warn("leaderboard cache write failed", "error", err)
		}
	}
	return entries, nil
}

// ListReceivedRecognitions returns one page of the recognitions an account
// has received.
func (s *Service) ListReceivedRecognitions(ctx context.Context, accountID int64, page, pageSize int) (*domain.RecognitionPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListReceivedRecognitions(ctx, accountID, page, pageSize)
}

func (s *Service) invalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("leaderboard cache invalidation failed", "error", err)
	}
}

func (s *Service) publishEvent(ctx context.Context, routingKey string, event interface{}) {
	if s.producer == nil {
		return
	}
	if err := s.producer.Publish(ctx, rabbitmq.EventsExchange, routingKey, event); err != nil {
		s.logger.Warn("event publish failed", "routing_key", routingKey, "error", err)
	}
}

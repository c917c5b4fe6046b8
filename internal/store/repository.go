/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the kudos-service needs. The interface keeps the business logic
 * decoupled from the PostgreSQL implementation and makes the service layer
 * testable with in-memory stubs.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: Recognition identifiers.
 * - internal/domain: The service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/kudoshq/kudos-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Account methods
	CreateAccount(ctx context.Context, name, email string) (*domain.Account, error)
	FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)

	// TransferCredits atomically moves credits from sender to recipient and
	// records the recognition. The sender's row is locked for the duration of
	// the transaction; any validation failure rolls the whole unit back.
	TransferCredits(ctx context.Context, senderID, recipientID int64, amount int, message *string) (*domain.Recognition, error)

	// CreateEndorsement records the (account, recognition) approval pair. The
	// insert itself is the uniqueness check; a constraint violation surfaces
	// as ErrDuplicateEndorsement.
	CreateEndorsement(ctx context.Context, accountID int64, recognitionID uuid.UUID) (*domain.Endorsement, error)

	// RedeemCredits atomically decrements the account's received balance under
	// a row lock and returns nothing beyond the error; the voucher value is a
	// pure function of the validated input, computed by the caller.
	RedeemCredits(ctx context.Context, accountID int64, credits int) error

	// ResetAllAccounts replenishes every account's giving allowance and clears
	// the per-cycle sent counter in one bulk statement.
	ResetAllAccounts(ctx context.Context) (int64, error)

	// Read-only projections
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	ListReceivedRecognitions(ctx context.Context, accountID int64, page, pageSize int) (*domain.RecognitionPage, error)
}

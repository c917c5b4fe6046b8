/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the SQL the kudos-service runs against the
 * accounts, recognitions and endorsements tables.
 *
 * The two balance-mutating operations (TransferCredits, RedeemCredits) each
 * run inside a single pgx transaction and take a `SELECT ... FOR UPDATE` lock
 * on the mutated account row, so the check-then-update sequence is race-free:
 * concurrent transfers from the same sender serialize on the row lock, while
 * transfers from different senders never block each other.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver.
 * - github.com/jackc/pgx/v5/pgconn: Constraint-violation inspection.
 * - internal/domain: Domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kudoshq/kudos-service/internal/domain"
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrSenderNotFound         = errors.New("sender not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrInsufficientCredits    = errors.New("insufficient credits")
	ErrMonthlyLimitExceeded   = errors.New("monthly sending limit exceeded")
	ErrInsufficientRedeemable = errors.New("insufficient credits to redeem")
	ErrDuplicateEndorsement   = errors.New("recognition already endorsed by this user")
	ErrDuplicateEmail         = errors.New("email already registered")
)

const (
	// MonthlySendCap is the maximum credits an account may send per cycle.
	MonthlySendCap = 100
	// CarryOverMax caps the unused credits carried into the next cycle.
	CarryOverMax = 50
)

// uniqueViolationCode is the PostgreSQL error code for unique_violation.
const uniqueViolationCode = "23505"

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation. Duplicate endorsements are detected this way rather than with a
// prior read, so the insert itself is the atomic uniqueness check.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CreateAccount registers a new account with the default starting balances.
func (r *PostgresRepository) CreateAccount(ctx context.Context, name, email string) (*domain.Account, error) {
	var account domain.Account
	query := `
		INSERT INTO accounts (name, email)
		VALUES ($1, $2)
		RETURNING id, name, email, givable_balance, sent_this_cycle, received_balance, created_at
	`
	err := r.db.QueryRow(ctx, query, name, email).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.GivableBalance,
		&account.SentThisCycle,
		&account.ReceivedBalance,
		&account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &account, nil
}

// FindAccountByID retrieves an account by its id.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	var account domain.Account
	query := `
		SELECT id, name, email, givable_balance, sent_this_cycle, received_balance, created_at
		FROM accounts
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.GivableBalance,
		&account.SentThisCycle,
		&account.ReceivedBalance,
		&account.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// TransferCredits moves credits from sender to recipient and records the
// recognition, all inside one transaction.
//
// The sender's row is locked with FOR UPDATE before the balance checks, so a
// concurrent transfer from the same sender waits here and re-reads the
// already-debited balance. Recipient existence is deliberately not checked
// before the credit; crediting an unknown id updates zero rows and the
// recognition still commits, matching the service's documented behavior.
func (r *PostgresRepository) TransferCredits(ctx context.Context, senderID, recipientID int64, amount int, message *string) (*domain.Recognition, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var givable, sentThisCycle int
	err = tx.QueryRow(ctx,
		"SELECT givable_balance, sent_this_cycle FROM accounts WHERE id = $1 FOR UPDATE",
		senderID,
	).Scan(&givable, &sentThisCycle)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSenderNotFound
		}
		return nil, err
	}

	if amount > givable {
		return nil, ErrInsufficientCredits
	}
	if sentThisCycle+amount > MonthlySendCap {
		return nil, ErrMonthlyLimitExceeded
	}

	_, err = tx.Exec(ctx,
		"UPDATE accounts SET givable_balance = givable_balance - $1, sent_this_cycle = sent_this_cycle + $1 WHERE id = $2",
		amount, senderID,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		"UPDATE accounts SET received_balance = received_balance + $1 WHERE id = $2",
		amount, recipientID,
	)
	if err != nil {
		return nil, err
	}

	var recognition domain.Recognition
	insert := `
		INSERT INTO recognitions (id, sender_id, recipient_id, amount, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, sender_id, recipient_id, amount, message, created_at
	`
	err = tx.QueryRow(ctx, insert, uuid.New(), senderID, recipientID, amount, message).Scan(
		&recognition.ID,
		&recognition.SenderID,
		&recognition.RecipientID,
		&recognition.Amount,
		&recognition.Message,
		&recognition.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &recognition, nil
}

// CreateEndorsement inserts the (account, recognition) pair. The table's
// unique constraint rejects duplicates atomically.
func (r *PostgresRepository) CreateEndorsement(ctx context.Context, accountID int64, recognitionID uuid.UUID) (*domain.Endorsement, error) {
	var endorsement domain.Endorsement
	query := `
		INSERT INTO endorsements (account_id, recognition_id)
		VALUES ($1, $2)
		RETURNING account_id, recognition_id, created_at
	`
	err := r.db.QueryRow(ctx, query, accountID, recognitionID).Scan(
		&endorsement.AccountID,
		&endorsement.RecognitionID,
		&endorsement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEndorsement
		}
		return nil, err
	}
	return &endorsement, nil
}

// RedeemCredits decrements the account's received balance under a row lock.
func (r *PostgresRepository) RedeemCredits(ctx context.Context, accountID int64, credits int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var received int
	err = tx.QueryRow(ctx,
		"SELECT received_balance FROM accounts WHERE id = $1 FOR UPDATE",
		accountID,
	).Scan(&received)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrUserNotFound
		}
		return err
	}

	if credits > received {
		return ErrInsufficientRedeemable
	}

	_, err = tx.Exec(ctx,
		"UPDATE accounts SET received_balance = received_balance - $1 WHERE id = $2",
		credits, accountID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ResetAllAccounts replenishes the giving allowance for every account in one
// bulk statement: the new allowance is the monthly cap plus up to CarryOverMax
// unused credits carried over from the prior cycle, and the per-cycle sent
// counter goes back to zero. Received balances are untouched.
//
// Running this twice in the same cycle re-applies the carry bonus; scheduler
// exclusivity is a deployment requirement, not something this statement
// defends against.
func (r *PostgresRepository) ResetAllAccounts(ctx context.Context) (int64, error) {
	query := `
		UPDATE accounts
		SET givable_balance = $1 + LEAST(givable_balance, $2),
		    sent_this_cycle = 0
	`
	result, err := r.db.Exec(ctx, query, MonthlySendCap, CarryOverMax)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// Leaderboard returns accounts ordered by received balance descending, ties
// broken by account id ascending, annotated with the count of recognitions
// received and the total endorsements across those recognitions.
func (r *PostgresRepository) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	query := `
		SELECT
			a.id,
			a.name,
			a.received_balance,
			COUNT(r.id) AS recognitions_received_count,
			(
				SELECT COUNT(*)
				FROM endorsements e
				JOIN recognitions ri ON e.recognition_id = ri.id
				WHERE ri.recipient_id = a.id
			) AS total_endorsements_received
		FROM accounts a
		LEFT JOIN recognitions r ON a.id = r.recipient_id
		GROUP BY a.id
		ORDER BY a.received_balance DESC, a.id ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(
			&entry.AccountID,
			&entry.Name,
			&entry.ReceivedBalance,
			&entry.RecognitionsReceivedCount,
			&entry.TotalEndorsementsReceived,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListReceivedRecognitions returns one page of the recognitions an account
// has received, newest first.
func (r *PostgresRepository) ListReceivedRecognitions(ctx context.Context, accountID int64, page, pageSize int) (*domain.RecognitionPage, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM recognitions WHERE recipient_id = $1",
		accountID,
	).Scan(&total)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize
	rows, err := r.db.Query(ctx, `
		SELECT id, sender_id, recipient_id, amount, message, created_at
		FROM recognitions
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`, accountID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recognitions := make([]domain.Recognition, 0, pageSize)
	for rows.Next() {
		var rec domain.Recognition
		if err := rows.Scan(&rec.ID, &rec.SenderID, &rec.RecipientID, &rec.Amount, &rec.Message, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recognitions = append(recognitions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.RecognitionPage{
		Recognitions: recognitions,
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
	}, nil
}

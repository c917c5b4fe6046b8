/**
 * @description
 * Domain models for the recognition and endorsement logs. Both are
 * append-only: a recognition is the immutable record of one credit
 * transfer, and an endorsement is a user's approval mark on a specific
 * recognition, unique per (account, recognition) pair.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Recognition maps directly to the `recognitions` table.
type Recognition struct {
	ID          uuid.UUID `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Amount      int       `json:"amount"`
	Message     *string   `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Endorsement maps directly to the `endorsements` table.
type Endorsement struct {
	AccountID     int64     `json:"account_id"`
	RecognitionID uuid.UUID `json:"recognition_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateRecognitionRequest is the DTO for incoming transfer API requests.
type CreateRecognitionRequest struct {
	SenderID    int64   `json:"sender_id"`
	RecipientID int64   `json:"recipient_id"`
	Amount      int     `json:"amount"`
	Message     *string `json:"message,omitempty"`
}

// EndorseRequest is the DTO for endorsing a recognition.
type EndorseRequest struct {
	UserID int64 `json:"user_id"`
}

// RedeemRequest is the DTO for converting received credits into a voucher.
type RedeemRequest struct {
	UserID          int64 `json:"user_id"`
	CreditsToRedeem int   `json:"credits_to_redeem"`
}

// RecognitionPage is one page of an account's received recognitions.
type RecognitionPage struct {
	Recognitions []Recognition `json:"recognitions"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	Total        int64         `json:"total"`
}

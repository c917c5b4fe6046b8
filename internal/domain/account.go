/**
 * @description
 * This file defines the account domain model and its API-facing DTOs.
 * An account holds the three credit balances the service mutates:
 * credits the user can still give this cycle, credits already sent
 * this cycle, and credits received from others.
 *
 * @notes
 * - Balances are plain integers (whole credits); there is no fractional
 *   credit anywhere in the system.
 * - Balance fields are mutated only through the store's transactional
 *   operations, never written directly by handlers or jobs.
 */

package domain

import "time"

// Account maps directly to the `accounts` table.
type Account struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	GivableBalance  int       `json:"givable_balance"`
	SentThisCycle   int       `json:"sent_this_cycle"`
	ReceivedBalance int       `json:"received_balance"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateAccountRequest is the DTO for account registration.
type CreateAccountRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LeaderboardEntry is one row of the leaderboard projection: an account
// annotated with aggregate counts from the recognition and endorsement logs.
type LeaderboardEntry struct {
	AccountID                 int64  `json:"account_id"`
	Name                      string `json:"name"`
	ReceivedBalance           int    `json:"received_balance"`
	RecognitionsReceivedCount int64  `json:"recognitions_received_count"`
	TotalEndorsementsReceived int64  `json:"total_endorsements_received"`
}

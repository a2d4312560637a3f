package models

import "time"

// Member is a loyalty account.
type Member struct {
	ID           string    `db:"id" json:"id"`
	MemberNumber int       `db:"member_number" json:"member_number"`
	Name         string    `db:"name" json:"name"`
	Phone        string    `db:"phone" json:"phone"`
	Points       int       `db:"points" json:"points"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PointsAction labels a points history entry.
type PointsAction string

const (
	PointsEarned   PointsAction = "earned"
	PointsRedeemed PointsAction = "redeemed"
	PointsAdjusted PointsAction = "adjusted"
)

// PointsEntry is one signed movement on a member's balance.
type PointsEntry struct {
	ID          string       `db:"id" json:"id"`
	MemberID    string       `db:"member_id" json:"member_id"`
	Points      int          `db:"points" json:"points"`
	Action      PointsAction `db:"action" json:"action"`
	Description string       `db:"description" json:"description"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

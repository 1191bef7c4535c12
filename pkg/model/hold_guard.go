package model

import "time"

// HoldGuard is an advisory lock that serialises hold attempts on one room.
// Its _id is derived from the room, so a concurrent insert fails with a duplicate key.
type HoldGuard struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

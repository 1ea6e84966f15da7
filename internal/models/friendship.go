package models

import (
	"strconv"
	"time"
)

// FriendshipStatus is shared by both friendship tables.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s FriendshipStatus) Valid() bool {
	switch s {
	case FriendshipPending, FriendshipAccepted, FriendshipRejected:
		return true
	}
	return false
}

// LegacyFriendship is a row of household_friendships.
type LegacyFriendship struct {
	ID                   string           `json:"id"`
	RequesterHouseholdID string           `json:"requesterHouseholdId"`
	TargetHouseholdID    string           `json:"targetHouseholdId"`
	Status               FriendshipStatus `json:"status"`
	Message              string           `json:"message,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}

// Validate checks identifiers and status.
func (f *LegacyFriendship) Validate() error {
	if f.ID == "" {
		return invalid(RecordHouseholdFriendship, "id is required")
	}
	if f.RequesterHouseholdID == "" || f.TargetHouseholdID == "" {
		return invalid(RecordHouseholdFriendship, "%s: both households are required", f.ID)
	}
	if !f.Status.Valid() {
		return invalid(RecordHouseholdFriendship, "%s: unknown status %q", f.ID, f.Status)
	}
	return nil
}

// Friendship is a row of user_friendships.
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requesterId"`
	TargetID    string           `json:"targetId"`
	Status      FriendshipStatus `json:"status"`
	Message     string           `json:"message,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Validate requires both users, distinct, and a known status.
func (f *Friendship) Validate() error {
	if f.ID == "" {
		return invalid(RecordUserFriendship, "id is required")
	}
	if f.RequesterID == "" || f.TargetID == "" {
		return invalid(RecordUserFriendship, "%s: both users are required", f.ID)
	}
	if f.RequesterID == f.TargetID {
		return invalid(RecordUserFriendship, "%s: requester and target are the same user", f.ID)
	}
	if !f.Status.Valid() {
		return invalid(RecordUserFriendship, "%s: unknown status %q", f.ID, f.Status)
	}
	return nil
}

// Pair returns the unordered pair of users in the friendship.
func (f *Friendship) Pair() PairKey {
	return NewPairKey(f.RequesterID, f.TargetID)
}

// PairKey identifies an unordered pair of users by their raw IDs in sorted order.
type PairKey [2]string

// NewPairKey returns the same key for (a, b) and (b, a).
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{a, b}
}

// String is the form stored in user_friendships.pair_key: the length of the first ID,
// a colon, then both IDs joined by "|". The prefix keeps IDs containing "|" apart.
func (k PairKey) String() string {
	return strconv.Itoa(len(k[0])) + ":" + k[0] + "|" + k[1]
}

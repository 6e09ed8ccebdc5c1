package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BroadcastRecipientsAll targets every current user. Otherwise recipients
// hold branch ids as hex strings.
const BroadcastRecipientsAll = "all"

// Broadcast stores the message and the targeting rule, not a recipient
// snapshot. The recipient list is resolved against current users at
// display and dispatch time, so membership changes after sending are
// reflected live.
type Broadcast struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Message    string             `json:"message" bson:"message" validate:"required,min=1,max=1000"`
	Recipients []string           `json:"recipients" bson:"recipients" validate:"required,min=1"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

func (b *Broadcast) TargetsAll() bool {
	for _, r := range b.Recipients {
		if r == BroadcastRecipientsAll {
			return true
		}
	}
	return false
}

// TargetsBranch reports whether a user in the given branch is addressed.
func (b *Broadcast) TargetsBranch(branchID *primitive.ObjectID) bool {
	if b.TargetsAll() {
		return true
	}
	if branchID == nil {
		return false
	}
	for _, r := range b.Recipients {
		if r == branchID.Hex() {
			return true
		}
	}
	return false
}

package repository

import (
	"time"
	"venuebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusChange is a guarded lifecycle transition. It only applies while
// the reservation is in From and, when Code is set, still holds that code.
type StatusChange struct {
	From       string
	To         string
	At         time.Time
	ApprovedBy string
	Code       string
}

func (c StatusChange) filter(id primitive.ObjectID) bson.M {
	filter := bson.M{"_id": id, "status": c.From}
	if c.Code != "" {
		filter["code"] = c.Code
	}
	return filter
}

func (c StatusChange) update() bson.M {
	at := c.At.UTC().Truncate(time.Millisecond)
	set := bson.M{
		"status":     c.To,
		"updated_at": at,
	}
	switch c.To {
	case model.StatusConfirmed:
		set["confirmed_at"] = at
		if c.ApprovedBy != "" {
			set["approved_at"] = at
			set["approved_by"] = c.ApprovedBy
		}
	case model.StatusRejected:
		set["rejected_at"] = at
	case model.StatusCancelled:
		set["cancelled_at"] = at
	}

	update := bson.M{"$set": set}
	if c.To != model.StatusProvisional {
		update["$unset"] = bson.M{"code": "", "code_expires_at": ""}
	}
	return update
}

// Apply mirrors the stored update on an in-memory copy.
func (c StatusChange) Apply(r *model.Reservation) {
	at := c.At.UTC().Truncate(time.Millisecond)
	r.Status = c.To
	r.UpdatedAt = at
	switch c.To {
	case model.StatusConfirmed:
		r.ConfirmedAt = &at
		if c.ApprovedBy != "" {
			r.ApprovedAt = &at
			r.ApprovedBy = c.ApprovedBy
		}
	case model.StatusRejected:
		r.RejectedAt = &at
	case model.StatusCancelled:
		r.CancelledAt = &at
	}
	if c.To != model.StatusProvisional {
		r.Code = ""
		r.CodeExpiresAt = nil
	}
}

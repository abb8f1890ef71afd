package validators

import "go.mongodb.org/mongo-driver/bson"

const (
	datePattern  = `^\d{4}-\d{2}-\d{2}$`
	clockPattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`
)

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"venue_id", "requester_id", "date", "start_time", "end_time",
			"status", "title", "purpose", "created_at", "updated_at",
		},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"venue_id":     bson.M{"bsonType": "string"},
			"venue_name":   bson.M{"bsonType": "string"},
			"requester_id": bson.M{"bsonType": "string"},
			"date":         bson.M{"bsonType": "string", "pattern": datePattern},
			"start_time":   bson.M{"bsonType": "string", "pattern": clockPattern},
			"end_time":     bson.M{"bsonType": "string", "pattern": clockPattern},
			"status": bson.M{
				"enum": []string{"provisional", "confirmed", "rejected", "cancelled"},
			},
			"title":              bson.M{"bsonType": "string", "maxLength": 200},
			"purpose":            bson.M{"bsonType": "string", "maxLength": 200},
			"expected_attendees": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
			"code":               bson.M{"bsonType": "string", "pattern": `^\d{6}$`},
			"code_expires_at":    bson.M{"bsonType": "date"},
			"created_at":         bson.M{"bsonType": "date"},
			"updated_at":         bson.M{"bsonType": "date"},
			"approved_at":        bson.M{"bsonType": "date"},
			"confirmed_at":       bson.M{"bsonType": "date"},
			"rejected_at":        bson.M{"bsonType": "date"},
			"cancelled_at":       bson.M{"bsonType": "date"},
		},
	},
}

var ReservationLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"owner":      bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
		},
	},
}

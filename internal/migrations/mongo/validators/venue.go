package validators

import "go.mongodb.org/mongo-driver/bson"

var VenueValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "name_key", "capacity", "active", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"name":        bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"name_key":    bson.M{"bsonType": "string"},
			"description": bson.M{"bsonType": "string", "maxLength": 1000},
			"location":    bson.M{"bsonType": "string", "maxLength": 200},
			"capacity":    bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 10000},
			"amenities": bson.M{
				"bsonType": "array",
				"maxItems": 30,
				"items":    bson.M{"bsonType": "string"},
			},
			"active":     bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}

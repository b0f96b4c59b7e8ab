package validators

import "go.mongodb.org/mongo-driver/bson"

var TimeBlockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"lobby_code",
			"owner_id",
			"start",
			"end",
			"block_type",
			"all_day",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"lobby_code": bson.M{
				"bsonType": "string",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"start": bson.M{
				"bsonType": "date",
			},

			"end": bson.M{
				"bsonType": "date",
			},

			"block_type": bson.M{
				"enum": []string{"available", "busy"},
			},

			"all_day": bson.M{
				"bsonType": "bool",
			},

			"title": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"note": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},
		},
	},
	// $jsonSchema cannot compare two fields.
	"$expr": bson.M{"$lt": bson.A{"$start", "$end"}},
}

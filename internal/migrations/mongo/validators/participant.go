package validators

import "go.mongodb.org/mongo-driver/bson"

var ParticipantValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"participant_id",
			"lobby_code",
			"name",
			"color",
			"user_code",
			"is_active",
			"joined_at",
			"last_seen_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"participant_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"lobby_code": bson.M{
				"bsonType": "string",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},

			"color": bson.M{
				"bsonType": "string",
				"pattern":  "^#([0-9a-f]{3}|[0-9a-f]{6})$",
			},

			"user_code": bson.M{
				"bsonType": "string",
				"pattern":  "^[A-HJ-NP-Z2-9]+$",
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"joined_at": bson.M{
				"bsonType": "date",
			},

			"last_seen_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

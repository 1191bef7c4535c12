package validators

import "go.mongodb.org/mongo-driver/bson"

var intType = []string{"int", "long"}

var dateString = bson.M{
	"bsonType": "string",
	"pattern":  `^\d{4}-\d{2}-\d{2}$`,
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"request_id",
			"user_id",
			"room_id",
			"start_date",
			"end_date",
			"status",
			"correlation_id",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"request_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},
			"user_id": bson.M{
				"bsonType": intType,
				"minimum":  1,
			},
			"room_id": bson.M{
				"bsonType": intType,
				"minimum":  1,
			},
			"start_date": dateString,
			"end_date":   dateString,
			"status": bson.M{
				"enum": []string{"PENDING", "CONFIRMED", "CANCELLED"},
			},
			"correlation_id": bson.M{
				"bsonType": "string",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

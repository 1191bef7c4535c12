package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "number", "times_booked"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": intType,
				"minimum":  1,
			},
			"number": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"capacity": bson.M{
				"bsonType": intType,
				"minimum":  0,
			},
			"times_booked": bson.M{
				"bsonType": intType,
				"minimum":  0,
			},
			"available": bson.M{
				"bsonType": "bool",
			},
		},
	},
}

var ReservationLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"request_id", "room_id", "start_date", "end_date", "status", "expires_at"},
		"properties": bson.M{
			"request_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},
			"room_id": bson.M{
				"bsonType": intType,
				"minimum":  1,
			},
			"start_date": dateString,
			"end_date":   dateString,
			"expires_at": dateString,
			"status": bson.M{
				"enum": []string{"HELD", "CONFIRMED", "RELEASED"},
			},
		},
	},
}

var HoldGuardValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"owner": bson.M{
				"bsonType": "string",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

package validators

import "go.mongodb.org/mongo-driver/bson"

var VehicleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"make",
			"model",
			"category",
			"price_per_day",
			"active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"make": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 60,
			},

			"model": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 60,
			},

			"category": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 40,
			},

			"price_per_day": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"image_url": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"color": bson.M{
				"bsonType":  "string",
				"maxLength": 30,
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"available_from": bson.M{
				"bsonType": "date",
			},

			"available_to": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

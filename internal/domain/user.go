package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// User represents a bot user stored as a document. Users are created lazily
// on first interaction.
type User struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ChatID        int64              `json:"chat_id" bson:"chat_id"`
	FirstName     string             `json:"first_name" bson:"first_name,omitempty"`
	LastName      string             `json:"last_name" bson:"last_name,omitempty"`
	Username      string             `json:"username" bson:"username,omitempty"`
	LastCommandAt primitive.DateTime `json:"last_command_at" bson:"last_command_at"`
	CreatedAt     primitive.DateTime `json:"created_at" bson:"created_at"`
}

package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is a dashboard operator. Shoppers are unauthenticated; only admins
// have accounts.
type Admin struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username string             `bson:"username" json:"username"`
	Password string             `bson:"password,omitempty" json:"-"` // bcrypt hash
}

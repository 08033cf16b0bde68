package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh store identifier (ObjectID hex encoding).
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a structurally valid identifier. It says
// nothing about whether a record with that id exists.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

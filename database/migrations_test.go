package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsDuplicateKeyError(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	assert.True(t, IsDuplicateKeyError(dup))

	assert.False(t, IsDuplicateKeyError(errors.New("connection reset")))
	assert.False(t, IsDuplicateKeyError(nil))
}

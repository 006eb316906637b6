package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ayush/devcamper/backend/internal/apperr"
)

// PostgreSQL error codes.
const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02"
)

// objectID parses a hex id; malformed ids are reported as missing resources.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("Resource not found with id of %s", id)
	}
	return oid, nil
}

// classify maps driver errors onto the taxonomy. Errors it does not
// recognise are wrapped with op for the logs.
func classify(err error, op, resource, id string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("No %s with the id of %s", resource, id)
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Validation("Duplicate field value entered")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Validation("Duplicate field value entered")
		case pgInvalidText:
			return apperr.NotFound("Resource not found with id of %s", id)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

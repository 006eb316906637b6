package store

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ayush/devcamper/backend/internal/apperr"
)

func TestObjectID(t *testing.T) {
	if _, err := objectID("5d713995b721c3bb38c1f5d0"); err != nil {
		t.Fatalf("objectID(valid) error = %v", err)
	}
	_, err := objectID("not-an-id")
	e, ok := apperr.As(err)
	if !ok || e.Status != http.StatusNotFound || e.Message != "Resource not found with id of not-an-id" {
		t.Errorf("objectID(malformed) error = %v", err)
	}
}

func TestClassify(t *testing.T) {
	dupMongo := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"mongo no documents", mongo.ErrNoDocuments, http.StatusNotFound, "No bootcamp with the id of b1"},
		{"pgx no rows", pgx.ErrNoRows, http.StatusNotFound, "No bootcamp with the id of b1"},
		{"mongo duplicate", dupMongo, http.StatusBadRequest, "Duplicate field value entered"},
		{"pg unique", &pgconn.PgError{Code: "23505"}, http.StatusBadRequest, "Duplicate field value entered"},
		{"pg bad uuid", &pgconn.PgError{Code: "22P02"}, http.StatusNotFound, "Resource not found with id of b1"},
		{"already classified", apperr.Forbidden("no"), http.StatusForbidden, "no"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err, "op", "bootcamp", "b1")
			e, ok := apperr.As(err)
			if !ok {
				t.Fatalf("classify() = %v, want *apperr.Error", err)
			}
			if e.Status != tt.wantStatus || e.Message != tt.wantMsg {
				t.Errorf("classify() = %d %q, want %d %q", e.Status, e.Message, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}

func TestClassifyWrapsUnknown(t *testing.T) {
	cause := errors.New("connection reset")
	err := classify(cause, "insert bootcamp", "bootcamp", "b1")
	if _, ok := apperr.As(err); ok {
		t.Fatalf("classify() = %v, want unclassified", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("classify() lost the cause: %v", err)
	}
	if classify(nil, "op", "bootcamp", "b1") != nil {
		t.Error("classify(nil) != nil")
	}
}

func TestAdjustCostPipeline(t *testing.T) {
	p := adjustCost(-1, -2000)
	if len(p) != 2 {
		t.Fatalf("stages = %d, want 2", len(p))
	}
	first := p[0][0].Value.(bson.D)
	want := bson.D{
		{Key: "courseCount", Value: bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$courseCount", 0}}}, -1,
		}}}},
		{Key: "tuitionSum", Value: bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$tuitionSum", 0}}}, -2000.0,
		}}}},
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("first stage mismatch (-want +got):\n%s", diff)
	}

	// averageCost = ceil(tuitionSum / courseCount / 10) * 10, or 0 without courses.
	second := p[1][0].Value.(bson.D)
	wantAverage := bson.D{
		{Key: "averageCost", Value: bson.D{{Key: "$cond", Value: bson.D{
			{Key: "if", Value: bson.D{{Key: "$gt", Value: bson.A{"$courseCount", 0}}}},
			{Key: "then", Value: bson.D{{Key: "$multiply", Value: bson.A{
				bson.D{{Key: "$ceil", Value: bson.D{{Key: "$divide", Value: bson.A{
					"$tuitionSum",
					bson.D{{Key: "$multiply", Value: bson.A{"$courseCount", 10}}},
				}}}}},
				10,
			}}}},
			{Key: "else", Value: 0},
		}}}},
	}
	if diff := cmp.Diff(wantAverage, second); diff != "" {
		t.Errorf("second stage mismatch (-want +got):\n%s", diff)
	}
	for i, stage := range p {
		if stage[0].Key != "$set" {
			t.Errorf("stage %d is %s, want $set", i, stage[0].Key)
		}
	}
}

func TestDenylist(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := NewDenylist(rdb)
	ctx := context.Background()

	if revoked, err := d.Revoked(ctx, "jti-1"); err != nil || revoked {
		t.Fatalf("Revoked() = %v, %v before revoke", revoked, err)
	}
	if err := d.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked, err := d.Revoked(ctx, "jti-1"); err != nil || !revoked {
		t.Fatalf("Revoked() = %v, %v after revoke", revoked, err)
	}

	mr.FastForward(2 * time.Hour)
	if revoked, _ := d.Revoked(ctx, "jti-1"); revoked {
		t.Error("entry outlived the token")
	}

	if err := d.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke(expired) error = %v", err)
	}
	if mr.Exists(denyKey("jti-2")) {
		t.Error("expired token stored")
	}
}

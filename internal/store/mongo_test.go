package store

import (
	"context"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/models"
)

// testMongo connects to the replica set named by MONGO_TEST_URI and returns
// a store over a throwaway database.
func testMongo(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := client.Database("devcamper_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	s := NewMongoStore(client, db)
	if err := s.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}
	return s
}

func seedBootcamp(t *testing.T, s *MongoStore, name, publisher string) *models.Bootcamp {
	t.Helper()
	b := &models.Bootcamp{Name: name, Description: "test", User: "pub-1", Publisher: publisher}
	if err := s.InsertBootcamp(context.Background(), b); err != nil {
		t.Fatalf("InsertBootcamp() error = %v", err)
	}
	return b
}

// rawBootcamp reads the stored aggregate fields, which are hidden from JSON.
func rawBootcamp(t *testing.T, s *MongoStore, id primitive.ObjectID) models.Bootcamp {
	t.Helper()
	var b models.Bootcamp
	if err := s.bootcamps.FindOne(context.Background(), bson.D{{Key: "_id", Value: id}}).Decode(&b); err != nil {
		t.Fatalf("find bootcamp: %v", err)
	}
	return b
}

func TestMongoAverageCostLifecycle(t *testing.T) {
	s := testMongo(t)
	ctx := context.Background()
	b := seedBootcamp(t, s, "Devworks", "")

	first := &models.Course{Title: "Front End", Tuition: 1000, Bootcamp: b.ID, User: "pub-1"}
	if err := s.CreateCourse(ctx, first); err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	if got := rawBootcamp(t, s, b.ID).AverageCost; got != 1000 {
		t.Fatalf("averageCost after one course = %v, want 1000", got)
	}

	second := &models.Course{Title: "Back End", Tuition: 2000, Bootcamp: b.ID, User: "pub-1"}
	if err := s.CreateCourse(ctx, second); err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	if got := rawBootcamp(t, s, b.ID).AverageCost; got != 1500 {
		t.Fatalf("averageCost after two courses = %v, want 1500", got)
	}

	second.Tuition = 2005
	if err := s.UpdateCourse(ctx, second); err != nil {
		t.Fatalf("UpdateCourse() error = %v", err)
	}
	if got := rawBootcamp(t, s, b.ID).AverageCost; got != 1510 {
		t.Fatalf("averageCost after update = %v, want 1510", got)
	}

	if err := s.DeleteCourse(ctx, second); err != nil {
		t.Fatalf("DeleteCourse() error = %v", err)
	}
	if got := rawBootcamp(t, s, b.ID).AverageCost; got != 1000 {
		t.Fatalf("averageCost after delete = %v, want 1000", got)
	}

	if err := s.DeleteCourse(ctx, first); err != nil {
		t.Fatalf("DeleteCourse() error = %v", err)
	}
	if got := rawBootcamp(t, s, b.ID); got.AverageCost != 0 || got.CourseCount != 0 || got.TuitionSum != 0 {
		t.Errorf("empty bootcamp aggregate = %v/%v/%v, want zeros", got.AverageCost, got.CourseCount, got.TuitionSum)
	}
}

func TestMongoConcurrentCourseUpdates(t *testing.T) {
	s := testMongo(t)
	ctx := context.Background()
	b := seedBootcamp(t, s, "Devworks", "")

	c := &models.Course{Title: "Front End", Tuition: 1000, Bootcamp: b.ID, User: "pub-1"}
	if err := s.CreateCourse(ctx, c); err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, tuition := range []float64{2000, 3000} {
		edit := *c
		edit.Tuition = tuition
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.UpdateCourse(ctx, &edit)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("UpdateCourse() error = %v", err)
		}
	}

	stored, err := s.GetCourse(ctx, c.ID.Hex())
	if err != nil {
		t.Fatalf("GetCourse() error = %v", err)
	}
	got := rawBootcamp(t, s, b.ID)
	if got.TuitionSum != stored.Tuition {
		t.Errorf("tuitionSum = %v, stored tuition = %v", got.TuitionSum, stored.Tuition)
	}
	if want := math.Ceil(stored.Tuition/10) * 10; got.AverageCost != want {
		t.Errorf("averageCost = %v, want %v", got.AverageCost, want)
	}
}

func TestMongoDeleteBootcampCascade(t *testing.T) {
	s := testMongo(t)
	ctx := context.Background()
	b := seedBootcamp(t, s, "Devworks", "")
	other := seedBootcamp(t, s, "Codemasters", "")

	for _, bootcamp := range []primitive.ObjectID{b.ID, b.ID, other.ID} {
		if err := s.CreateCourse(ctx, &models.Course{Title: "Course", Tuition: 500, Bootcamp: bootcamp, User: "pub-1"}); err != nil {
			t.Fatalf("CreateCourse() error = %v", err)
		}
	}
	for _, user := range []string{"user-1", "user-2"} {
		if err := s.InsertReview(ctx, &models.Review{Title: "Good", Text: "Liked it", Rating: 8, Bootcamp: b.ID, User: user}); err != nil {
			t.Fatalf("InsertReview() error = %v", err)
		}
	}

	if err := s.DeleteBootcampCascade(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBootcampCascade() error = %v", err)
	}

	byBootcamp := bson.D{{Key: "bootcamp", Value: b.ID}}
	if n, _ := s.courses.CountDocuments(ctx, byBootcamp); n != 0 {
		t.Errorf("courses left = %d", n)
	}
	if n, _ := s.reviews.CountDocuments(ctx, byBootcamp); n != 0 {
		t.Errorf("reviews left = %d", n)
	}
	if _, err := s.GetBootcamp(ctx, b.ID.Hex()); apperr.StatusOf(err) != 404 {
		t.Errorf("GetBootcamp() after delete error = %v", err)
	}
	if n, _ := s.courses.CountDocuments(ctx, bson.D{{Key: "bootcamp", Value: other.ID}}); n != 1 {
		t.Errorf("other bootcamp courses = %d, want 1", n)
	}

	if err := s.DeleteBootcampCascade(ctx, b.ID); apperr.StatusOf(err) != 404 {
		t.Errorf("second DeleteBootcampCascade() error = %v", err)
	}
}

func TestMongoPublisherQuota(t *testing.T) {
	s := testMongo(t)
	seedBootcamp(t, s, "Devworks", "pub-1")

	err := s.InsertBootcamp(context.Background(), &models.Bootcamp{Name: "Devworks Two", User: "pub-1", Publisher: "pub-1"})
	e, ok := apperr.As(err)
	if !ok || e.Message != "The user with ID pub-1 has already published a bootcamp" {
		t.Fatalf("second publisher bootcamp error = %v", err)
	}

	// Bootcamps without a quota holder never collide on the index.
	seedBootcamp(t, s, "Admin One", "")
	seedBootcamp(t, s, "Admin Two", "")

	err = s.InsertBootcamp(context.Background(), &models.Bootcamp{Name: "Devworks", User: "pub-2", Publisher: "pub-2"})
	if e, ok := apperr.As(err); !ok || e.Message != "Duplicate field value entered" {
		t.Errorf("duplicate name error = %v", err)
	}
}

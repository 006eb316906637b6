package models

import (
	"encoding/json"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devcamper/backend/internal/apperr"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestSlugify(t *testing.T) {
	if got := Slugify("Devworks Bootcamp"); got != "devworks-bootcamp" {
		t.Errorf("Slugify() = %q, want devworks-bootcamp", got)
	}
}

func TestBootcampInputApplyKeepsSlugInStep(t *testing.T) {
	b := &Bootcamp{Name: "Old", Slug: "old"}
	BootcampInput{Name: strPtr("  ModernTech Bootcamp ")}.Apply(b)

	if b.Name != "ModernTech Bootcamp" {
		t.Errorf("Name = %q", b.Name)
	}
	if b.Slug != "moderntech-bootcamp" {
		t.Errorf("Slug = %q, want moderntech-bootcamp", b.Slug)
	}
}

func TestBootcampSchemaRequiresAddressOnCreate(t *testing.T) {
	in := BootcampInput{
		Name:        strPtr("Devworks"),
		Description: strPtr("Full stack"),
		Careers:     []string{"Web Development"},
	}
	err := BootcampSchema.Validate(in.Values(), false)
	e, ok := apperr.As(err)
	if !ok || e.Message != "Please add an address" {
		t.Fatalf("Validate() error = %v, want address required", err)
	}
}

func TestBootcampSchemaRejectsUnknownCareer(t *testing.T) {
	in := BootcampInput{Careers: []string{"Cooking"}}
	err := BootcampSchema.Validate(in.Values(), true)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Validate() error = %v, want validation error", err)
	}
}

func TestCourseSchema(t *testing.T) {
	valid := CourseInput{
		Title:        strPtr("Front End Web Development"),
		Description:  strPtr("HTML, CSS and JavaScript"),
		Weeks:        intPtr(8),
		Tuition:      floatPtr(8000),
		MinimumSkill: strPtr("beginner"),
	}
	if err := CourseSchema.Validate(valid.Values(), false); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	bad := valid
	bad.MinimumSkill = strPtr("guru")
	bad.Tuition = floatPtr(-5)
	err := CourseSchema.Validate(bad.Values(), false)
	e, ok := apperr.As(err)
	if !ok {
		t.Fatalf("Validate() error = %v, want *apperr.Error", err)
	}
	if !strings.Contains(e.Message, "Tuition can not be negative") || !strings.Contains(e.Message, "guru") {
		t.Errorf("message = %q, want both failures", e.Message)
	}
}

func TestReviewSchemaRatingBounds(t *testing.T) {
	in := ReviewInput{Title: strPtr("Great"), Text: strPtr("Learned a lot"), Rating: floatPtr(11)}
	err := ReviewSchema.Validate(in.Values(), false)
	e, ok := apperr.As(err)
	if !ok || e.Message != "Please add a rating between 1 and 10" {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestUserSchemaPasswordLength(t *testing.T) {
	in := UserInput{Name: strPtr("Jane"), Email: strPtr("jane@example.com"), Password: strPtr("123")}
	err := UserSchema.Validate(in.Values(), false)
	e, ok := apperr.As(err)
	if !ok || e.Message != "Password must be at least 6 characters" {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	token := "abc"
	u := User{ID: "1", Name: "Jane", Password: "$2a$10$hash", ResetPasswordToken: &token}
	out, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(out), "hash") || strings.Contains(string(out), "abc") {
		t.Errorf("serialized user leaks secrets: %s", out)
	}
}

func TestCourseMarshalPopulatedBootcamp(t *testing.T) {
	bootcampID := primitive.NewObjectID()
	c := Course{Title: "UI", Bootcamp: bootcampID}

	out, _ := json.Marshal(c)
	if !strings.Contains(string(out), `"bootcamp":"`+bootcampID.Hex()+`"`) {
		t.Errorf("unpopulated course = %s, want bootcamp id", out)
	}

	c.BootcampInfo = &BootcampSummary{ID: bootcampID, Name: "Devworks", Description: "Full stack"}
	out, _ = json.Marshal(c)
	var decoded struct {
		Title    string `json:"title"`
		Bootcamp struct {
			Name string `json:"name"`
		} `json:"bootcamp"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v (%s)", err, out)
	}
	if decoded.Bootcamp.Name != "Devworks" || decoded.Title != "UI" {
		t.Errorf("populated course = %s", out)
	}
}

package schema

import (
	"regexp"
	"testing"

	"github.com/ayush/devcamper/backend/internal/apperr"
)

var testSchema = Schema{
	Name: "widget",
	Fields: []Field{
		{Name: "name", Kind: String, Required: "Please add a name", MaxLen: 5, MaxLenMsg: "Name too long"},
		{Name: "email", Kind: String, Pattern: regexp.MustCompile(`^\S+@\S+\.\S+$`), PatternMsg: "Please add a valid email"},
		{Name: "level", Kind: String, Enum: []string{"low", "high"}},
		{Name: "tags", Kind: Strings, Required: "Please add a tag", Enum: []string{"a", "b"}, EnumMsg: "Invalid tag"},
		{Name: "score", Kind: Number, Min: Float(1), Max: Float(10), RangeMsg: "Score must be between 1 and 10"},
		{Name: "secret", Kind: String, Hidden: true},
		{Name: "createdAt", Column: "created_at", Kind: Time},
	},
}

func messageOf(t *testing.T, err error) string {
	t.Helper()
	e, ok := apperr.As(err)
	if !ok {
		t.Fatalf("error %v is not an *apperr.Error", err)
	}
	if e.Kind != apperr.KindValidation {
		t.Fatalf("Kind = %q, want validation", e.Kind)
	}
	return e.Message
}

func TestValidateValid(t *testing.T) {
	err := testSchema.Validate(map[string]any{
		"name":  "box",
		"email": "a@b.io",
		"level": "low",
		"tags":  []string{"a"},
		"score": 4.0,
	}, false)
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestValidateMissingRequiredJoinsMessages(t *testing.T) {
	err := testSchema.Validate(map[string]any{}, false)

	got := messageOf(t, err)
	want := "Please add a name, Please add a tag"
	if got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestValidatePartialSkipsAbsentRequired(t *testing.T) {
	if err := testSchema.Validate(map[string]any{"score": 3}, true); err != nil {
		t.Fatalf("Validate(partial) unexpected error: %v", err)
	}
}

func TestValidatePartialStillRejectsBlankRequired(t *testing.T) {
	err := testSchema.Validate(map[string]any{"name": "   "}, true)
	if got := messageOf(t, err); got != "Please add a name" {
		t.Errorf("message = %q", got)
	}
}

func TestValidateConstraints(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		want   string
	}{
		{"max length", map[string]any{"name": "toolong", "tags": []string{"a"}}, "Name too long"},
		{"pattern", map[string]any{"name": "x", "tags": []string{"a"}, "email": "nope"}, "Please add a valid email"},
		{"enum default message", map[string]any{"name": "x", "tags": []string{"a"}, "level": "mid"}, "`mid` is not a valid value for level"},
		{"enum list", map[string]any{"name": "x", "tags": []string{"a", "z"}}, "Invalid tag"},
		{"range float", map[string]any{"name": "x", "tags": []string{"a"}, "score": 11.0}, "Score must be between 1 and 10"},
		{"range int", map[string]any{"name": "x", "tags": []string{"a"}, "score": 0}, "Score must be between 1 and 10"},
		{"empty list", map[string]any{"name": "x", "tags": []string{}}, "Please add a tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testSchema.Validate(tt.values, false)
			if got := messageOf(t, err); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLookupHidesHiddenFields(t *testing.T) {
	if _, ok := testSchema.Lookup("secret"); ok {
		t.Error("Lookup(secret) should not expose hidden field")
	}
	f, ok := testSchema.Lookup("createdAt")
	if !ok {
		t.Fatal("Lookup(createdAt) not found")
	}
	if f.StorageName() != "created_at" {
		t.Errorf("StorageName() = %q, want created_at", f.StorageName())
	}
	name, _ := testSchema.Lookup("name")
	if name.StorageName() != "name" {
		t.Errorf("StorageName() = %q, want name", name.StorageName())
	}
}

package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devcamper/backend/internal/schema"
)

// Review is a user's review of a bootcamp. A user reviews a bootcamp at most once.
type Review struct {
	ID        primitive.ObjectID `json:"id"        bson:"_id,omitempty"`
	Title     string             `json:"title"     bson:"title"`
	Text      string             `json:"text"      bson:"text"`
	Rating    float64            `json:"rating"    bson:"rating"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	Bootcamp  primitive.ObjectID `json:"bootcamp"  bson:"bootcamp"`
	User      string             `json:"user"      bson:"user"`

	// Filled by eager loading only.
	BootcampInfo *BootcampSummary `json:"-" bson:"bootcampInfo,omitempty"`
}

// MarshalJSON renders the bootcamp reference as a summary when it was loaded.
func (r Review) MarshalJSON() ([]byte, error) {
	type plain Review
	if r.BootcampInfo == nil {
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		plain
		Bootcamp *BootcampSummary `json:"bootcamp"`
	}{plain(r), r.BootcampInfo})
}

// ReviewSchema constrains review input and exposes fields to the query façade.
var ReviewSchema = schema.Schema{
	Name: "review",
	Fields: []schema.Field{
		{Name: "_id", Kind: schema.ID},
		{
			Name: "title", Kind: schema.String,
			Required: "Please add a title for the review",
			MaxLen:   100, MaxLenMsg: "Title can not be more than 100 characters",
		},
		{Name: "text", Kind: schema.String, Required: "Please add some text"},
		{
			Name: "rating", Kind: schema.Number,
			Required: "Please add a rating between 1 and 10",
			Min:      schema.Float(1), Max: schema.Float(10),
			RangeMsg: "Please add a rating between 1 and 10",
		},
		{Name: "createdAt", Kind: schema.Time},
		{Name: "bootcamp", Kind: schema.ID},
		{Name: "user", Kind: schema.String},
	},
}

// ReviewInput is the create/update body for reviews. Nil fields are absent.
type ReviewInput struct {
	Title  *string  `json:"title"`
	Text   *string  `json:"text"`
	Rating *float64 `json:"rating"`
}

// Values returns the supplied fields keyed by schema name.
func (in ReviewInput) Values() map[string]any {
	v := map[string]any{}
	putString(v, "title", in.Title)
	putString(v, "text", in.Text)
	putFloat(v, "rating", in.Rating)
	return v
}

// Apply copies the supplied fields onto r.
func (in ReviewInput) Apply(r *Review) {
	if in.Title != nil {
		r.Title = strings.TrimSpace(*in.Title)
	}
	if in.Text != nil {
		r.Text = *in.Text
	}
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
}

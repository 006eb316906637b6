package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devcamper/backend/internal/schema"
)

// Skill levels a course may require.
var SkillLevels = []string{"beginner", "intermediate", "advanced"}

// Course is a course offered by a bootcamp.
type Course struct {
	ID                    primitive.ObjectID `json:"id"                    bson:"_id,omitempty"`
	Title                 string             `json:"title"                 bson:"title"`
	Description           string             `json:"description"           bson:"description"`
	Weeks                 int                `json:"weeks"                 bson:"weeks"`
	Tuition               float64            `json:"tuition"               bson:"tuition"`
	MinimumSkill          string             `json:"minimumSkill"          bson:"minimumSkill"`
	ScholarshipsAvailable bool               `json:"scholarshipsAvailable" bson:"scholarshipsAvailable"`
	CreatedAt             time.Time          `json:"createdAt"             bson:"createdAt"`
	Bootcamp              primitive.ObjectID `json:"bootcamp"              bson:"bootcamp"`
	User                  string             `json:"user"                  bson:"user"`

	// Filled by eager loading only.
	BootcampInfo *BootcampSummary `json:"-" bson:"bootcampInfo,omitempty"`
}

// MarshalJSON renders the bootcamp reference as a summary when it was loaded.
func (c Course) MarshalJSON() ([]byte, error) {
	type plain Course
	if c.BootcampInfo == nil {
		return json.Marshal(plain(c))
	}
	return json.Marshal(struct {
		plain
		Bootcamp *BootcampSummary `json:"bootcamp"`
	}{plain(c), c.BootcampInfo})
}

// CourseSchema constrains course input and exposes fields to the query façade.
var CourseSchema = schema.Schema{
	Name: "course",
	Fields: []schema.Field{
		{Name: "_id", Kind: schema.ID},
		{Name: "title", Kind: schema.String, Required: "Please add a course title"},
		{Name: "description", Kind: schema.String, Required: "Please add a description"},
		{
			Name: "weeks", Kind: schema.Number,
			Required: "Please add number of weeks",
			Min:      schema.Float(1), RangeMsg: "Weeks must be at least 1",
		},
		{
			Name: "tuition", Kind: schema.Number,
			Required: "Please add a tuition cost",
			Min:      schema.Float(0), RangeMsg: "Tuition can not be negative",
		},
		{
			Name: "minimumSkill", Kind: schema.String,
			Required: "Please add a minimum skill",
			Enum:     SkillLevels,
		},
		{Name: "scholarshipsAvailable", Kind: schema.Bool},
		{Name: "createdAt", Kind: schema.Time},
		{Name: "bootcamp", Kind: schema.ID},
		{Name: "user", Kind: schema.String},
	},
}

// CourseInput is the create/update body for courses. Nil fields are absent.
type CourseInput struct {
	Title                 *string  `json:"title"`
	Description           *string  `json:"description"`
	Weeks                 *int     `json:"weeks"`
	Tuition               *float64 `json:"tuition"`
	MinimumSkill          *string  `json:"minimumSkill"`
	ScholarshipsAvailable *bool    `json:"scholarshipsAvailable"`
}

// Values returns the supplied fields keyed by schema name.
func (in CourseInput) Values() map[string]any {
	v := map[string]any{}
	putString(v, "title", in.Title)
	putString(v, "description", in.Description)
	if in.Weeks != nil {
		v["weeks"] = *in.Weeks
	}
	putFloat(v, "tuition", in.Tuition)
	putString(v, "minimumSkill", in.MinimumSkill)
	putBool(v, "scholarshipsAvailable", in.ScholarshipsAvailable)
	return v
}

// Apply copies the supplied fields onto c.
func (in CourseInput) Apply(c *Course) {
	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Weeks != nil {
		c.Weeks = *in.Weeks
	}
	if in.Tuition != nil {
		c.Tuition = *in.Tuition
	}
	if in.MinimumSkill != nil {
		c.MinimumSkill = *in.MinimumSkill
	}
	if in.ScholarshipsAvailable != nil {
		c.ScholarshipsAvailable = *in.ScholarshipsAvailable
	}
}

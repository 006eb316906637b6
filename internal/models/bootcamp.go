package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devcamper/backend/internal/schema"
)

// DefaultPhoto is the photo of a bootcamp that never had one uploaded.
const DefaultPhoto = "no-photo.jpg"

// Careers a bootcamp can prepare students for.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

var websitePattern = regexp.MustCompile(`https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&/=]*)`)

// Location is the GeoJSON point and address parts produced by the geocoder.
type Location struct {
	Type             string    `json:"type"             bson:"type"`
	Coordinates      []float64 `json:"coordinates"      bson:"coordinates"` // [lng, lat]
	FormattedAddress string    `json:"formattedAddress" bson:"formattedAddress"`
	Street           string    `json:"street"           bson:"street"`
	City             string    `json:"city"             bson:"city"`
	State            string    `json:"state"            bson:"state"`
	Zipcode          string    `json:"zipcode"          bson:"zipcode"`
	Country          string    `json:"country"          bson:"country"`
}

// Bootcamp is a single bootcamp stored in MongoDB.
type Bootcamp struct {
	ID            primitive.ObjectID `json:"id"                      bson:"_id,omitempty"`
	Name          string             `json:"name"                    bson:"name"`
	Slug          string             `json:"slug"                    bson:"slug"`
	Description   string             `json:"description"             bson:"description"`
	Website       string             `json:"website,omitempty"       bson:"website,omitempty"`
	Phone         string             `json:"phone,omitempty"         bson:"phone,omitempty"`
	Email         string             `json:"email,omitempty"         bson:"email,omitempty"`
	Location      *Location          `json:"location,omitempty"      bson:"location,omitempty"`
	Careers       []string           `json:"careers"                 bson:"careers"`
	AverageRating *float64           `json:"averageRating,omitempty" bson:"averageRating,omitempty"`
	AverageCost   float64            `json:"averageCost"             bson:"averageCost"`
	CourseCount   int                `json:"-"                       bson:"courseCount"`
	TuitionSum    float64            `json:"-"                       bson:"tuitionSum"`
	Photo         string             `json:"photo"                   bson:"photo"`
	Housing       bool               `json:"housing"                 bson:"housing"`
	JobAssistance bool               `json:"jobAssistance"           bson:"jobAssistance"`
	JobGuarantee  bool               `json:"jobGuarantee"            bson:"jobGuarantee"`
	AcceptGi      bool               `json:"acceptGi"                bson:"acceptGi"`
	CreatedAt     time.Time          `json:"createdAt"               bson:"createdAt"`
	User          string             `json:"user"                    bson:"user"`

	// Publisher repeats User for owners held to one bootcamp. A unique
	// sparse index on it enforces the quota.
	Publisher string `json:"-" bson:"publisher,omitempty"`

	// Filled by eager loading only.
	Courses []Course `json:"courses,omitempty" bson:"courses,omitempty"`
}

// BootcampSummary is the populated form of a child's bootcamp reference.
type BootcampSummary struct {
	ID          primitive.ObjectID `json:"id"          bson:"_id"`
	Name        string             `json:"name"        bson:"name"`
	Description string             `json:"description" bson:"description"`
}

// Slugify derives the URL slug of a bootcamp name.
func Slugify(name string) string {
	return slug.Make(name)
}

// BootcampSchema constrains bootcamp input and exposes fields to the query façade.
var BootcampSchema = schema.Schema{
	Name: "bootcamp",
	Fields: []schema.Field{
		{Name: "_id", Kind: schema.ID},
		{
			Name: "name", Kind: schema.String,
			Required: "Please add a name",
			MaxLen:   50, MaxLenMsg: "Name can not be more than 50 characters",
		},
		{Name: "slug", Kind: schema.String},
		{
			Name: "description", Kind: schema.String,
			Required: "Please add a description",
			MaxLen:   500, MaxLenMsg: "Description can not be more than 500 characters",
		},
		{
			Name: "website", Kind: schema.String,
			Pattern: websitePattern, PatternMsg: "Please use a valid URL with HTTP or HTTPS",
		},
		{Name: "phone", Kind: schema.String, MaxLen: 20, MaxLenMsg: "Phone number can not be longer than 20 characters"},
		{Name: "email", Kind: schema.String, Pattern: emailPattern, PatternMsg: "Please add a valid email"},
		{Name: "address", Kind: schema.String, Hidden: true, Required: "Please add an address"},
		{
			Name: "careers", Kind: schema.Strings,
			Required: "Please add at least one career",
			Enum:     Careers,
		},
		{
			Name: "averageRating", Kind: schema.Number,
			Min: schema.Float(1), Max: schema.Float(10),
			RangeMsg: "Rating must be between 1 and 10",
		},
		{Name: "averageCost", Kind: schema.Number},
		{Name: "photo", Kind: schema.String},
		{Name: "housing", Kind: schema.Bool},
		{Name: "jobAssistance", Kind: schema.Bool},
		{Name: "jobGuarantee", Kind: schema.Bool},
		{Name: "acceptGi", Kind: schema.Bool},
		{Name: "createdAt", Kind: schema.Time},
		{Name: "user", Kind: schema.String},
		{Name: "location.city", Kind: schema.String},
		{Name: "location.state", Kind: schema.String},
		{Name: "location.zipcode", Kind: schema.String},
		{Name: "location.country", Kind: schema.String},
	},
}

// BootcampInput is the create/update body for bootcamps. Nil fields are absent.
type BootcampInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Website       *string  `json:"website"`
	Phone         *string  `json:"phone"`
	Email         *string  `json:"email"`
	Address       *string  `json:"address"`
	Careers       []string `json:"careers"`
	AverageRating *float64 `json:"averageRating"`
	Housing       *bool    `json:"housing"`
	JobAssistance *bool    `json:"jobAssistance"`
	JobGuarantee  *bool    `json:"jobGuarantee"`
	AcceptGi      *bool    `json:"acceptGi"`
}

// Values returns the supplied fields keyed by schema name.
func (in BootcampInput) Values() map[string]any {
	v := map[string]any{}
	putString(v, "name", in.Name)
	putString(v, "description", in.Description)
	putString(v, "website", in.Website)
	putString(v, "phone", in.Phone)
	putString(v, "email", in.Email)
	putString(v, "address", in.Address)
	if in.Careers != nil {
		v["careers"] = in.Careers
	}
	putFloat(v, "averageRating", in.AverageRating)
	putBool(v, "housing", in.Housing)
	putBool(v, "jobAssistance", in.JobAssistance)
	putBool(v, "jobGuarantee", in.JobGuarantee)
	putBool(v, "acceptGi", in.AcceptGi)
	return v
}

// Apply copies the supplied fields onto b and keeps the slug in step with
// the name. The address is not a stored field; callers geocode it.
func (in BootcampInput) Apply(b *Bootcamp) {
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
		b.Slug = Slugify(b.Name)
	}
	if in.Description != nil {
		b.Description = *in.Description
	}
	if in.Website != nil {
		b.Website = *in.Website
	}
	if in.Phone != nil {
		b.Phone = *in.Phone
	}
	if in.Email != nil {
		b.Email = *in.Email
	}
	if in.Careers != nil {
		b.Careers = in.Careers
	}
	if in.AverageRating != nil {
		b.AverageRating = in.AverageRating
	}
	if in.Housing != nil {
		b.Housing = *in.Housing
	}
	if in.JobAssistance != nil {
		b.JobAssistance = *in.JobAssistance
	}
	if in.JobGuarantee != nil {
		b.JobGuarantee = *in.JobGuarantee
	}
	if in.AcceptGi != nil {
		b.AcceptGi = *in.AcceptGi
	}
}

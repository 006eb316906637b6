package models

import (
	"regexp"
	"time"

	"github.com/ayush/devcamper/backend/internal/schema"
)

// Roles a user can hold.
const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// User represents a row in the PostgreSQL users table.
type User struct {
	ID                  string     `json:"id"        db:"id"`
	Name                string     `json:"name"      db:"name"`
	Email               string     `json:"email"     db:"email"`
	Role                string     `json:"role"      db:"role"`
	Password            string     `json:"-"         db:"password"` // bcrypt hash, never serialize
	ResetPasswordToken  *string    `json:"-"         db:"reset_password_token"`
	ResetPasswordExpire *time.Time `json:"-"         db:"reset_password_expire"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
}

// UserSchema constrains user input and exposes user columns to the query façade.
var UserSchema = schema.Schema{
	Name: "user",
	Fields: []schema.Field{
		{Name: "id", Kind: schema.String},
		{Name: "name", Kind: schema.String, Required: "Please add a name"},
		{
			Name: "email", Kind: schema.String,
			Required: "Please add an email",
			Pattern:  emailPattern, PatternMsg: "Please add a valid email",
		},
		{
			Name: "role", Kind: schema.String,
			Enum: []string{RoleUser, RolePublisher, RoleAdmin},
		},
		{
			Name: "password", Kind: schema.String, Hidden: true,
			Required: "Please add a password",
			MinLen:   6, MinLenMsg: "Password must be at least 6 characters",
		},
		{Name: "createdAt", Column: "created_at", Kind: schema.Time},
	},
}

// RegisterRequest is the JSON body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest is the JSON body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateDetailsRequest is the JSON body for PUT /api/v1/auth/updatedetails.
type UpdateDetailsRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UpdatePasswordRequest is the JSON body for PUT /api/v1/auth/updatepassword.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ForgotPasswordRequest is the JSON body for POST /api/v1/auth/forgotpassword.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the JSON body for PUT /api/v1/auth/resetpassword/{token}.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// UserInput is the admin create/update body for /api/v1/users.
// Nil fields are absent.
type UserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// Values returns the supplied fields keyed by schema name.
func (in UserInput) Values() map[string]any {
	v := map[string]any{}
	putString(v, "name", in.Name)
	putString(v, "email", in.Email)
	putString(v, "role", in.Role)
	putString(v, "password", in.Password)
	return v
}

// Apply copies the supplied profile fields onto u. Password is handled by
// the caller because it must be hashed first.
func (in UserInput) Apply(u *User) {
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
}

func putString(v map[string]any, key string, p *string) {
	if p != nil {
		v[key] = *p
	}
}

func putFloat(v map[string]any, key string, p *float64) {
	if p != nil {
		v[key] = *p
	}
}

func putBool(v map[string]any, key string, p *bool) {
	if p != nil {
		v[key] = *p
	}
}

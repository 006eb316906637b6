package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/policy"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = 10 * time.Minute

const notAuthorized = "Not authorized to access this route"

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, hashed string, now time.Time) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

// Mailer delivers plain text notifications.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Denylist tracks revoked token ids.
type Denylist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	Revoked(ctx context.Context, jti string) (bool, error)
}

// Service is the credential store: registration, login, password changes
// and token validation.
type Service struct {
	users  UserStore
	tokens *Tokens
	mail   Mailer
	deny   Denylist
	now    func() time.Time
}

func NewService(users UserStore, tokens *Tokens, mail Mailer, deny Denylist) *Service {
	return &Service{users: users, tokens: tokens, mail: mail, deny: deny, now: time.Now}
}

// Register creates a user and returns a token for it. Only the user and
// publisher roles can be chosen; admins are made by admins.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	in := models.UserInput{Name: &req.Name, Email: &req.Email, Password: &req.Password}
	if req.Role != "" {
		in.Role = &req.Role
	}
	if err := models.UserSchema.Validate(in.Values(), false); err != nil {
		return "", err
	}
	if req.Role == models.RoleAdmin {
		return "", apperr.Validation("`%s` is not a valid value for role", req.Role)
	}

	u := &models.User{Role: models.RoleUser}
	in.Apply(u)
	u.Email = NormalizeEmail(u.Email)
	var err error
	if u.Password, err = HashPassword(req.Password); err != nil {
		return "", err
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return "", err
	}

	slog.Info("user registered", "user_id", u.ID, "role", u.Role)
	return s.tokens.Issue(u.ID)
}

// Login returns a token for valid credentials. Unknown emails and wrong
// passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", apperr.Validation("Please provide an email and password")
	}

	u, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return "", apperr.Unauthenticated("Invalid credentials")
		}
		return "", err
	}
	if !checkPassword(u.Password, password) {
		return "", apperr.Unauthenticated("Invalid credentials")
	}
	return s.tokens.Issue(u.ID)
}

// Me returns the user behind id.
func (s *Service) Me(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// UpdateDetails changes the caller's name and email. Other fields are
// ignored.
func (s *Service) UpdateDetails(ctx context.Context, id string, req models.UpdateDetailsRequest) (*models.User, error) {
	in := models.UserInput{Name: req.Name, Email: req.Email}
	if err := models.UserSchema.Validate(in.Values(), true); err != nil {
		return nil, err
	}

	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(u)
	u.Email = NormalizeEmail(u.Email)
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdatePassword replaces the caller's password after checking the
// current one and returns a fresh token.
func (s *Service) UpdatePassword(ctx context.Context, id string, req models.UpdatePasswordRequest) (string, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !checkPassword(u.Password, req.CurrentPassword) {
		return "", apperr.Unauthenticated("Password is incorrect")
	}
	if err := s.setPassword(ctx, u, req.NewPassword); err != nil {
		return "", err
	}
	return s.tokens.Issue(u.ID)
}

// ForgotPassword mails a reset link rooted at baseURL. When the mail cannot
// be sent the reset token is withdrawn again.
func (s *Service) ForgotPassword(ctx context.Context, email, baseURL string) error {
	u, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.NotFound("There is no user with that email")
		}
		return err
	}

	raw, hashed, err := newResetToken()
	if err != nil {
		return err
	}
	expire := s.now().Add(ResetTokenTTL)
	u.ResetPasswordToken, u.ResetPasswordExpire = &hashed, &expire
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/api/v1/auth/resetpassword/%s", strings.TrimRight(baseURL, "/"), raw)
	body := "You are receiving this email because you (or someone else) has requested the reset of a password. " +
		"Please make a PUT request to:\n\n" + resetURL
	sendErr := s.mail.Send(ctx, u.Email, "Password reset token", body)
	if sendErr == nil {
		return nil
	}

	u.ResetPasswordToken, u.ResetPasswordExpire = nil, nil
	if err := s.users.UpdateUser(ctx, u); err != nil {
		slog.Error("withdraw reset token", "user_id", u.ID, "error", err)
	}
	return apperr.Upstream(sendErr, "Email could not be sent")
}

// ResetPassword sets a new password for the holder of a live reset token
// and returns a fresh token.
func (s *Service) ResetPassword(ctx context.Context, rawToken, password string) (string, error) {
	u, err := s.users.GetUserByResetToken(ctx, hashResetToken(rawToken), s.now())
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return "", apperr.Validation("Invalid or expired token")
		}
		return "", err
	}

	u.ResetPasswordToken, u.ResetPasswordExpire = nil, nil
	if err := s.setPassword(ctx, u, password); err != nil {
		return "", err
	}
	return s.tokens.Issue(u.ID)
}

func (s *Service) setPassword(ctx context.Context, u *models.User, password string) error {
	if err := models.UserSchema.Validate(map[string]any{"password": password}, true); err != nil {
		return err
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return s.users.UpdateUser(ctx, u)
}

// Logout revokes token until it would have expired. Tokens that no longer
// verify need no revocation.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	return s.deny.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Authenticate resolves token to its live, unrevoked user.
func (s *Service) Authenticate(ctx context.Context, token string) (policy.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return policy.Principal{}, apperr.Unauthenticated(notAuthorized)
	}

	revoked, err := s.deny.Revoked(ctx, claims.ID)
	if err != nil {
		return policy.Principal{}, err
	}
	if revoked {
		return policy.Principal{}, apperr.Unauthenticated(notAuthorized)
	}

	u, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return policy.Principal{}, apperr.Unauthenticated(notAuthorized)
		}
		return policy.Principal{}, err
	}
	return policy.Principal{ID: u.ID, Name: u.Name, Role: u.Role}, nil
}

// NormalizeEmail is the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

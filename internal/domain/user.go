package domain

import (
	"context"
	"time"
)

// RoleAdmin is the token role carried by admin users.
const RoleAdmin = "admin"

// User represents a staff account allowed to sign in.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(name, email string, isAdmin bool, createdAt, updatedAt time.Time) *User {
	return &User{
		Name:      name,
		Email:     email,
		IsAdmin:   isAdmin,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Roles returns the token roles for the user.
func (u *User) Roles() []string {
	if u.IsAdmin {
		return []string{RoleAdmin}
	}
	return []string{}
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	UpdatePassword(ctx context.Context, id, hash, salt string) error
	Delete(ctx context.Context, id string) error
}

// RegisterInput holds the fields an admin supplies when creating an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

// CredentialService manages accounts, passwords and sign-in.
type CredentialService interface {
	Register(ctx context.Context, actorID string, in RegisterInput) (*User, error)
	// CreateAdmin creates an admin account without an acting admin. Used to bootstrap an empty directory.
	CreateAdmin(ctx context.Context, name, email, password string) (*User, error)
	SignUp(ctx context.Context, name, email, password string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (token string, user *User, err error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	GetByID(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context, actorID string) ([]*User, error)
	DeleteUser(ctx context.Context, actorID, userID string) error
}

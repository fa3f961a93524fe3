package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hakari-tcg/hakari/internal/auth"
	"github.com/hakari-tcg/hakari/internal/data"
	"github.com/hakari-tcg/hakari/internal/model"
)

const (
	displayNameMinLen = 3
	displayNameMaxLen = 16
)

// RegistrationResult reports an account-creation attempt.
type RegistrationResult struct {
	Success bool
	Message string
}

// LoginResult reports a login attempt. Token is set only on success.
type LoginResult struct {
	Success bool
	Message string
	Token   string
}

// RegisterUser validates the display name, checks email and display-name
// uniqueness, hashes the password and inserts the player. Failures are
// reported in the result; a non-nil error means the store or the hasher
// failed.
func RegisterUser(ctx context.Context, svc *data.Service, email, password, displayName string) (RegistrationResult, error) {
	if len(displayName) < displayNameMinLen || len(displayName) > displayNameMaxLen {
		return RegistrationResult{Message: "Display name must be between 3 and 16 characters."}, nil
	}

	existing, err := svc.FindPlayerByEmail(ctx, email)
	if err != nil {
		return RegistrationResult{}, errors.Wrap(err, "checking email uniqueness")
	}
	if existing != nil {
		return RegistrationResult{Message: "A user with this email already exists."}, nil
	}

	existing, err = svc.FindPlayerByDisplayName(ctx, displayName)
	if err != nil {
		return RegistrationResult{}, errors.Wrap(err, "checking display name uniqueness")
	}
	if existing != nil {
		return RegistrationResult{Message: "A user with this display name already exists."}, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return RegistrationResult{}, errors.Wrap(err, "hashing password")
	}

	player := model.NewPlayer()
	player.UUID = uuid.NewString()
	player.Email = email
	player.DisplayName = displayName
	player.PasswordHash = hash

	if _, err := svc.Players.InsertOne(ctx, player); err != nil {
		return RegistrationResult{}, errors.Wrap(err, "inserting player")
	}
	return RegistrationResult{Success: true, Message: "Account created successfully."}, nil
}

// LoginUser verifies the credentials and mints a session token. A miss on
// either the email or the password produces the same message, so the
// response does not reveal which accounts exist.
func LoginUser(ctx context.Context, svc *data.Service, authn *auth.Authenticator, email, password string) (LoginResult, error) {
	player, err := svc.FindPlayerByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "looking up player")
	}
	if player == nil {
		return LoginResult{Message: "Invalid email or password."}, nil
	}

	ok, err := auth.VerifyPassword(password, player.PasswordHash)
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "verifying password")
	}
	if !ok {
		return LoginResult{Message: "Invalid email or password."}, nil
	}

	token, err := authn.IssueToken(player.ID, player.Email)
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "issuing token")
	}
	return LoginResult{Success: true, Message: "Login successful.", Token: token}, nil
}

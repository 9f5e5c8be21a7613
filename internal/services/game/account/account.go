// Package account guards the session boundary: credential checks, character
// listing, and session token issuance for one game world.
package account

import (
	"context"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/duskhaven/duskhaven/internal/platform/errors"
	"github.com/duskhaven/duskhaven/internal/services/game/storage"
)

// AuthMode selects how login credentials are verified.
type AuthMode string

const (
	// AuthPassword verifies a password against the stored digest.
	AuthPassword AuthMode = "password"
	// AuthSession verifies a signed session token previously issued for the
	// account, so game reconnects skip the password exchange.
	AuthSession AuthMode = "session"
)

// ErrAuthFailed is returned for any credential mismatch. The message never
// distinguishes unknown accounts from wrong passwords.
var ErrAuthFailed = apperrors.New(apperrors.CodeAuthFailed, "account authentication failed")

// Authenticator verifies account credentials and answers character-roster
// questions for the session boundary.
type Authenticator struct {
	store      storage.AccountStore
	mode       AuthMode
	sessionKey []byte
	sessionTTL time.Duration
	now        func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithSessionKey sets the HMAC key used to sign and verify session tokens.
// Required for AuthSession mode.
func WithSessionKey(key []byte) Option {
	return func(a *Authenticator) { a.sessionKey = key }
}

// WithSessionTTL overrides the default one-day session token lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(a *Authenticator) { a.sessionTTL = ttl }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// NewAuthenticator builds an authenticator for one credential mode.
func NewAuthenticator(store storage.AccountStore, mode AuthMode, opts ...Option) (*Authenticator, error) {
	a := &Authenticator{
		store:      store,
		mode:       mode,
		sessionTTL: 24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	switch mode {
	case AuthPassword:
	case AuthSession:
		if len(a.sessionKey) == 0 {
			return nil, fmt.Errorf("session auth mode requires a session key")
		}
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
	return a, nil
}

// Authenticate verifies credential for the account identified by descriptor
// and returns the matching account record. In session mode descriptor may be
// empty; the token itself names the account.
func (a *Authenticator) Authenticate(ctx context.Context, descriptor, credential string) (storage.AccountRecord, error) {
	if a.mode == AuthSession {
		return a.authenticateSession(ctx, credential)
	}
	return a.authenticatePassword(ctx, descriptor, credential)
}

func (a *Authenticator) authenticatePassword(ctx context.Context, descriptor, password string) (storage.AccountRecord, error) {
	account, err := a.store.AccountByDescriptor(ctx, descriptor)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.AccountRecord{}, ErrAuthFailed
		}
		return storage.AccountRecord{}, fmt.Errorf("resolve account: %w", err)
	}

	digest := HashPassword(password)
	stored := strings.ToLower(account.PasswordDigest)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) != 1 {
		return storage.AccountRecord{}, ErrAuthFailed
	}
	return account, nil
}

func (a *Authenticator) authenticateSession(ctx context.Context, token string) (storage.AccountRecord, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.sessionKey, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return storage.AccountRecord{}, ErrAuthFailed
	}

	account, err := a.store.AccountByDescriptor(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.AccountRecord{}, ErrAuthFailed
		}
		return storage.AccountRecord{}, fmt.Errorf("resolve account: %w", err)
	}
	return account, nil
}

// IssueSessionToken signs a session token naming the account descriptor,
// valid for the configured TTL.
func (a *Authenticator) IssueSessionToken(descriptor string) (string, error) {
	if len(a.sessionKey) == 0 {
		return "", fmt.Errorf("no session key configured")
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   descriptor,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.sessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.sessionKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// AuthorizeCharacter checks that name is a live character on the account.
// Characters with a pending deletion marker cannot log in.
func (a *Authenticator) AuthorizeCharacter(ctx context.Context, accountID uint32, name string) error {
	if accountID == 0 {
		return apperrors.New(apperrors.CodeAccountNotLoaded, "account is not loaded")
	}
	characters, err := a.store.CharactersByAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("list account characters: %w", err)
	}
	for _, character := range characters {
		if character.Name != name {
			continue
		}
		if character.DeletionTime != 0 {
			return apperrors.WithMetadata(
				apperrors.CodePlayerDeleted,
				"character is scheduled for deletion",
				map[string]string{"player": name},
			)
		}
		return nil
	}
	return ErrAuthFailed
}

// Login authenticates the credential and authorizes the requested character
// in one step, returning the account the session belongs to.
func (a *Authenticator) Login(ctx context.Context, descriptor, credential, characterName string) (storage.AccountRecord, error) {
	account, err := a.Authenticate(ctx, descriptor, credential)
	if err != nil {
		return storage.AccountRecord{}, err
	}
	if err := a.AuthorizeCharacter(ctx, account.ID, characterName); err != nil {
		return storage.AccountRecord{}, err
	}
	return account, nil
}

// AccountType returns the account's privilege tier.
func (a *Authenticator) AccountType(ctx context.Context, accountID uint32) (uint8, error) {
	return a.store.AccountType(ctx, accountID)
}

// HashPassword returns the hex SHA-1 digest stored for account passwords.
// The scheme matches the legacy account database this world imports from.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

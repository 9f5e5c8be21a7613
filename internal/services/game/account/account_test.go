package account

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/duskhaven/duskhaven/internal/platform/errors"
	"github.com/duskhaven/duskhaven/internal/services/game/storage"
)

type fakeAccountStore struct {
	accounts   map[string]storage.AccountRecord
	characters map[uint32][]storage.CharacterSummary
}

func (f *fakeAccountStore) AccountByDescriptor(_ context.Context, descriptor string) (storage.AccountRecord, error) {
	account, ok := f.accounts[descriptor]
	if !ok {
		return storage.AccountRecord{}, storage.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccountStore) AccountType(_ context.Context, accountID uint32) (uint8, error) {
	for _, account := range f.accounts {
		if account.ID == accountID {
			return account.Type, nil
		}
	}
	return 0, nil
}

func (f *fakeAccountStore) CharactersByAccount(_ context.Context, accountID uint32) ([]storage.CharacterSummary, error) {
	return f.characters[accountID], nil
}

func testStore() *fakeAccountStore {
	return &fakeAccountStore{
		accounts: map[string]storage.AccountRecord{
			"keeper@duskhaven.test": {
				ID:             9,
				Descriptor:     "keeper@duskhaven.test",
				PasswordDigest: HashPassword("hunter2"),
				Type:           3,
			},
		},
		characters: map[uint32][]storage.CharacterSummary{
			9: {
				{Name: "Avela Stormfall"},
				{Name: "Forgotten One", DeletionTime: 1700000000},
			},
		},
	}
}

func TestAuthenticatePassword(t *testing.T) {
	auth, err := NewAuthenticator(testStore(), AuthPassword)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	ctx := context.Background()

	account, err := auth.Authenticate(ctx, "keeper@duskhaven.test", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if account.ID != 9 {
		t.Errorf("account id = %d, want 9", account.ID)
	}

	if _, err := auth.Authenticate(ctx, "keeper@duskhaven.test", "wrong"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("wrong password error = %v, want ErrAuthFailed", err)
	}
	if _, err := auth.Authenticate(ctx, "nobody@duskhaven.test", "hunter2"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("unknown account error = %v, want ErrAuthFailed", err)
	}
}

func TestAuthenticateSession(t *testing.T) {
	key := []byte("test-session-key")
	auth, err := NewAuthenticator(testStore(), AuthSession, WithSessionKey(key))
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	ctx := context.Background()

	token, err := auth.IssueSessionToken("keeper@duskhaven.test")
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}

	account, err := auth.Authenticate(ctx, "", token)
	if err != nil {
		t.Fatalf("Authenticate with token: %v", err)
	}
	if account.ID != 9 {
		t.Errorf("account id = %d, want 9", account.ID)
	}

	if _, err := auth.Authenticate(ctx, "", "not-a-token"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("garbage token error = %v, want ErrAuthFailed", err)
	}

	// Token signed with a different key must not verify.
	other, err := NewAuthenticator(testStore(), AuthSession, WithSessionKey([]byte("other-key")))
	if err != nil {
		t.Fatalf("NewAuthenticator other: %v", err)
	}
	foreign, err := other.IssueSessionToken("keeper@duskhaven.test")
	if err != nil {
		t.Fatalf("IssueSessionToken other: %v", err)
	}
	if _, err := auth.Authenticate(ctx, "", foreign); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("foreign token error = %v, want ErrAuthFailed", err)
	}
}

func TestAuthenticateSessionExpired(t *testing.T) {
	key := []byte("test-session-key")
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	issuer, err := NewAuthenticator(testStore(), AuthSession,
		WithSessionKey(key),
		WithSessionTTL(time.Hour),
		WithClock(func() time.Time { return issuedAt }))
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	token, err := issuer.IssueSessionToken("keeper@duskhaven.test")
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}

	verifier, err := NewAuthenticator(testStore(), AuthSession,
		WithSessionKey(key),
		WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) }))
	if err != nil {
		t.Fatalf("NewAuthenticator verifier: %v", err)
	}
	if _, err := verifier.Authenticate(context.Background(), "", token); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("expired token error = %v, want ErrAuthFailed", err)
	}
}

func TestSessionModeRequiresKey(t *testing.T) {
	if _, err := NewAuthenticator(testStore(), AuthSession); err == nil {
		t.Fatal("expected error for session mode without key")
	}
}

func TestLogin(t *testing.T) {
	auth, err := NewAuthenticator(testStore(), AuthPassword)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	ctx := context.Background()

	account, err := auth.Login(ctx, "keeper@duskhaven.test", "hunter2", "Avela Stormfall")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if account.ID != 9 {
		t.Errorf("account id = %d, want 9", account.ID)
	}

	if _, err := auth.Login(ctx, "keeper@duskhaven.test", "wrong", "Avela Stormfall"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("wrong password error = %v, want ErrAuthFailed", err)
	}

	_, err = auth.Login(ctx, "keeper@duskhaven.test", "hunter2", "Forgotten One")
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodePlayerDeleted {
		t.Errorf("deleted character error = %v, want code %s", err, apperrors.CodePlayerDeleted)
	}
}

func TestAuthorizeCharacter(t *testing.T) {
	auth, err := NewAuthenticator(testStore(), AuthPassword)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	ctx := context.Background()

	if err := auth.AuthorizeCharacter(ctx, 9, "Avela Stormfall"); err != nil {
		t.Errorf("live character rejected: %v", err)
	}

	err = auth.AuthorizeCharacter(ctx, 9, "Forgotten One")
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodePlayerDeleted {
		t.Errorf("deleted character error = %v, want code %s", err, apperrors.CodePlayerDeleted)
	}

	if err := auth.AuthorizeCharacter(ctx, 9, "Stranger"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("foreign character error = %v, want ErrAuthFailed", err)
	}

	err = auth.AuthorizeCharacter(ctx, 0, "Avela Stormfall")
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeAccountNotLoaded {
		t.Errorf("zero account error = %v, want code %s", err, apperrors.CodeAccountNotLoaded)
	}
}

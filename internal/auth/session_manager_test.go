package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sohansahooo/vidshort/internal/models"
)

func newTestManager(t *testing.T, refreshTTL time.Duration) (*Manager, *InMemorySessionStore) {
	t.Helper()
	issuer, err := NewTokenIssuer("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("new token issuer: %v", err)
	}
	store := NewInMemorySessionStore()
	return NewManager(issuer, refreshTTL, store), store
}

func TestManagerIssueAndRefresh(t *testing.T) {
	manager, store := newTestManager(t, time.Hour)
	identity := models.Identity{ID: "user-1", Email: "user@example.com"}

	tokens, err := manager.Issue(context.Background(), identity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}

	claims, err := manager.Verify(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Identity() != identity {
		t.Fatalf("unexpected identity %+v", claims.Identity())
	}

	refreshed, refreshedIdentity, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected new refresh token")
	}
	if refreshedIdentity != identity {
		t.Fatalf("expected identity %+v got %+v", identity, refreshedIdentity)
	}
	if store.Has(tokens.RefreshToken) {
		t.Fatal("old token should have been removed")
	}
	if !store.Has(refreshed.RefreshToken) {
		t.Fatal("new token should have been stored")
	}
}

func TestManagerIssueValidation(t *testing.T) {
	manager, _ := newTestManager(t, time.Hour)
	if _, err := manager.Issue(context.Background(), models.Identity{}); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestManagerRefreshFailures(t *testing.T) {
	manager, _ := newTestManager(t, time.Hour)
	identity := models.Identity{ID: "user-1"}

	if _, _, err := manager.Refresh(context.Background(), ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session not found got %v", err)
	}
	if _, _, err := manager.Refresh(context.Background(), "unknown"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session not found got %v", err)
	}

	tokens, err := manager.Issue(context.Background(), identity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("expected refresh expired got %v", err)
	}
	manager.now = time.Now

	tokens, err = manager.Issue(context.Background(), identity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	manager.Revoke(context.Background(), tokens.RefreshToken)
	if _, _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session not found after revoke got %v", err)
	}
}

func TestManagerRevokeAccess(t *testing.T) {
	manager, _ := newTestManager(t, time.Hour)

	first, err := manager.Issue(context.Background(), models.Identity{ID: "user-1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := manager.Issue(context.Background(), models.Identity{ID: "user-1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.RevokeAccess(first.AccessToken)
	manager.RevokeAccess("not-a-token")

	if _, err := manager.Verify(first.AccessToken); !errors.Is(err, ErrAccessTokenRevoked) || !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected revoked token error got %v", err)
	}
	if _, err := manager.Verify(second.AccessToken); err != nil {
		t.Fatalf("other sessions must stay valid: %v", err)
	}
}

func TestManagerRevokeAccessForgetsExpiredEntries(t *testing.T) {
	manager, _ := newTestManager(t, time.Hour)

	tokens, err := manager.Issue(context.Background(), models.Identity{ID: "user-1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	manager.RevokeAccess(tokens.AccessToken)

	later, err := manager.Issue(context.Background(), models.Identity{ID: "user-2"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	manager.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	manager.RevokeAccess(later.AccessToken)

	if len(manager.revoked) != 1 {
		t.Fatalf("expected only the fresh revocation to remain, have %d", len(manager.revoked))
	}
}

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

var (
	alice = models.Actor{ID: "alice-uid", Username: "alice", Role: models.RoleUser}
	bob   = models.Actor{ID: "bob-uid", Username: "bob", Role: models.RoleUser}
	admin = models.Actor{ID: "admin-uid", Username: "admin", Role: models.RoleAdmin}
)

func boolPtr(b bool) *bool { return &b }

func TestPredicates(t *testing.T) {
	private := &models.Subscription{ID: 1, OwnerID: alice.ID}
	shared := &models.Subscription{ID: 2, OwnerID: alice.ID, IsShared: true}

	tests := []struct {
		name       string
		actor      models.Actor
		sub        *models.Subscription
		wantRead   bool
		wantWrite  bool
		wantDelete bool
	}{
		{name: "owner of private record", actor: alice, sub: private, wantRead: true, wantWrite: true, wantDelete: true},
		{name: "stranger and private record", actor: bob, sub: private},
		{name: "stranger and shared record", actor: bob, sub: shared, wantRead: true, wantWrite: true},
		{name: "owner of shared record", actor: alice, sub: shared, wantRead: true, wantWrite: true, wantDelete: true},
		{name: "admin and private record", actor: admin, sub: private, wantRead: true, wantWrite: true, wantDelete: true},
		{name: "admin and shared record", actor: admin, sub: shared, wantRead: true, wantWrite: true, wantDelete: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRead, CanRead(tt.actor, tt.sub))
			assert.Equal(t, tt.wantWrite, CanWrite(tt.actor, tt.sub))
			assert.Equal(t, tt.wantDelete, CanDelete(tt.actor, tt.sub))
		})
	}
}

func TestCanCreate(t *testing.T) {
	assert.True(t, CanCreate(alice))
	assert.False(t, CanCreate(admin))
}

func TestVisibilitySet(t *testing.T) {
	subs := []*models.Subscription{
		{ID: 1, OwnerID: bob.ID},
		{ID: 2, OwnerID: alice.ID},
		{ID: 3, OwnerID: bob.ID, IsShared: true},
		{ID: 4, OwnerID: alice.ID, IsShared: true},
	}

	ids := func(list []*models.Subscription) []int {
		var out []int
		for _, s := range list {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []int{2, 3, 4}, ids(VisibilitySet(alice, subs)))
	assert.Equal(t, []int{1, 3, 4}, ids(VisibilitySet(bob, subs)))
	assert.Equal(t, []int{1, 2, 3, 4}, ids(VisibilitySet(admin, subs)))
	assert.Empty(t, VisibilitySet(alice, nil))
}

func TestSanitizeUpdate(t *testing.T) {
	name := "Netflix"

	tests := []struct {
		name         string
		actor        models.Actor
		patch        models.SubscriptionPatch
		wantIsShared *bool
	}{
		{name: "user sets sharing", actor: alice, patch: models.SubscriptionPatch{ServiceName: &name, IsShared: boolPtr(true)}},
		{name: "user clears sharing", actor: alice, patch: models.SubscriptionPatch{IsShared: boolPtr(false)}},
		{name: "user without sharing field", actor: alice, patch: models.SubscriptionPatch{ServiceName: &name}},
		{name: "admin sets sharing", actor: admin, patch: models.SubscriptionPatch{IsShared: boolPtr(true)}, wantIsShared: boolPtr(true)},
		{name: "admin clears sharing", actor: admin, patch: models.SubscriptionPatch{IsShared: boolPtr(false)}, wantIsShared: boolPtr(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeUpdate(tt.actor, tt.patch)
			assert.Equal(t, tt.wantIsShared, got.IsShared)
			assert.Equal(t, tt.patch.ServiceName, got.ServiceName)
		})
	}
}

func TestSanitizeUpdate_NeverChangesSharingForUser(t *testing.T) {
	sub := models.Subscription{OwnerID: alice.ID, IsShared: true}
	for _, v := range []*bool{nil, boolPtr(true), boolPtr(false)} {
		patched := SanitizeUpdate(alice, models.SubscriptionPatch{IsShared: v}).Apply(sub)
		assert.True(t, patched.IsShared)
	}
}

package services

import (
	"testing"

	"finaudy/internal/models"
	"finaudy/internal/testutil"
)

func TestInvite(t *testing.T) {
	t.Run("registered_invitee", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSharingService(db)
		owner := testutil.CreateTestUser(t, db)
		friend := testutil.CreateTestUserWithEmail(t, db, "friend@example.com")

		share, err := svc.Invite(owner.ID, " Friend@Example.com ")
		testutil.AssertNoError(t, err)
		if share.InvitedEmail != "friend@example.com" || share.Status != models.ShareStatusPending {
			t.Errorf("unexpected share %+v", share)
		}
		if share.SharedWithID == nil || *share.SharedWithID != friend.ID {
			t.Error("expected invite to be linked to the registered user")
		}
	})

	t.Run("unregistered_invitee", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSharingService(db)
		owner := testutil.CreateTestUser(t, db)

		share, err := svc.Invite(owner.ID, "nobody@example.com")
		testutil.AssertNoError(t, err)
		if share.SharedWithID != nil {
			t.Error("expected no linked user yet")
		}
	})

	t.Run("self", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSharingService(db)
		owner := testutil.CreateTestUser(t, db)

		_, err := svc.Invite(owner.ID, owner.Email)
		testutil.AssertAppError(t, err, "SHARE_SELF")
	})

	t.Run("duplicate_then_reopen", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSharingService(db)
		owner := testutil.CreateTestUser(t, db)
		friend := testutil.CreateTestUser(t, db)

		share, err := svc.Invite(owner.ID, friend.Email)
		testutil.AssertNoError(t, err)
		_, err = svc.Invite(owner.ID, friend.Email)
		testutil.AssertAppError(t, err, "SHARE_EXISTS")

		testutil.AssertNoError(t, svc.Decline(friend.ID, share.ID))
		reopened, err := svc.Invite(owner.ID, friend.Email)
		testutil.AssertNoError(t, err)
		if reopened.ID != share.ID || reopened.Status != models.ShareStatusPending {
			t.Errorf("expected the declined invite to be reopened, got %+v", reopened)
		}
	})
}

func TestAcceptAndAccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSharingService(db)
	owner := testutil.CreateTestUser(t, db)
	friend := testutil.CreateTestUser(t, db)
	stranger := testutil.CreateTestUser(t, db)

	share, err := svc.Invite(owner.ID, friend.Email)
	testutil.AssertNoError(t, err)

	pending, err := svc.GetPendingInvites(friend.ID)
	testutil.AssertNoError(t, err)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending invite, got %d", len(pending))
	}

	_, err = svc.Accept(stranger.ID, share.ID)
	testutil.AssertAppError(t, err, "SHARE_NOT_FOUND")

	ok, err := svc.HasAccess(friend.ID, owner.ID)
	testutil.AssertNoError(t, err)
	if ok {
		t.Error("pending invites must not grant access")
	}

	accepted, err := svc.Accept(friend.ID, share.ID)
	testutil.AssertNoError(t, err)
	if accepted.Status != models.ShareStatusAccepted || accepted.AcceptedAt == nil {
		t.Errorf("unexpected share %+v", accepted)
	}

	ok, err = svc.HasAccess(friend.ID, owner.ID)
	testutil.AssertNoError(t, err)
	if !ok {
		t.Error("expected access after accepting")
	}

	accounts, err := svc.Accessible(friend.ID)
	testutil.AssertNoError(t, err)
	if len(accounts) != 2 || !accounts[0].Owned || accounts[1].AccountID != owner.ID {
		t.Errorf("unexpected accessible accounts %+v", accounts)
	}

	recipients, err := svc.Recipients(owner.ID)
	testutil.AssertNoError(t, err)
	if len(recipients) != 2 || recipients[0] != owner.ID || recipients[1] != friend.ID {
		t.Errorf("unexpected recipients %v", recipients)
	}

	testutil.AssertNoError(t, svc.Revoke(owner.ID, share.ID))
	ok, err = svc.HasAccess(friend.ID, owner.ID)
	testutil.AssertNoError(t, err)
	if ok {
		t.Error("expected access to end after revoke")
	}

	err = svc.Revoke(owner.ID, share.ID)
	testutil.AssertAppError(t, err, "SHARE_NOT_FOUND")
}

func TestHasAccessOwnAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSharingService(db)
	user := testutil.CreateTestUser(t, db)

	ok, err := svc.HasAccess(user.ID, user.ID)
	testutil.AssertNoError(t, err)
	if !ok {
		t.Error("users always have access to their own account")
	}
}

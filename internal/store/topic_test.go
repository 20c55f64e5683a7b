// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"nextping/internal/models"
)

func TestTopicStoreCreateAndList(t *testing.T) {
	db := testDB(t)
	s := NewTopicStore(db)

	names := []string{"topic-test-first", "topic-test-second"}
	t.Cleanup(func() { cleanTopics(t, db, names...) })

	for _, name := range names {
		topic, err := s.Create(name)
		if err != nil {
			t.Fatalf("Create %q: %v", name, err)
		}
		if topic.Status != models.TopicStatusPending {
			t.Errorf("new topic status: got %q, want pending", topic.Status)
		}
		if topic.ClaimedAt != nil {
			t.Error("new topic must not have claimed_at")
		}
	}

	pending, err := s.List(models.TopicStatusPending)
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}

	// Oldest first among our two test topics.
	var ours []string
	for _, topic := range pending {
		if topic.Name == names[0] || topic.Name == names[1] {
			ours = append(ours, topic.Name)
		}
	}
	if len(ours) != 2 || ours[0] != names[0] || ours[1] != names[1] {
		t.Errorf("pending order: got %v, want %v", ours, names)
	}
}

func TestTopicStoreClaimLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewTopicStore(db)

	name := "topic-test-claim-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanTopics(t, db, name) })

	created, err := s.Create(name)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Drain any older pending topics so ours is next. Each claimed topic
	// is released afterwards.
	var drained []uuid.UUID
	t.Cleanup(func() {
		for _, id := range drained {
			s.Release(id)
		}
	})

	var claimed *models.Topic
	for {
		claimed, err = s.ClaimNext()
		if err != nil {
			t.Fatalf("ClaimNext: %v", err)
		}
		if claimed == nil {
			t.Fatal("queue drained without reaching our topic")
		}
		if claimed.ID == created.ID {
			break
		}
		drained = append(drained, claimed.ID)
	}

	if claimed.Status != models.TopicStatusClaimed {
		t.Errorf("claimed status: got %q, want claimed", claimed.Status)
	}
	if claimed.ClaimedAt == nil {
		t.Error("claim must stamp claimed_at")
	}

	// Release puts it back to pending.
	if err := s.Release(claimed.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	reloaded, err := s.FindByID(claimed.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reloaded.Status != models.TopicStatusPending {
		t.Errorf("released status: got %q, want pending", reloaded.Status)
	}
	if reloaded.ClaimedAt != nil {
		t.Error("release must clear claimed_at")
	}
}

func TestTopicStoreMarkUsedIdempotent(t *testing.T) {
	db := testDB(t)
	s := NewTopicStore(db)

	name := "topic-test-used-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanTopics(t, db, name) })

	created, err := s.Create(name)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Move to claimed directly so the test does not depend on queue order.
	if _, err := db.Exec(`UPDATE topics SET status = 'claimed', claimed_at = NOW() WHERE id = $1`, created.ID); err != nil {
		t.Fatalf("claim directly: %v", err)
	}

	if err := s.MarkUsed(created.ID); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}
	// Second call is a no-op, not an error.
	if err := s.MarkUsed(created.ID); err != nil {
		t.Fatalf("MarkUsed (again): %v", err)
	}

	reloaded, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reloaded.Status != models.TopicStatusUsed {
		t.Errorf("status: got %q, want used", reloaded.Status)
	}

	// A used topic cannot be released back to pending.
	if err := s.Release(created.ID); err != nil {
		t.Fatalf("Release used: %v", err)
	}
	reloaded, _ = s.FindByID(created.ID)
	if reloaded.Status != models.TopicStatusUsed {
		t.Errorf("used topic must stay used, got %q", reloaded.Status)
	}
}

func TestTopicStoreReleaseAbandoned(t *testing.T) {
	db := testDB(t)
	s := NewTopicStore(db)

	name := "topic-test-abandoned-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanTopics(t, db, name) })

	created, err := s.Create(name)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Simulate a run that claimed an hour ago and never finished.
	if _, err := db.Exec(`
		UPDATE topics SET status = 'claimed', claimed_at = NOW() - INTERVAL '1 hour'
		WHERE id = $1
	`, created.ID); err != nil {
		t.Fatalf("stale claim: %v", err)
	}

	n, err := s.ReleaseAbandoned(time.Now().Add(-30 * time.Minute))
	if err != nil {
		t.Fatalf("ReleaseAbandoned: %v", err)
	}
	if n < 1 {
		t.Errorf("released count: got %d, want >= 1", n)
	}

	reloaded, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reloaded.Status != models.TopicStatusPending {
		t.Errorf("status after abandon release: got %q, want pending", reloaded.Status)
	}
}

func TestTopicStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewTopicStore(db)

	created, err := s.Create("topic-test-delete")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
	if err := s.MarkUsed(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkUsed missing: expected ErrNotFound, got %v", err)
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// TopicStatus tracks a topic through the generation queue.
//
// pending → claimed → used. A claim is taken atomically by a scheduler run
// before generation starts; it falls back to pending if the run fails or
// the claim is abandoned.
type TopicStatus string

const (
	TopicStatusPending TopicStatus = "pending"
	TopicStatusClaimed TopicStatus = "claimed"
	TopicStatusUsed    TopicStatus = "used"
)

// Topic is a candidate subject awaiting automated article generation.
type Topic struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Status    TopicStatus `json:"status"`
	ClaimedAt *time.Time  `json:"claimed_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nextping/internal/models"
)

const topicColumns = `id, name, status, claimed_at, created_at`

// TopicStore manages the queue of topics awaiting article generation.
// Topics move pending → claimed → used; a failed generation run releases
// the claim back to pending.
type TopicStore struct {
	db *sql.DB
}

// NewTopicStore creates a new TopicStore with the given database connection.
func NewTopicStore(db *sql.DB) *TopicStore {
	return &TopicStore{db: db}
}

func scanTopic(row rowScanner) (*models.Topic, error) {
	t := &models.Topic{}
	err := row.Scan(&t.ID, &t.Name, &t.Status, &t.ClaimedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create adds a topic to the queue in pending status. Duplicate names are
// allowed; each row is consumed independently.
func (s *TopicStore) Create(name string) (*models.Topic, error) {
	t, err := scanTopic(s.db.QueryRow(`
		INSERT INTO topics (name) VALUES ($1)
		RETURNING `+topicColumns, name))
	if err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return t, nil
}

// FindByID retrieves a topic by its UUID. Returns nil if not found.
func (s *TopicStore) FindByID(id uuid.UUID) (*models.Topic, error) {
	t, err := scanTopic(s.db.QueryRow(`
		SELECT `+topicColumns+` FROM topics WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find topic by id: %w", err)
	}
	return t, nil
}

// List returns all topics, optionally filtered by status, oldest first.
func (s *TopicStore) List(status models.TopicStatus) ([]models.Topic, error) {
	q := `SELECT ` + topicColumns + ` FROM topics`
	var args []any
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, *t)
	}
	return topics, rows.Err()
}

// ClaimNext atomically claims the oldest pending topic and returns it.
// Concurrent callers never receive the same topic: the claim happens in a
// single UPDATE guarded by FOR UPDATE SKIP LOCKED. Returns nil when no
// pending topic exists.
func (s *TopicStore) ClaimNext() (*models.Topic, error) {
	t, err := scanTopic(s.db.QueryRow(`
		UPDATE topics SET status = 'claimed', claimed_at = NOW()
		WHERE id = (
			SELECT id FROM topics
			WHERE status = 'pending'
			ORDER BY created_at ASC, id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + topicColumns))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim next topic: %w", err)
	}
	return t, nil
}

// MarkUsed finalizes a claimed topic after its article has been persisted.
// Marking an already used topic is a no-op, so a retried scheduler run
// cannot corrupt the queue.
func (s *TopicStore) MarkUsed(id uuid.UUID) error {
	res, err := s.db.Exec(`
		UPDATE topics SET status = 'used'
		WHERE id = $1 AND status IN ('claimed', 'used')
	`, id)
	if err != nil {
		return fmt.Errorf("mark topic used: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Release returns a claimed topic to pending so a later run can pick it up.
// Used topics are left untouched.
func (s *TopicStore) Release(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE topics SET status = 'pending', claimed_at = NULL
		WHERE id = $1 AND status = 'claimed'
	`, id)
	if err != nil {
		return fmt.Errorf("release topic: %w", err)
	}
	return nil
}

// ReleaseAbandoned returns every topic claimed before the cutoff back to
// pending. It covers scheduler runs that crashed between claiming and
// releasing. Returns the number of topics released.
func (s *TopicStore) ReleaseAbandoned(cutoff time.Time) (int, error) {
	res, err := s.db.Exec(`
		UPDATE topics SET status = 'pending', claimed_at = NULL
		WHERE status = 'claimed' AND claimed_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("release abandoned topics: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Delete removes a topic regardless of status.
func (s *TopicStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPending returns the number of topics still waiting for generation.
func (s *TopicStore) CountPending() (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM topics WHERE status = 'pending'
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending topics: %w", err)
	}
	return n, nil
}

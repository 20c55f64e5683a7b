package store

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"nextping/internal/htmltext"
	"nextping/internal/models"
	"nextping/internal/slug"
)

// psql builds queries with PostgreSQL-style $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const postColumns = `id, title, slug, content, excerpt, cover_image, category, author_id,
	tags, status, featured, read_time, views, publish_date,
	meta_title, meta_description, keywords, created_at, updated_at`

// PostFilter narrows and orders a post listing. Zero values mean "no filter".
type PostFilter struct {
	Status   models.PostStatus
	Category models.Category
	Tag      string
	Featured *bool
	AuthorID uuid.UUID
	Search   string

	// Sort is one of publish_date, created_at, views, title. Anything else
	// falls back to publish_date. Desc defaults to true for date sorts.
	Sort string
	Asc  bool

	Page  int
	Limit int
}

// PostStats aggregates dashboard counters across all posts.
type PostStats struct {
	Total      int `json:"total"`
	Published  int `json:"published"`
	Drafts     int `json:"drafts"`
	TotalViews int `json:"totalViews"`
}

// PostStore handles all blog post database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	p := &models.Post{}
	var tags pq.StringArray
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.CoverImage,
		&p.Category, &p.AuthorID, &tags, &p.Status, &p.Featured,
		&p.ReadTime, &p.Views, &p.PublishedAt,
		&p.SEO.MetaTitle, &p.SEO.MetaDescription, &p.SEO.Keywords,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Tags = tags
	return p, nil
}

// maxSlugLength caps base slugs so generated titles cannot produce
// unwieldy URLs. The uniqueness suffix may push past it slightly.
const maxSlugLength = 80

// uniqueSlug derives a URL slug from the title and appends a short random
// fragment if the base slug is already taken.
func (s *PostStore) uniqueSlug(title string, excludeID uuid.UUID) (string, error) {
	base := slug.Shorten(slug.Generate(title), maxSlugLength)
	if base == "" {
		base = "post"
	}

	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)
	`, base, excludeID).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if !exists {
		return base, nil
	}
	return base + "-" + uuid.NewString()[:8], nil
}

// Create inserts a new post. Slug and read time are derived here: the slug
// comes from the title (with a uniqueness suffix when needed) and the read
// time from the word count of the content.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	sl, err := s.uniqueSlug(p.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	if !p.Category.Valid() {
		p.Category = models.CategoryOther
	}
	if p.Status == "" {
		p.Status = models.PostStatusDraft
	}

	var publishDate *time.Time
	if p.Status == models.PostStatusPublished {
		now := time.Now()
		publishDate = &now
	} else if p.PublishedAt != nil {
		publishDate = p.PublishedAt
	}

	row := s.db.QueryRow(`
		INSERT INTO posts (title, slug, content, excerpt, cover_image, category, author_id,
			tags, status, featured, read_time, publish_date,
			meta_title, meta_description, keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+postColumns,
		p.Title, sl, p.Content, p.Excerpt, p.CoverImage, p.Category, p.AuthorID,
		pq.StringArray(p.Tags), p.Status, p.Featured,
		htmltext.ReadTime(p.Content), publishDate,
		p.SEO.MetaTitle, p.SEO.MetaDescription, p.SEO.Keywords,
	)
	created, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update saves changes to an existing post. The slug is kept stable across
// title edits so published URLs never break. Moving a post into published
// status stamps publish_date if it was never published before.
func (s *PostStore) Update(p *models.Post) (*models.Post, error) {
	row := s.db.QueryRow(`
		UPDATE posts SET
			title = $1, content = $2, excerpt = $3, cover_image = $4,
			category = $5, tags = $6, status = $7, featured = $8,
			read_time = $9,
			publish_date = CASE
				WHEN $7 = 'Published' AND publish_date IS NULL THEN NOW()
				ELSE publish_date
			END,
			meta_title = $10, meta_description = $11, keywords = $12,
			updated_at = NOW()
		WHERE id = $13
		RETURNING `+postColumns,
		p.Title, p.Content, p.Excerpt, p.CoverImage,
		p.Category, pq.StringArray(p.Tags), p.Status, p.Featured,
		htmltext.ReadTime(p.Content),
		p.SEO.MetaTitle, p.SEO.MetaDescription, p.SEO.Keywords,
		p.ID,
	)
	updated, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

// Delete removes a post by ID.
func (s *PostStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by its slug. When publishedOnly is true,
// drafts and scheduled posts are treated as not found. Returns nil if
// not found.
func (s *PostStore) FindBySlug(slugStr string, publishedOnly bool) (*models.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE slug = $1`
	if publishedOnly {
		q += ` AND status = 'Published'`
	}
	p, err := scanPost(s.db.QueryRow(q, slugStr))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// IncrementViews bumps the view counter for a post.
func (s *PostStore) IncrementViews(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE posts SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// SetFeatured toggles the featured flag on a post.
func (s *PostStore) SetFeatured(id uuid.UUID, featured bool) error {
	res, err := s.db.Exec(`
		UPDATE posts SET featured = $1, updated_at = NOW() WHERE id = $2
	`, featured, id)
	if err != nil {
		return fmt.Errorf("set featured: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of posts matching the filter plus the total number of
// matches before pagination.
func (s *PostStore) List(f PostFilter) ([]models.Post, int, error) {
	conds := f.conditions()

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("posts").Where(conds).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := s.db.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	query, args, err := psql.Select(postColumns).From("posts").
		Where(conds).
		OrderBy(f.orderBy()).
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}

func (f PostFilter) conditions() sq.And {
	conds := sq.And{}
	if f.Status != "" {
		conds = append(conds, sq.Eq{"status": f.Status})
	}
	if f.Category != "" {
		conds = append(conds, sq.Eq{"category": f.Category})
	}
	if f.Tag != "" {
		conds = append(conds, sq.Expr("tags @> ARRAY[?]::text[]", f.Tag))
	}
	if f.Featured != nil {
		conds = append(conds, sq.Eq{"featured": *f.Featured})
	}
	if f.AuthorID != uuid.Nil {
		conds = append(conds, sq.Eq{"author_id": f.AuthorID})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"excerpt": pattern},
			sq.ILike{"content": pattern},
			sq.Expr("array_to_string(tags, ' ') ILIKE ?", pattern),
		})
	}
	if len(conds) == 0 {
		conds = append(conds, sq.Expr("TRUE"))
	}
	return conds
}

func (f PostFilter) orderBy() string {
	col := "publish_date"
	switch f.Sort {
	case "created_at", "views", "title", "publish_date":
		col = f.Sort
	}
	dir := "DESC"
	if f.Asc {
		dir = "ASC"
	}
	// Secondary key keeps pagination stable when the sort column ties.
	return fmt.Sprintf("%s %s NULLS LAST, id %s", col, dir, dir)
}

// Related returns up to limit published posts sharing the category or at
// least one tag with the given post, newest first. The post itself is
// excluded.
func (s *PostStore) Related(p *models.Post, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := s.db.Query(`
		SELECT `+postColumns+` FROM posts
		WHERE status = 'Published' AND id <> $1
		  AND (category = $2 OR tags && $3)
		ORDER BY publish_date DESC NULLS LAST
		LIMIT $4
	`, p.ID, p.Category, pq.StringArray(p.Tags), limit)
	if err != nil {
		return nil, fmt.Errorf("related posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		rp, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan related post: %w", err)
		}
		posts = append(posts, *rp)
	}
	return posts, rows.Err()
}

// Stats returns aggregate counters for the admin dashboard.
func (s *PostStore) Stats() (*PostStats, error) {
	st := &PostStats{}
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'Published'),
		       COUNT(*) FILTER (WHERE status = 'Draft'),
		       COALESCE(SUM(views), 0)
		FROM posts
	`).Scan(&st.Total, &st.Published, &st.Drafts, &st.TotalViews)
	if err != nil {
		return nil, fmt.Errorf("post stats: %w", err)
	}
	return st, nil
}

// CategoryCounts returns the number of published posts per category,
// omitting empty categories.
func (s *PostStore) CategoryCounts() (map[models.Category]int, error) {
	rows, err := s.db.Query(`
		SELECT category, COUNT(*) FROM posts
		WHERE status = 'Published'
		GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Category]int)
	for rows.Next() {
		var c models.Category
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[c] = n
	}
	return counts, rows.Err()
}

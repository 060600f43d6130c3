package repository

import (
	"database/sql"

	"telyourstory/internal/story/model"
	"telyourstory/pkg/logger"

	"github.com/lib/pq"
)

type StoryRepository struct {
	DB *sql.DB
}

func NewStoryRepository(db *sql.DB) *StoryRepository {
	return &StoryRepository{DB: db}
}

// Insert creates a new story. created_at is assigned by the server clock and
// never written again; updated_at stays NULL until the first edit.
func (r *StoryRepository) Insert(id string, p model.StoryPayload) error {
	_, err := r.DB.Exec(`INSERT INTO stories (id, title, content, excerpt, author, author_id, category, tags, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NOW())`,
		id, p.Title, p.Content, p.Excerpt, p.Author, p.AuthorID, p.Category.String(), pq.Array(p.Tags), p.Image)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert story %s: %v", id, err)
	}
	return err
}

// Update replaces the publish payload fields at id. author_id and created_at
// are deliberately absent from the SET list; they are immutable.
// Returns sql.ErrNoRows when the story does not exist.
func (r *StoryRepository) Update(id string, p model.StoryPayload) error {
	result, err := r.DB.Exec(`UPDATE stories SET title = $1, content = $2, excerpt = $3, author = $4, category = $5, tags = $6, image = NULLIF($7, ''), updated_at = NOW()
		WHERE id = $8`,
		p.Title, p.Content, p.Excerpt, p.Author, p.Category.String(), pq.Array(p.Tags), p.Image, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to update story %s: %v", id, err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *StoryRepository) GetByID(id string) (model.Story, error) {
	row := r.DB.QueryRow(`SELECT id, title, content, excerpt, author, author_id, category, tags, image, created_at, updated_at
		FROM stories WHERE id = $1`, id)
	s, err := scanStory(row)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get story %s: %v", id, err)
	}
	return s, err
}

// ListByCreatedDesc returns all story summaries, newest first, with the id as
// a stable tie-break for equal timestamps. Content is not selected; the
// browse view renders excerpts only.
func (r *StoryRepository) ListByCreatedDesc() ([]model.Story, error) {
	rows, err := r.DB.Query(`SELECT id, title, excerpt, author, author_id, category, tags, image, created_at, updated_at
		FROM stories ORDER BY created_at DESC, id`)
	if err != nil {
		logger.Sugar.Errorf("Failed to list stories: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stories []model.Story
	for rows.Next() {
		var (
			s         model.Story
			tags      pq.StringArray
			image     sql.NullString
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Excerpt, &s.Author, &s.AuthorID, &s.Category, &tags, &image, &s.CreatedAt, &updatedAt); err != nil {
			logger.Sugar.Errorf("Failed to scan story row: %v", err)
			continue
		}
		s.Tags = []string(tags)
		s.Image = image.String
		if updatedAt.Valid {
			t := updatedAt.Time
			s.UpdatedAt = &t
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

func scanStory(row *sql.Row) (model.Story, error) {
	var (
		s         model.Story
		tags      pq.StringArray
		image     sql.NullString
		updatedAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.Title, &s.Content, &s.Excerpt, &s.Author, &s.AuthorID, &s.Category, &tags, &image, &s.CreatedAt, &updatedAt)
	if err != nil {
		return model.Story{}, err
	}
	s.Tags = []string(tags)
	s.Image = image.String
	if updatedAt.Valid {
		t := updatedAt.Time
		s.UpdatedAt = &t
	}
	return s, nil
}

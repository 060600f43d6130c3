package model

import "time"

// ExcerptRunes is how much of the content survives into the excerpt.
const ExcerptRunes = 150

const ellipsisMarker = "..."

type Category string

const (
	CategoryLife      Category = "Life"
	CategoryAdventure Category = "Adventure"
	CategoryCareer    Category = "Career"
	CategoryFamily    Category = "Family"
	CategoryLove      Category = "Love"
)

// CategoryAll is a filter sentinel for the browse view. It is never stored.
const CategoryAll = "All"

var AllCategories = []Category{
	CategoryLife,
	CategoryAdventure,
	CategoryCareer,
	CategoryFamily,
	CategoryLove,
}

func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory maps free-form input onto the enum, defaulting to Life.
func ParseCategory(s string) Category {
	c := Category(s)
	if !c.IsValid() {
		return CategoryLife
	}
	return c
}

// Story is the persisted record. AuthorID is set once at creation and never
// changed; Excerpt is always derived from Content, never authored directly.
type Story struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content,omitempty"`
	Excerpt   string     `json:"excerpt"`
	Author    string     `json:"author"`
	AuthorID  string     `json:"author_id"`
	Category  Category   `json:"category"`
	Tags      []string   `json:"tags"`
	Image     string     `json:"image,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// StoryPayload is the set of fields a publish writes. The repository decides
// which of them apply to an insert versus a partial update.
type StoryPayload struct {
	Title    string
	Content  string
	Excerpt  string
	Author   string
	AuthorID string
	Category Category
	Tags     []string
	Image    string
}

// LocalImage is a newly chosen cover that has not been uploaded yet.
type LocalImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Draft is the in-memory composition of a story before publish. TargetID is
// set when the draft edits an existing story; ExistingImageURL carries an
// unedited cover through an edit.
type Draft struct {
	TargetID         string
	Title            string
	Content          string
	Category         Category
	LocalImage       *LocalImage
	ExistingImageURL string
}

// Session is the resolved authentication identity, passed explicitly into
// every operation that needs it. A zero Session is anonymous.
type Session struct {
	UserID string
	Name   string
}

func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// DisplayName falls back to a literal when the session exposes no name.
func (s Session) DisplayName() string {
	if s.Name == "" {
		return "Anonymous"
	}
	return s.Name
}

// PublishResult reports which story a publish landed on.
type PublishResult struct {
	StoryID string `json:"story_id"`
	Created bool   `json:"created"`
}

// Excerpt derives the preview text: the first ExcerptRunes runes of content
// followed by an ellipsis. Counting runes keeps multibyte characters whole.
func Excerpt(content string) string {
	r := []rune(content)
	if len(r) > ExcerptRunes {
		r = r[:ExcerptRunes]
	}
	return string(r) + ellipsisMarker
}

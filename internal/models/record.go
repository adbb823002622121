package models

import "time"

// Record statuses stored in the content tables.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Body formats of database records.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// DbContentRecord is a row from the blog_posts or case_studies table.
type DbContentRecord struct {
	ID            string     `json:"id" yaml:"id" db:"id"`
	Collection    Collection `json:"collection" yaml:"collection" db:"-"`
	Title         string     `json:"title" yaml:"title" db:"title"`
	Slug          string     `json:"slug" yaml:"slug" db:"slug"`
	Excerpt       string     `json:"excerpt,omitempty" yaml:"excerpt,omitempty" db:"excerpt"`
	Content       string     `json:"content" yaml:"content" db:"content"`
	ContentFormat string     `json:"content_format,omitempty" yaml:"content_format,omitempty" db:"content_format"`
	CoverImage    string     `json:"cover_image,omitempty" yaml:"cover_image,omitempty" db:"cover_image"`
	Lang          Locale     `json:"lang" yaml:"lang" db:"lang"`
	Tags          []string   `json:"tags,omitempty" yaml:"tags,omitempty" db:"tags"`
	Status        string     `json:"status" yaml:"status" db:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty" db:"published_at"`
	CreatedAt     time.Time  `json:"created_at" yaml:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" yaml:"updated_at" db:"updated_at"`

	// Case study extensions.
	Client   string   `json:"client,omitempty" yaml:"client,omitempty" db:"client"`
	Sector   string   `json:"sector,omitempty" yaml:"sector,omitempty" db:"sector"`
	Services []string `json:"services,omitempty" yaml:"services,omitempty" db:"services"`
}

// IsPublished reports whether the record is in published status.
func (r *DbContentRecord) IsPublished() bool {
	return r.Status == StatusPublished
}

// EffectiveDate returns published_at when set, created_at otherwise.
func (r *DbContentRecord) EffectiveDate() time.Time {
	if r.PublishedAt != nil && !r.PublishedAt.IsZero() {
		return *r.PublishedAt
	}
	return r.CreatedAt
}

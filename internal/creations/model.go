package creations

import "time"

// Type is the closed enumeration of creation kinds.
type Type string

const (
	TypeArticle      Type = "article"
	TypeBlogTitle    Type = "blog-title"
	TypeImage        Type = "image"
	TypeResumeReview Type = "resume-review"
)

// Valid reports whether t is a known creation type.
func (t Type) Valid() bool {
	switch t {
	case TypeArticle, TypeBlogTitle, TypeImage, TypeResumeReview:
		return true
	}
	return false
}

// Creation is one persisted record of a generation event. Rows are
// immutable once written except for Publish and Likes.
type Creation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Prompt    string    `json:"prompt"`
	Content   string    `json:"content"`
	Type      Type      `json:"type"`
	Publish   bool      `json:"publish"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// Draft is the insertable part of a creation, assembled by the handler
// before the generation backend runs.
type Draft struct {
	Prompt  string
	Type    Type
	Publish bool
}

// Gate selects how an operation is entitlement-checked.
type Gate int

const (
	// GateUsageCounted operations spend the free usage counter; premium
	// plans bypass the counter entirely.
	GateUsageCounted Gate = iota
	// GatePremiumOnly operations require a premium plan regardless of
	// remaining usage.
	GatePremiumOnly
)

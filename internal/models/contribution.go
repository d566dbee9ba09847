package models

import (
	"time"

	"github.com/google/uuid"
)

// ContributionType is the category of a community contribution.
type ContributionType string

const (
	ContributionResearch    ContributionType = "research"
	ContributionDataset     ContributionType = "dataset"
	ContributionMethodology ContributionType = "methodology"
	ContributionCommunity   ContributionType = "community"
)

// ContributionTypeAll selects every type in listing filters.
const ContributionTypeAll = "all"

// ContributionTypes lists the types in display order.
var ContributionTypes = []ContributionType{
	ContributionResearch, ContributionDataset, ContributionMethodology, ContributionCommunity,
}

// Valid reports whether t is one of the fixed types.
func (t ContributionType) Valid() bool {
	for _, known := range ContributionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label is the display name of the type.
func (t ContributionType) Label() string {
	switch t {
	case ContributionResearch:
		return "Research Paper"
	case ContributionDataset:
		return "Dataset"
	case ContributionMethodology:
		return "Methodology"
	case ContributionCommunity:
		return "Community Tool"
	}
	return string(t)
}

// Contribution is a community-submitted record. ID and CreatedAt are assigned
// by the store; records are never updated or deleted.
type Contribution struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	Title       string           `db:"title" json:"title"`
	Description string           `db:"description" json:"description"`
	Type        ContributionType `db:"type" json:"type"`
	GithubURL   *string          `db:"github_url" json:"githubUrl,omitempty"`
	PaperURL    *string          `db:"paper_url" json:"paperUrl,omitempty"`
	DatasetURL  *string          `db:"dataset_url" json:"datasetUrl,omitempty"`
	AuthorName  string           `db:"author_name" json:"authorName"`
	AuthorEmail string           `db:"author_email" json:"authorEmail"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
}

// ContactMessage is a message sent through the contact form.
type ContactMessage struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Package models defines the data types shared by repositories, services, and handlers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Course represents a single course in the catalog.
// Embedding, EmbeddingHash, and EmbeddingUpdatedAt are set together by the
// embedding worker or remain null together; no other writer touches them.
type Course struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        *string    `json:"description,omitempty"`
	Category           *string    `json:"category,omitempty"`
	Tags               []string   `json:"tags"`
	Embedding          []float32  `json:"-"`
	EmbeddingHash      *string    `json:"-"`
	EmbeddingUpdatedAt *time.Time `json:"embedding_updated_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateCourseRequest represents the request to create a course.
type CreateCourseRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateCourseRequest represents the request to update a course.
// Nil fields are left unchanged.
type UpdateCourseRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// CourseWithScore is a course plus its similarity score from a semantic search.
// Score is 1 - cosine distance, in (threshold, 1].
type CourseWithScore struct {
	Course
	Similarity float64 `json:"similarity"`
}

// EmbeddingUpdate is one entry of a batch embedding write.
type EmbeddingUpdate struct {
	CourseID  uuid.UUID
	Embedding []float32
	Hash      string
}

// EmbeddingStats summarizes embedding coverage of the catalog.
type EmbeddingStats struct {
	Total            int64      `json:"total"`
	WithEmbedding    int64      `json:"withEmbedding"`    //nolint:tagliatelle // API contract
	WithoutEmbedding int64      `json:"withoutEmbedding"` //nolint:tagliatelle // API contract
	LastUpdated      *time.Time `json:"lastUpdated"`      //nolint:tagliatelle // API contract
}

// Package types provides type definitions for the job board data exchanged with the remote API.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// JobPosting is a recruiter-authored job record. ID is assigned by the server.
type JobPosting struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PostingInput is the request body for creating or updating a posting.
type PostingInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// NewPostingInput returns an input with surrounding whitespace removed.
func NewPostingInput(title, description string) PostingInput {
	return PostingInput{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}
}

// Validate validates the PostingInput using the validator.
func (in *PostingInput) Validate() error {
	validate := validator.New()
	return validate.Struct(in)
}

// Input returns the editable fields of the posting.
func (p JobPosting) Input() PostingInput {
	return PostingInput{Title: p.Title, Description: p.Description}
}

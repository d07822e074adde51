package dto

import (
	"github.com/noah-isme/exam-logistics-api/internal/models"
	"github.com/noah-isme/exam-logistics-api/internal/roster"
)

// RosterRequest carries roster input in exactly one of three shapes: ordered rows,
// header->value records, or free text with one student per line.
type RosterRequest struct {
	Rows          [][]string          `json:"rows"`
	Records       []map[string]string `json:"records"`
	Fields        []string            `json:"fields"`
	Text          string              `json:"text"`
	HeaderPresent *bool               `json:"headerPresent"`
	Mapping       *roster.Mapping     `json:"mapping"`
	Duplicates    string              `json:"duplicates" validate:"omitempty,oneof=keep reject merge"`
	Existing      []StudentPayload    `json:"existing" validate:"omitempty,dive"`
}

// StudentPayload is a student supplied directly by the client.
type StudentPayload struct {
	ID     string `json:"id" validate:"required,max=64"`
	Name   string `json:"name" validate:"max=200"`
	Branch string `json:"branch" validate:"max=100"`
}

// RosterUploadOptions are the multipart form fields accompanying a roster file.
type RosterUploadOptions struct {
	HeaderPresent *bool  `form:"headerPresent"`
	IDColumn      string `form:"idColumn"`
	NameColumn    string `form:"nameColumn"`
	BranchColumn  string `form:"branchColumn"`
	Duplicates    string `form:"duplicates" validate:"omitempty,oneof=keep reject merge"`
}

// RosterResponse is the built roster plus diagnostics about the parse.
type RosterResponse struct {
	Students      []models.Student `json:"students"`
	Count         int              `json:"count"`
	HeaderPresent bool             `json:"headerPresent"`
	Columns       roster.Columns   `json:"columns"`
	SkippedRows   []int            `json:"skippedRows"`
	Duplicates    []string         `json:"duplicates,omitempty"`
}

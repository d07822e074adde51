package dto

import "github.com/noah-isme/exam-logistics-api/internal/models"

// InvigilatorPayload is one invigilator. Missing ids are assigned I1..In.
type InvigilatorPayload struct {
	ID   string `json:"id" validate:"max=64"`
	Name string `json:"name" validate:"max=200"`
}

// SessionPayload is one exam session. Required defaults to one invigilator.
type SessionPayload struct {
	ID       string `json:"id" validate:"max=64"`
	Exam     string `json:"exam" validate:"max=200"`
	Room     string `json:"room" validate:"max=120"`
	Time     string `json:"time" validate:"max=120"`
	Required *int   `json:"required" validate:"omitempty,min=0,max=50"`
}

// AllocateDutiesRequest carries invigilators and sessions, structured or as text lines.
type AllocateDutiesRequest struct {
	Invigilators     []InvigilatorPayload `json:"invigilators" validate:"omitempty,dive"`
	InvigilatorsText string               `json:"invigilatorsText"`
	Sessions         []SessionPayload     `json:"sessions" validate:"omitempty,dive"`
	SessionsText     string               `json:"sessionsText"`
	Title            string               `json:"title" validate:"max=160"`
}

// AllocateDutiesResponse returns the duty roster and staffing warnings.
type AllocateDutiesResponse struct {
	Roster   models.DutyRoster `json:"roster"`
	Warnings []string          `json:"warnings"`
}

package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/constants"
)

// DocumentAnalysis is a stored pipeline run over one uploaded document.
// FieldsJSON carries the StructuredFields blob exactly as serialized at
// analysis time.
type DocumentAnalysis struct {
	ID              uuid.UUID                `json:"id"`
	UserID          uuid.UUID                `json:"user_id"`
	Filename        string                   `json:"filename"`
	FilePath        string                   `json:"file_path"`
	FileExt         string                   `json:"file_ext"`
	FileSize        int64                    `json:"file_size"`
	ContentHash     string                   `json:"content_hash"`
	Category        constants.Category       `json:"category"`
	Confidence      float32                  `json:"confidence"`
	Extractor       string                   `json:"extractor,omitempty"`
	RawText         string                   `json:"raw_text,omitempty"`
	FieldsJSON      []byte                   `json:"fields_json,omitempty"`
	Summary         string                   `json:"summary,omitempty"`
	Recommendations []string                 `json:"recommendations,omitempty"`
	SummarySource   string                   `json:"summary_source,omitempty"`
	Tags            []string                 `json:"tags,omitempty"`
	Warnings        []string                 `json:"warnings,omitempty"`
	Status          constants.AnalysisStatus `json:"status"`
	ErrorCode       *string                  `json:"error_code,omitempty"`
	ErrorMessage    *string                  `json:"error_message,omitempty"`
	AnalyzedAt      *time.Time               `json:"analyzed_at,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

// SearchHit is one scored match from a document search.
type SearchHit struct {
	Document *DocumentAnalysis `json:"document"`
	Score    float64           `json:"score"`
}

// AnalysisStats summarizes a user's stored documents.
type AnalysisStats struct {
	Total         int            `json:"total"`
	ByCategory    map[string]int `json:"by_category"`
	ByStatus      map[string]int `json:"by_status"`
	AvgConfidence float64        `json:"avg_confidence"`
	TotalBytes    int64          `json:"total_bytes"`
	LastUploadAt  *time.Time     `json:"last_upload_at,omitempty"`
}

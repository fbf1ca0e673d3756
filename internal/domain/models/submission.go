package models

import (
	"io"
	"time"
)

type Submission struct {
	ID        int64             `json:"id" db:"id"`
	FormID    int64             `json:"form_id" db:"form_id"`
	Content   map[string]string `json:"content" db:"content"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// SubmissionWithForm is a submission joined with its parent form title,
// used by the dashboard's recent activity list.
type SubmissionWithForm struct {
	Submission
	FormTitle string `json:"form_title"`
}

// Attachment is one uploaded file part of a submission.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Empty reports whether the respondent left the file input blank.
func (a Attachment) Empty() bool {
	return a.Size == 0
}

// UploadedFile is what the upload collaborator returns for one attachment.
type UploadedFile struct {
	URL      string `json:"secure_url"`
	PublicID string `json:"public_id"`
}

// Dashboard aggregates an owner's forms and submission activity.
type Dashboard struct {
	DraftForms        []Form               `json:"draft_forms"`
	PublishedForms    []Form               `json:"published_forms"`
	DraftCount        int                  `json:"draft_count"`
	PublishedCount    int                  `json:"published_count"`
	SubmissionCount   int                  `json:"submission_count"`
	RecentSubmissions []SubmissionWithForm `json:"recent_submissions"`
}

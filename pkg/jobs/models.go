package jobs

import (
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
	JobStatusCancelled  = "cancelled"
)

const (
	JobTypeImportFiles    = "import_files"
	JobTypeImportIfiction = "import_ifiction"
	JobTypeRemoveStories  = "remove_stories"
)

// JobImportFilesData drives a batch file scan. Errors accumulates per-file
// failure messages; a failed file never aborts the batch.
type JobImportFilesData struct {
	Paths         []string `json:"paths"`
	FetchMetadata *bool    `json:"fetch_metadata,omitempty"`
	FetchCoverArt *bool    `json:"fetch_cover_art,omitempty"`
	Added         int      `json:"added"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors,omitempty"`
}

// JobImportIfictionData drives an interchange-document import. The document
// is carried inline; one step per story node.
type JobImportIfictionData struct {
	XML           string   `json:"xml"`
	FetchCoverArt *bool    `json:"fetch_cover_art,omitempty"`
	Added         int      `json:"added"`
	Errors        []string `json:"errors,omitempty"`
}

// JobRemoveStoriesData drives a batch removal, one step per story.
type JobRemoveStoriesData struct {
	StoryIDs []int    `json:"story_ids"`
	Errors   []string `json:"errors,omitempty"`
}

// unmarshalData fills in the typed view of a job's data payload.
func unmarshalData(job *models.Job) error {
	switch job.Type {
	case JobTypeImportFiles:
		job.DataParsed = &JobImportFilesData{}
	case JobTypeImportIfiction:
		job.DataParsed = &JobImportIfictionData{}
	case JobTypeRemoveStories:
		job.DataParsed = &JobRemoveStoriesData{}
	default:
		return nil
	}

	if job.Data == "" {
		return nil
	}
	return errors.WithStack(json.Unmarshal([]byte(job.Data), job.DataParsed))
}

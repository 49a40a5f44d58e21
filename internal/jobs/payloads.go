package jobs

import "encoding/json"

// Job types processed by the worker
const (
	TypeRepoSync      = "repo_sync"
	TypeReviewAnalyze = "review_analyze"
)

// RepoSyncPayload carries a repository sync job
type RepoSyncPayload struct {
	RepoID string `json:"repo_id"`
}

// ReviewAnalyzePayload carries a review analysis job
type ReviewAnalyzePayload struct {
	SubmissionID string `json:"submission_id"`
}

// MarshalPayload encodes a job payload for storage
func MarshalPayload(payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

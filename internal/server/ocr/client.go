// Package ocr adapts the external asynchronous text-detection service. A
// job is submitted against a stored blob, then polled until it leaves the
// in-progress state; line blocks from a succeeded job are concatenated into
// plain text.
package ocr

import "context"

// JobStatus is the coarse state of an extraction job.
type JobStatus string

const (
	JobInProgress JobStatus = "in_progress"
	JobSucceeded  JobStatus = "succeeded"
	JobFailed     JobStatus = "failed"
)

// JobResult is one poll observation. Text is only meaningful once Status
// is JobSucceeded; it holds every detected line followed by a newline, in
// the order the service returned them.
type JobResult struct {
	Status JobStatus
	Text   string
}

// JobClient is the boundary to the async OCR service.
type JobClient interface {
	// Submit starts a text-detection job for the blob stored under key and
	// returns the job identifier.
	Submit(ctx context.Context, key string) (string, error)

	// Poll reports the current state of a job, including extracted text
	// when the job has succeeded.
	Poll(ctx context.Context, jobID string) (*JobResult, error)
}

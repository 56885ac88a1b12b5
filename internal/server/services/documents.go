package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/dkrylov/medvault/internal/common"
	"github.com/dkrylov/medvault/internal/logging"
	sc "github.com/dkrylov/medvault/internal/server/config"
	"github.com/dkrylov/medvault/internal/server/models"
	"github.com/dkrylov/medvault/internal/server/ocr"
	"github.com/dkrylov/medvault/internal/server/repositories/repomanager"
	"github.com/dkrylov/medvault/internal/server/storage"
)

const (
	// MaxFileSize is the upload size limit, 10 MiB.
	MaxFileSize = 10 * 1024 * 1024

	// AllowedContentType is the single accepted document type.
	AllowedContentType = "application/pdf"

	// DocumentSeparator delimits per-document text inside the combined
	// corpus. It appears after every successfully extracted document.
	DocumentSeparator = "\n--- Document Separator ---\n"

	metaPhoneNumber  = "phone-number"
	metaOriginalName = "original-name"
)

var errJobStillRunning = errors.New("ocr job still in progress")

// FileUpload carries one incoming document.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadResult reports where the document was stored and how extraction
// went for every document the user now has.
type UploadResult struct {
	Key         string
	Extractions []models.ExtractionResult
}

// DocumentService orchestrates the ingestion pipeline: validate the upload,
// store the blob, re-extract text from every document the user owns,
// aggregate and persist the combined corpus. Deletion runs the same rebuild
// over the remaining documents. Mutations are serialized per phone number.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       storage.BlobStore
	jobs        ocr.JobClient
	logger      logging.Logger
	locks       *keyMutex

	pollInterval time.Duration
	pollTimeout  time.Duration
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore,
	jobs ocr.JobClient, logger logging.Logger, cfg *sc.Config) *DocumentService {
	return &DocumentService{
		db:           db,
		repomanager:  m,
		blobs:        blobs,
		jobs:         jobs,
		logger:       logger,
		locks:        newKeyMutex(),
		pollInterval: cfg.OCRPollInterval,
		pollTimeout:  cfg.OCRPollTimeout,
	}
}

// Upload runs the full ingestion pipeline for one document.
func (s *DocumentService) Upload(ctx context.Context, phoneNumber string, file FileUpload) (*UploadResult, error) {
	if err := validateUpload(file); err != nil {
		return nil, err
	}

	s.locks.Lock(phoneNumber)
	defer s.locks.Unlock(phoneNumber)

	key := storageKey(phoneNumber, file.Name)

	err := s.blobs.Put(ctx, key, file.Data, AllowedContentType, map[string]string{
		metaPhoneNumber:  phoneNumber,
		metaOriginalName: file.Name,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "document stored", "phone", phoneNumber, "key", key)

	extractions, err := s.rebuildCorpus(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}

	return &UploadResult{Key: key, Extractions: extractions}, nil
}

// Delete removes one owned document and rebuilds the corpus from the
// remainder. A blob owned by someone else is left untouched and the call
// fails with common.ErrorForbidden.
func (s *DocumentService) Delete(ctx context.Context, phoneNumber, key string) ([]models.ExtractionResult, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: file name is required", common.ErrorValidation)
	}

	s.locks.Lock(phoneNumber)
	defer s.locks.Unlock(phoneNumber)

	metadata, err := s.blobs.Head(ctx, key)
	if err != nil {
		return nil, err
	}

	if metadata[metaPhoneNumber] != phoneNumber {
		return nil, common.ErrorForbidden
	}

	if err := s.blobs.Delete(ctx, key); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "document deleted", "phone", phoneNumber, "key", key)

	return s.rebuildCorpus(ctx, phoneNumber)
}

// List returns the documents owned by phoneNumber. An empty result is
// valid, not an error.
func (s *DocumentService) List(ctx context.Context, phoneNumber string) ([]models.DocumentInfo, error) {
	owned, err := s.listOwned(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}

	docs := make([]models.DocumentInfo, 0, len(owned))
	for _, obj := range owned {
		docs = append(docs, models.DocumentInfo{
			Key:  obj.Key,
			Name: originalName(obj),
		})
	}

	return docs, nil
}

func validateUpload(file FileUpload) error {
	if file.Name == "" || len(file.Data) == 0 {
		return fmt.Errorf("%w: no file provided", common.ErrorValidation)
	}
	if file.ContentType != AllowedContentType {
		return fmt.Errorf("%w: invalid file type, only PDFs are allowed", common.ErrorValidation)
	}
	if len(file.Data) > MaxFileSize {
		return fmt.Errorf("%w: file size exceeds the limit of %dMB", common.ErrorValidation, MaxFileSize/(1024*1024))
	}
	return nil
}

// storageKey namespaces blobs per user and makes every upload unique, so
// two users (or two uploads) with the same filename can never collide.
func storageKey(phoneNumber, name string) string {
	return fmt.Sprintf("%s/%s-%s", phoneNumber, uuid.New(), name)
}

func originalName(obj storage.ObjectInfo) string {
	if name := obj.Metadata[metaOriginalName]; name != "" {
		return name
	}
	// older blobs may predate the original-name tag
	if i := strings.LastIndex(obj.Key, "/"); i >= 0 {
		return obj.Key[i+1:]
	}
	return obj.Key
}

func (s *DocumentService) listOwned(ctx context.Context, phoneNumber string) ([]storage.ObjectInfo, error) {
	objects, err := s.blobs.List(ctx)
	if err != nil {
		return nil, err
	}

	var owned []storage.ObjectInfo
	for _, obj := range objects {
		if obj.Metadata[metaPhoneNumber] == phoneNumber {
			owned = append(owned, obj)
		}
	}

	return owned, nil
}

// rebuildCorpus re-extracts text from every document the user currently
// owns and replaces the persisted corpus wholesale. The full rescan keeps
// the corpus exactly in step with the live blob set. A document whose
// extraction fails contributes nothing and is reported in its result tag;
// it never aborts the rebuild.
func (s *DocumentService) rebuildCorpus(ctx context.Context, phoneNumber string) ([]models.ExtractionResult, error) {
	owned, err := s.listOwned(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	results := make([]models.ExtractionResult, 0, len(owned))

	for _, obj := range owned {
		result := s.extractDocument(ctx, obj)
		if result.Status == models.ExtractionOK {
			sb.WriteString(result.Text)
			sb.WriteString(DocumentSeparator)
		} else {
			s.logger.Warn(ctx, "document extraction failed",
				"phone", phoneNumber, "key", obj.Key, "reason", result.Reason)
		}
		results = append(results, result)
	}

	corpus := &models.Corpus{PhoneNumber: phoneNumber, CombinedText: sb.String()}
	if err := s.repomanager.Corpora(s.db).Upsert(ctx, corpus); err != nil {
		return nil, fmt.Errorf("corpus save: %w", err)
	}

	s.logger.Info(ctx, "corpus rebuilt", "phone", phoneNumber, "documents", len(owned))

	return results, nil
}

// extractDocument runs one submit–poll–collect cycle against the OCR
// service. Polling is bounded: a job that stays in progress past the
// configured timeout is reported as a failed extraction.
func (s *DocumentService) extractDocument(ctx context.Context, obj storage.ObjectInfo) models.ExtractionResult {
	result := models.ExtractionResult{
		Key:    obj.Key,
		Name:   originalName(obj),
		Status: models.ExtractionFailed,
	}

	jobID, err := s.jobs.Submit(ctx, obj.Key)
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	s.logger.Debug(ctx, "ocr job started", "key", obj.Key, "job_id", jobID)

	var jobResult *ocr.JobResult

	backoff := retry.WithMaxDuration(s.pollTimeout, retry.NewConstant(s.pollInterval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := s.jobs.Poll(ctx, jobID)
		if err != nil {
			return err
		}
		if r.Status == ocr.JobInProgress {
			return retry.RetryableError(errJobStillRunning)
		}
		jobResult = r
		return nil
	})
	if err != nil {
		if errors.Is(err, errJobStillRunning) {
			result.Reason = fmt.Sprintf("ocr job timed out after %s", s.pollTimeout)
		} else {
			result.Reason = err.Error()
		}
		return result
	}

	if jobResult.Status != ocr.JobSucceeded {
		result.Reason = "ocr job failed"
		return result
	}

	result.Status = models.ExtractionOK
	result.Text = jobResult.Text
	return result
}

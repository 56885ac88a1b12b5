package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkrylov/medvault/internal/common"
	"github.com/dkrylov/medvault/internal/server/models"
)

func newTestDocumentService() (*DocumentService, *fakeRepoManager, *fakeBlobStore, *fakeJobClient) {
	rm := newFakeRepoManager()
	blobs := newFakeBlobStore()
	jobs := newFakeJobClient()
	svc := NewDocumentService(nil, rm, blobs, jobs, testLogger(), testConfig())
	return svc, rm, blobs, jobs
}

func pdfUpload(name string, size int) FileUpload {
	return FileUpload{
		Name:        name,
		ContentType: AllowedContentType,
		Data:        bytes.Repeat([]byte("x"), size),
	}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name string
		file FileUpload
		want string
	}{
		{
			name: "missing file",
			file: FileUpload{},
			want: "no file provided",
		},
		{
			name: "wrong content type",
			file: FileUpload{Name: "a.txt", ContentType: "text/plain", Data: []byte("hi")},
			want: "only PDFs",
		},
		{
			// the type check runs before the size check
			name: "oversized non-pdf reports the type error",
			file: FileUpload{Name: "big.txt", ContentType: "text/plain", Data: bytes.Repeat([]byte("x"), MaxFileSize+1)},
			want: "only PDFs",
		},
		{
			name: "oversized pdf",
			file: pdfUpload("big.pdf", MaxFileSize+1),
			want: "file size exceeds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUpload(tt.file)
			require.ErrorIs(t, err, common.ErrorValidation)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, validateUpload(pdfUpload("ok.pdf", MaxFileSize)))
}

func TestDocumentServiceUpload(t *testing.T) {
	svc, rm, blobs, jobs := newTestDocumentService()
	ctx := context.Background()

	jobs.texts["report.pdf"] = "patient text"

	result, err := svc.Upload(ctx, "+15551234567", pdfUpload("report.pdf", 128))
	require.NoError(t, err)

	// keys are namespaced per user and keep the original filename
	assert.True(t, strings.HasPrefix(result.Key, "+15551234567/"))
	assert.True(t, strings.HasSuffix(result.Key, "-report.pdf"))

	metadata, err := blobs.Head(ctx, result.Key)
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", metadata[metaPhoneNumber])
	assert.Equal(t, "report.pdf", metadata[metaOriginalName])

	require.Len(t, result.Extractions, 1)
	assert.Equal(t, models.ExtractionOK, result.Extractions[0].Status)

	corpus, err := rm.corpusRepo.GetByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "patient text"+DocumentSeparator, corpus.CombinedText)
}

func TestDocumentServiceUploadAggregatesAllDocuments(t *testing.T) {
	svc, rm, _, jobs := newTestDocumentService()
	ctx := context.Background()

	jobs.texts["first.pdf"] = "first text"
	jobs.texts["second.pdf"] = "second text"

	_, err := svc.Upload(ctx, "+15551234567", pdfUpload("first.pdf", 64))
	require.NoError(t, err)

	result, err := svc.Upload(ctx, "+15551234567", pdfUpload("second.pdf", 64))
	require.NoError(t, err)

	// the second upload re-extracts both documents
	assert.Len(t, result.Extractions, 2)

	corpus, err := rm.corpusRepo.GetByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Contains(t, corpus.CombinedText, "first text"+DocumentSeparator)
	assert.Contains(t, corpus.CombinedText, "second text"+DocumentSeparator)
}

func TestDocumentServiceUploadPartialExtractionFailure(t *testing.T) {
	svc, rm, _, jobs := newTestDocumentService()
	ctx := context.Background()

	jobs.texts["good.pdf"] = "good text"
	jobs.failures["bad.pdf"] = true

	_, err := svc.Upload(ctx, "+15551234567", pdfUpload("good.pdf", 64))
	require.NoError(t, err)

	result, err := svc.Upload(ctx, "+15551234567", pdfUpload("bad.pdf", 64))
	require.NoError(t, err)

	byName := map[string]models.ExtractionResult{}
	for _, r := range result.Extractions {
		byName[r.Name] = r
	}

	assert.Equal(t, models.ExtractionOK, byName["good.pdf"].Status)
	assert.Equal(t, models.ExtractionFailed, byName["bad.pdf"].Status)
	assert.Equal(t, "ocr job failed", byName["bad.pdf"].Reason)

	// the failed document contributes nothing to the corpus
	corpus, err := rm.corpusRepo.GetByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "good text"+DocumentSeparator, corpus.CombinedText)
}

func TestDocumentServiceUploadPollTimeout(t *testing.T) {
	svc, _, _, jobs := newTestDocumentService()
	ctx := context.Background()

	jobs.texts["slow.pdf"] = "never seen"
	jobs.pending["slow.pdf"] = 1 << 30

	result, err := svc.Upload(ctx, "+15551234567", pdfUpload("slow.pdf", 64))
	require.NoError(t, err)

	require.Len(t, result.Extractions, 1)
	assert.Equal(t, models.ExtractionFailed, result.Extractions[0].Status)
	assert.Contains(t, result.Extractions[0].Reason, "timed out")
}

func TestDocumentServiceUploadWaitsForSlowJob(t *testing.T) {
	svc, rm, _, jobs := newTestDocumentService()
	ctx := context.Background()

	jobs.texts["slow.pdf"] = "slow text"
	jobs.pending["slow.pdf"] = 3

	result, err := svc.Upload(ctx, "+15551234567", pdfUpload("slow.pdf", 64))
	require.NoError(t, err)

	require.Len(t, result.Extractions, 1)
	assert.Equal(t, models.ExtractionOK, result.Extractions[0].Status)

	corpus, err := rm.corpusRepo.GetByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "slow text"+DocumentSeparator, corpus.CombinedText)
}

func TestDocumentServiceDelete(t *testing.T) {
	svc, rm, blobs, jobs := newTestDocumentService()
	ctx := context.Background()

	jobs.texts["keep.pdf"] = "keep text"
	jobs.texts["drop.pdf"] = "drop text"

	_, err := svc.Upload(ctx, "+15551234567", pdfUpload("keep.pdf", 64))
	require.NoError(t, err)
	dropped, err := svc.Upload(ctx, "+15551234567", pdfUpload("drop.pdf", 64))
	require.NoError(t, err)

	results, err := svc.Delete(ctx, "+15551234567", dropped.Key)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, err = blobs.Head(ctx, dropped.Key)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// the corpus is rebuilt from the remaining document
	corpus, err := rm.corpusRepo.GetByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "keep text"+DocumentSeparator, corpus.CombinedText)
}

func TestDocumentServiceDeleteForeignDocument(t *testing.T) {
	svc, _, blobs, jobs := newTestDocumentService()
	ctx := context.Background()

	jobs.texts["theirs.pdf"] = "their text"

	theirs, err := svc.Upload(ctx, "+15559990000", pdfUpload("theirs.pdf", 64))
	require.NoError(t, err)

	_, err = svc.Delete(ctx, "+15551234567", theirs.Key)
	assert.ErrorIs(t, err, common.ErrorForbidden)

	// the blob is untouched
	_, err = blobs.Head(ctx, theirs.Key)
	assert.NoError(t, err)
}

func TestDocumentServiceDeleteValidation(t *testing.T) {
	svc, _, _, _ := newTestDocumentService()

	_, err := svc.Delete(context.Background(), "+15551234567", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestDocumentServiceList(t *testing.T) {
	svc, _, _, jobs := newTestDocumentService()
	ctx := context.Background()

	jobs.texts["mine.pdf"] = "mine"
	jobs.texts["theirs.pdf"] = "theirs"

	mine, err := svc.Upload(ctx, "+15551234567", pdfUpload("mine.pdf", 64))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, "+15559990000", pdfUpload("theirs.pdf", 64))
	require.NoError(t, err)

	docs, err := svc.List(ctx, "+15551234567")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, mine.Key, docs[0].Key)
	assert.Equal(t, "mine.pdf", docs[0].Name)

	// an empty listing is valid, not an error
	docs, err = svc.List(ctx, "+15550000000")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentServiceUploadOnlyExtractsOwnDocuments(t *testing.T) {
	svc, rm, _, jobs := newTestDocumentService()
	ctx := context.Background()

	jobs.texts["mine.pdf"] = "mine"
	jobs.texts["theirs.pdf"] = "theirs"

	_, err := svc.Upload(ctx, "+15559990000", pdfUpload("theirs.pdf", 64))
	require.NoError(t, err)

	result, err := svc.Upload(ctx, "+15551234567", pdfUpload("mine.pdf", 64))
	require.NoError(t, err)
	assert.Len(t, result.Extractions, 1)

	corpus, err := rm.corpusRepo.GetByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "mine"+DocumentSeparator, corpus.CombinedText)
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dkrylov/medvault/internal/common"
	"github.com/dkrylov/medvault/internal/dbx"
	"github.com/dkrylov/medvault/internal/logging"
	sc "github.com/dkrylov/medvault/internal/server/config"
	"github.com/dkrylov/medvault/internal/server/models"
	"github.com/dkrylov/medvault/internal/server/ocr"
	"github.com/dkrylov/medvault/internal/server/repositories/corpora"
	"github.com/dkrylov/medvault/internal/server/repositories/otps"
	"github.com/dkrylov/medvault/internal/server/repositories/repomanager"
	"github.com/dkrylov/medvault/internal/server/repositories/users"
	"github.com/dkrylov/medvault/internal/server/storage"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *sc.Config {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.EncryptionKey = "0123456789abcdef0123456789abcdef"
	cfg.OCRPollInterval = time.Millisecond
	cfg.OCRPollTimeout = 100 * time.Millisecond
	return cfg
}

// in-memory repositories, keyed by phone number; the db handle is ignored

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.PhoneNumber]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u := *user
	u.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	r.users[user.PhoneNumber] = &u
	return &u, nil
}

func (r *fakeUserRepo) GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[phoneNumber]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) SetVerified(ctx context.Context, phoneNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[phoneNumber]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsVerified = true
	return nil
}

type fakeOTPRepo struct {
	mu      sync.Mutex
	records map[string]*models.OTPRecord
}

func (r *fakeOTPRepo) Upsert(ctx context.Context, record *models.OTPRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := *record
	r.records[record.PhoneNumber] = &rec
	return nil
}

func (r *fakeOTPRepo) GetByPhone(ctx context.Context, phoneNumber string) (*models.OTPRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[phoneNumber]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *rec
	return &out, nil
}

func (r *fakeOTPRepo) Delete(ctx context.Context, phoneNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, phoneNumber)
	return nil
}

type fakeCorpusRepo struct {
	mu      sync.Mutex
	corpora map[string]*models.Corpus
}

func (r *fakeCorpusRepo) Upsert(ctx context.Context, corpus *models.Corpus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *corpus
	r.corpora[corpus.PhoneNumber] = &c
	return nil
}

func (r *fakeCorpusRepo) GetByPhone(ctx context.Context, phoneNumber string) (*models.Corpus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.corpora[phoneNumber]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *c
	return &out, nil
}

type fakeRepoManager struct {
	userRepo   *fakeUserRepo
	otpRepo    *fakeOTPRepo
	corpusRepo *fakeCorpusRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		userRepo:   &fakeUserRepo{users: make(map[string]*models.User)},
		otpRepo:    &fakeOTPRepo{records: make(map[string]*models.OTPRecord)},
		corpusRepo: &fakeCorpusRepo{corpora: make(map[string]*models.Corpus)},
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository     { return m.userRepo }
func (m *fakeRepoManager) OTPs(db dbx.DBTX) otps.Repository       { return m.otpRepo }
func (m *fakeRepoManager) Corpora(db dbx.DBTX) corpora.Repository { return m.corpusRepo }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

type fakeSender struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (s *fakeSender) Send(ctx context.Context, phoneNumber, message string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return nil
}

func (s *fakeSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

type fakeBlob struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string]fakeBlob
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string]fakeBlob)}
}

func (s *fakeBlobStore) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = fakeBlob{data: data, contentType: contentType, metadata: metadata}
	return nil
}

func (s *fakeBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b.data, nil
}

func (s *fakeBlobStore) Head(ctx context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b.metadata, nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *fakeBlobStore) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.ObjectInfo, 0, len(s.blobs))
	for key, b := range s.blobs {
		out = append(out, storage.ObjectInfo{Key: key, Metadata: b.metadata})
	}
	return out, nil
}

// fakeJobClient resolves jobs by the original filename embedded in the
// storage key, since the key itself carries a random component. A name in
// failures reports a failed job; a name in pending stays in progress for
// that many polls first.
type fakeJobClient struct {
	mu       sync.Mutex
	texts    map[string]string
	failures map[string]bool
	pending  map[string]int
	submits  int
}

func newFakeJobClient() *fakeJobClient {
	return &fakeJobClient{
		texts:    make(map[string]string),
		failures: make(map[string]bool),
		pending:  make(map[string]int),
	}
}

func (c *fakeJobClient) name(jobID string) string {
	for name := range c.texts {
		if strings.HasSuffix(jobID, "-"+name) {
			return name
		}
	}
	for name := range c.failures {
		if strings.HasSuffix(jobID, "-"+name) {
			return name
		}
	}
	return ""
}

func (c *fakeJobClient) Submit(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submits++
	return key, nil
}

func (c *fakeJobClient) Poll(ctx context.Context, jobID string) (*ocr.JobResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := c.name(jobID)
	if c.pending[name] > 0 {
		c.pending[name]--
		return &ocr.JobResult{Status: ocr.JobInProgress}, nil
	}
	if c.failures[name] {
		return &ocr.JobResult{Status: ocr.JobFailed}, nil
	}
	return &ocr.JobResult{Status: ocr.JobSucceeded, Text: c.texts[name]}, nil
}

type fakeCompleter struct {
	prompt string
	answer string
	err    error
}

func (c *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.prompt = prompt
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

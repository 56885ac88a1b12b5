package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dkrylov/medvault/internal/common"
	"github.com/dkrylov/medvault/internal/logging"
	"github.com/dkrylov/medvault/internal/server/llm"
	"github.com/dkrylov/medvault/internal/server/repositories/repomanager"
)

// QueryService answers free-text questions over a user's combined document
// corpus by prompting the external completion service.
type QueryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	completer   llm.Completer
	logger      logging.Logger
}

func NewQueryService(db *sql.DB, m repomanager.RepositoryManager, completer llm.Completer, logger logging.Logger) *QueryService {
	return &QueryService{
		db:          db,
		repomanager: m,
		completer:   completer,
		logger:      logger,
	}
}

// Answer validates the query, loads the caller's corpus and returns the
// formatted completion. An empty query never reaches the completion
// service.
func (s *QueryService) Answer(ctx context.Context, phoneNumber, query string) (string, error) {
	if query == "" {
		return "", fmt.Errorf("%w: query must not be empty", common.ErrorValidation)
	}

	corpus, err := s.repomanager.Corpora(s.db).GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("corpus lookup: %w", err)
	}

	prompt := BuildPrompt(corpus.CombinedText, query)

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.logger.Debug(ctx, "query answered", "phone", phoneNumber)

	return FormatReport(raw), nil
}

// BuildPrompt embeds the full corpus and the separator token into the
// instruction given to the completion service. Each separator-delimited
// section is to be treated as a distinct medical record.
func BuildPrompt(combinedText, query string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Answer the following query: %q\n\n", query)
	sb.WriteString("If the answer requires additional information from the patient's medical history, ")
	sb.WriteString("analyze the medical history texts provided below. Each section represents a different ")
	sb.WriteString("medical history document; treat each as a distinct record and reference it by its own ")
	sb.WriteString("context where relevant.\n\n")
	sb.WriteString("The medical history records to analyze are:\n\n")
	sb.WriteString(combinedText)
	fmt.Fprintf(&sb, "\nEach record is separated by the following marker: %q\n", DocumentSeparator)
	sb.WriteString("If multiple records contain relevant details, draw from them together and make clear ")
	sb.WriteString("which record each piece of information comes from. Summarize conditions, treatments, ")
	sb.WriteString("medications and other specifics in plain language, note any key details that are ")
	sb.WriteString("unclear or missing, and focus on answering the query first.\n")

	return sb.String()
}

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// FormatReport converts the completion service's markdown-ish output to the
// markup the clients render: bold to <strong>, newlines to <br>, and the
// document separator to <hr>. Pure string transform.
func FormatReport(raw string) string {
	out := boldPattern.ReplaceAllString(raw, "<strong>$1</strong>")
	out = strings.ReplaceAll(out, DocumentSeparator, "<hr>")
	out = strings.ReplaceAll(out, "--- Document Separator ---", "<hr>")
	out = strings.ReplaceAll(out, "\n", "<br>")
	return out
}

package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dkrylov/medvault/internal/common"
	"github.com/dkrylov/medvault/internal/server/auth"
	"github.com/dkrylov/medvault/internal/server/services"
)

// maxUploadBytes caps the request body well above the per-file limit so
// that an oversized file is still read and rejected with the size error
// instead of a connection reset.
const maxUploadBytes = 32 << 20

type deleteDocRequest struct {
	FileName string `json:"fileName"`
}

type userQueryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleGenerateUploadLink(w http.ResponseWriter, r *http.Request) {
	phone := phoneFromContext(r.Context())

	token, err := auth.GenerateToken(phone, auth.ScopeUpload, s.secretKey, s.uploadTokenValidity)
	if err != nil {
		writeError(w, err)
		return
	}

	link := fmt.Sprintf("%s/api/doc/uploadDoc?token=%s", s.baseURL, token)
	writeJSON(w, http.StatusOK, map[string]string{"uploadLink": link})
}

func (s *Server) handleUploadDoc(w http.ResponseWriter, r *http.Request) {
	phone := phoneFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		errorJSON(w, http.StatusBadRequest, "No file uploaded.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "No file uploaded.")
		return
	}

	result, err := s.docs.Upload(r.Context(), phone, services.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "File uploaded and processed successfully.",
		"key":         result.Key,
		"extractions": result.Extractions,
	})
}

func (s *Server) handleGetAllDocs(w http.ResponseWriter, r *http.Request) {
	phone := phoneFromContext(r.Context())

	docs, err := s.docs.List(r.Context(), phone)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(docs) == 0 {
		errorJSON(w, http.StatusNotFound, "No documents found for this phone number.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"files": docs})
}

func (s *Server) handleDeleteDoc(w http.ResponseWriter, r *http.Request) {
	phone := phoneFromContext(r.Context())

	var in deleteDocRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}

	if _, err := s.docs.Delete(r.Context(), phone, in.FileName); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully."})
}

func (s *Server) handleUserQuery(w http.ResponseWriter, r *http.Request) {
	phone := phoneFromContext(r.Context())

	var in userQueryRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}

	report, err := s.query.Answer(r.Context(), phone, in.Query)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			errorJSON(w, http.StatusNotFound, "No medical documents found for this user.")
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"medicalReport": report})
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/markdown"
	"github.com/dgallion1/docedit/internal/parser"
	"github.com/dgallion1/docedit/internal/workspace"
)

// Document sources recorded on a session.
const (
	SourceJSON     = "json"
	SourceMarkdown = "markdown"
	SourceEmpty    = "empty"
)

type createRequest struct {
	Title    string          `json:"title"`
	Doc      json.RawMessage `json:"doc"`
	Markdown *string         `json:"markdown"`
}

type documentResponse struct {
	workspace.Info
	Doc *doctree.Node `json:"doc,omitempty"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.store.List()})
}

// handleCreateDocument opens a session from a JSON document or markdown.
// An empty body opens an empty document.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	var req createRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	var (
		doc    *doctree.Node
		source string
	)
	switch {
	case len(req.Doc) > 0 && req.Markdown != nil:
		jsonError(w, "doc and markdown are mutually exclusive", http.StatusBadRequest)
		return
	case len(req.Doc) > 0:
		doc, err = parseDoc(req.Doc)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		source = SourceJSON
	case req.Markdown != nil:
		doc = doctree.NewDoc(markdown.ParseToNodes(*req.Markdown)...)
		source = SourceMarkdown
	default:
		doc = doctree.NewDoc()
		source = SourceEmpty
	}

	sess := s.store.Create(doc, req.Title, source, body)
	s.log.Info("document opened", "doc_id", sess.ID, "source", source)
	writeJSON(w, http.StatusCreated, s.store.Info(sess))
}

func parseDoc(data []byte) (*doctree.Node, error) {
	doc, err := doctree.Parse(data)
	if err != nil {
		return nil, err
	}
	if doc.Type != doctree.TypeDoc {
		return nil, fmt.Errorf("root node must be %q, got %q", doctree.TypeDoc, doc.Type)
	}
	if err := doc.Check(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return doc, nil
}

// handleImportDocument opens a session from an uploaded file.
func (s *Server) handleImportDocument(w http.ResponseWriter, r *http.Request) {
	// extra 1MB for form overhead
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := parser.Document(bytes.NewReader(data), filename, parser.Options{
		PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext,
	})
	if err != nil {
		s.log.Warn("import failed", "filename", filename, "error", err)
		jsonError(w, "failed to import file: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	sess := s.store.Create(doc, title, filename, data)
	s.log.Info("document imported", "doc_id", sess.ID, "filename", filename, "bytes", len(data))
	writeJSON(w, http.StatusCreated, s.store.Info(sess))
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	resp := documentResponse{Info: s.store.Info(sess)}
	if r.URL.Query().Get("content") != "false" {
		resp.Doc = sess.Document().Doc()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportMarkdown(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, markdown.RenderDoc(sess.Document().Doc()))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if !s.store.Delete(docID) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	s.log.Info("document closed", "doc_id", docID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "doc_id": docID})
}

// session looks up the document named in the URL, writing a 404 when it
// is unknown or expired.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*workspace.Session, bool) {
	sess, err := s.store.Get(chi.URLParam(r, "docID"))
	if errors.Is(err, workspace.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

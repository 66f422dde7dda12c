package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docedit/internal/docdiff"
	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/editor"
	"github.com/dgallion1/docedit/internal/tools"
)

// maxArgsBytes bounds a tool call body.
const maxArgsBytes = 8 << 20

type toolResponse struct {
	Tool    string          `json:"tool"`
	Result  any             `json:"result"`
	Version int             `json:"version"`
	Size    int             `json:"size"`
	Diff    *docdiff.Result `json:"diff,omitempty"`
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.tools.All()})
}

// handleRunTool runs one tool against a session. Tool failures are part of
// the result, not the HTTP status: the body carries {"error","code"} with
// 200 so an agent reads them like any other result.
func (s *Server) handleRunTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "tool")
	if s.tools.Get(name) == nil {
		jsonError(w, "unknown tool: "+name, http.StatusNotFound)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	args, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxArgsBytes))
	if err != nil {
		jsonError(w, "failed to read arguments: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	if len(args) > 0 && !json.Valid(args) {
		jsonError(w, "arguments must be a JSON object", http.StatusBadRequest)
		return
	}

	wantDiff := r.URL.Query().Get("diff") == "true"
	resp := toolResponse{Tool: name}
	var before, after *doctree.Node

	sess.Do(func(doc *editor.Document) error {
		if wantDiff {
			before = doc.Doc()
		}
		resp.Result = s.tools.Invoke(r.Context(), doc, name, args)
		resp.Version = doc.Version()
		resp.Size = doc.Size()
		if wantDiff {
			after = doc.Doc()
		}
		return nil
	})

	if wantDiff {
		d := docdiff.Docs(before, after, docdiff.Options{})
		resp.Diff = &d
	}
	if er, failed := resp.Result.(tools.ErrorResult); failed {
		s.log.Debug("tool call failed", "doc_id", sess.ID, "tool", name, "code", er.Code)
	}
	writeJSON(w, http.StatusOK, resp)
}

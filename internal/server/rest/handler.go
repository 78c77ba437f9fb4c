package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// principal is only called behind authenticate.
func principal(r *http.Request) models.Principal {
	p, _ := principalFrom(r.Context())
	return p
}

func (s *Server) handleListFolder(w http.ResponseWriter, r *http.Request) {
	l, err := s.drive.ListFolder(r.Context(), principal(r), r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listingResponse{
		Path:    l.Path,
		Folders: make([]folderDTO, 0, len(l.Folders)),
		Files:   toFileDTOs(l.Files),
	}
	for _, f := range l.Folders {
		resp.Folders = append(resp.Folders, toFolderDTO(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	f, err := s.drive.CreateFolder(r.Context(), principal(r), req.ParentPath, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFolderDTO(f))
}

func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	f, err := s.drive.RenameFolder(r.Context(), principal(r), chi.URLParam(r, "id"), req.Name)
	if resp, ok := partialCascade(err, f); ok {
		writeJSON(w, http.StatusMultiStatus, resp)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFolderDTO(f))
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.drive.DeleteFolder(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRetryCascade(w http.ResponseWriter, r *http.Request) {
	var req retryCascadeRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	n, err := s.drive.RetryCascade(r.Context(), principal(r), req.OwnerID, req.OldPath, req.NewPath)
	if resp, ok := partialCascade(err, nil); ok {
		writeJSON(w, http.StatusMultiStatus, resp)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, retryCascadeResponse{Rebased: n})
}

// handleUpload streams the request body into the blob store. The target is
// given by the folder and name query parameters. With storage_key set the
// blob is already stored and the body is ignored; size then comes from the
// size parameter.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("name") == "" {
		writeError(w, fmt.Errorf("%w: name is required", errBadRequest))
		return
	}

	// ContentLength is -1 for chunked bodies; the service counts the bytes.
	in := services.UploadInput{
		Name:       q.Get("name"),
		MimeType:   r.Header.Get("Content-Type"),
		Size:       r.ContentLength,
		Body:       r.Body,
		StorageKey: q.Get("storage_key"),
	}
	if in.StorageKey != "" {
		in.Size, in.Body = -1, nil
	}

	res, err := s.drive.Upload(r.Context(), principal(r), q.Get("folder"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{File: toFileDTO(res.File), URL: res.URL})
}

// handleUploadTree takes a multipart form with one "files" part per file
// and, in the same order, one "paths" value giving its path relative to the
// target folder. Multipart file names lose their directories, so the paths
// travel separately; a missing path falls back to the bare file name.
func (s *Server) handleUploadTree(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxTreeMemory); err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	paths := r.MultipartForm.Value["paths"]
	entries := make([]services.TreeEntry, 0, len(headers))
	for i, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
			return
		}
		defer f.Close()

		rel := h.Filename
		if i < len(paths) && paths[i] != "" {
			rel = paths[i]
		}
		entries = append(entries, services.TreeEntry{
			RelativePath: rel,
			MimeType:     h.Header.Get("Content-Type"),
			Size:         h.Size,
			Body:         f,
		})
	}

	res, err := s.drive.UploadTree(r.Context(), principal(r), r.FormValue("folder"), entries)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBatch(w, res)
}

func (s *Server) handleRequestUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadTicketRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	t, err := s.drive.RequestUpload(r.Context(), principal(r), req.Folder, req.Name, req.MimeType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadTicketResponse{StorageKey: t.StorageKey, URL: t.URL})
}

func (s *Server) handleRenameFile(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	f, err := s.drive.RenameFile(r.Context(), principal(r), chi.URLParam(r, "id"), req.Name, req.ConfirmExtension)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFileDTO(f))
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.drive.DeleteFile(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDownloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := s.drive.DownloadURL(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, urlResponse{URL: url})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	files, err := s.drive.Search(r.Context(), principal(r), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFileDTOs(files))
}

func parseSearchFilter(r *http.Request) (services.SearchFilter, error) {
	q := r.URL.Query()
	f := services.SearchFilter{
		Term:       q.Get("term"),
		MimeType:   q.Get("mime_type"),
		UploaderID: q.Get("uploader_id"),
	}

	var err error
	if f.From, err = parseTimeParam(q.Get("from")); err != nil {
		return f, err
	}
	if f.To, err = parseTimeParam(q.Get("to")); err != nil {
		return f, err
	}
	if f.MinSize, err = parseIntParam(q.Get("min_size")); err != nil {
		return f, err
	}
	if f.MaxSize, err = parseIntParam(q.Get("max_size")); err != nil {
		return f, err
	}
	return f, nil
}

func parseTimeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", errBadRequest, v)
	}
	return t, nil
}

func parseIntParam(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad number %q", errBadRequest, v)
	}
	return n, nil
}

func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := s.drive.RecentActivity(r.Context(), principal(r), int(limit))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityDTOs(entries))
}

// writeBatch answers 200 when every item succeeded and 207 otherwise.
func writeBatch(w http.ResponseWriter, res *services.BatchResult) {
	status := http.StatusOK
	if res.Failed > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, toBatchResponse(res))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.drive.Move(r.Context(), principal(r), toItems(req.Items), req.Destination)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBatch(w, res)
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.drive.Copy(r.Context(), principal(r), toItems(req.Items), req.Destination)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBatch(w, res)
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	writeBatch(w, s.drive.BulkDelete(r.Context(), principal(r), toItems(req.Items)))
}

func (s *Server) session(r *http.Request) *services.Session {
	return s.sessions.Get(principal(r).ID)
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResponse(s.session(r)))
}

func (s *Server) handleToggleSelect(w http.ResponseWriter, r *http.Request) {
	var req itemDTO
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Selected: s.session(r).ToggleSelect(req.item())})
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	var req selectAllRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess := s.session(r)
	sess.SelectAll(toItems(req.Items))
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.ClearSelection()
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleCopyToClipboard(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.CopyToClipboard()
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleCutToClipboard(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.CutToClipboard()
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleClearClipboard(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.ClearClipboard()
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	var req pasteRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.drive.Paste(r.Context(), principal(r), s.session(r), req.Destination)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBatch(w, res)
}

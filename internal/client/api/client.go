// Package api is a thin HTTP client for the drive REST API.
//
// Error responses decode into *Error, which unwraps to the matching
// sentinel from internal/common so callers can use errors.Is.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/netx"
)

const apiPrefix = "/api/v1"

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	switch e.Code {
	case "extension_changed":
		return common.ErrExtensionChanged
	case "token_expired":
		return common.ErrTokenExpired
	case "storage_key_in_use":
		return common.ErrStorageKeyInUse
	}
	switch e.Status {
	case http.StatusUnauthorized:
		return common.ErrInvalidToken
	case http.StatusForbidden:
		return common.ErrPermissionDenied
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusUnprocessableEntity:
		return common.ErrInvalidPath
	case http.StatusServiceUnavailable:
		return common.ErrStoreUnavailable
	case http.StatusNotImplemented:
		return common.ErrNotSupported
	}
	return nil
}

// Client talks to one drive server with one bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the bearer token used by later calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) (int, error) {
	return c.doSized(ctx, method, path, body, -1, contentType, out)
}

// doSized is do with a known body length; size < 0 leaves it to net/http,
// which streams readers such as *os.File chunked.
func (c *Client) doSized(ctx context.Context, method, path string, body io.Reader, size int64, contentType string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	if body != nil && size >= 0 {
		req.ContentLength = size
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var er struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&er)
		if er.Error == "" {
			er.Error = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, &Error{Status: resp.StatusCode, Code: er.Code, Message: er.Error}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

// Ping calls the unauthenticated health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, "", nil)
	return err
}

func (c *Client) ListFolder(ctx context.Context, path string) (*Listing, error) {
	var l Listing
	_, err := c.doJSON(ctx, http.MethodGet, apiPrefix+"/folders?"+url.Values{"path": {path}}.Encode(), nil, &l)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) CreateFolder(ctx context.Context, parentPath, name string) (*Folder, error) {
	var f Folder
	in := map[string]string{"parent_path": parentPath, "name": name}
	if _, err := c.doJSON(ctx, http.MethodPost, apiPrefix+"/folders", in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// RenameFolder returns the cascade report when the server answered 207.
func (c *Client) RenameFolder(ctx context.Context, id, name string) (*Folder, *PartialCascade, error) {
	var raw json.RawMessage
	status, err := c.doJSON(ctx, http.MethodPatch, apiPrefix+"/folders/"+url.PathEscape(id), map[string]string{"name": name}, &raw)
	if err != nil {
		return nil, nil, err
	}
	if status == http.StatusMultiStatus {
		var pc PartialCascade
		if err := json.Unmarshal(raw, &pc); err != nil {
			return nil, nil, err
		}
		return pc.Folder, &pc, nil
	}
	var f Folder
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, nil, err
	}
	return &f, nil, nil
}

func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, apiPrefix+"/folders/"+url.PathEscape(id), nil, "", nil)
	return err
}

// RetryCascade re-runs the rebase described by a previous partial report.
func (c *Client) RetryCascade(ctx context.Context, pc *PartialCascade) (int, *PartialCascade, error) {
	in := map[string]string{"owner_id": pc.OwnerID, "old_path": pc.OldPath, "new_path": pc.NewPath}
	var raw json.RawMessage
	status, err := c.doJSON(ctx, http.MethodPost, apiPrefix+"/cascades/retry", in, &raw)
	if err != nil {
		return 0, nil, err
	}
	if status == http.StatusMultiStatus {
		var again PartialCascade
		if err := json.Unmarshal(raw, &again); err != nil {
			return 0, nil, err
		}
		return again.Rebased, &again, nil
	}
	var out struct {
		Rebased int `json:"rebased"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, nil, err
	}
	return out.Rebased, nil, nil
}

// Upload streams body into folder under name. Pass size -1 when the length
// is unknown.
func (c *Client) Upload(ctx context.Context, folder, name, mimeType string, body io.Reader, size int64) (*Upload, error) {
	q := url.Values{"folder": {folder}, "name": {name}}
	var u Upload
	if _, err := c.doSized(ctx, http.MethodPut, apiPrefix+"/files?"+q.Encode(), body, size, mimeType, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UploadTicket is a presigned slot for writing one blob directly.
type UploadTicket struct {
	StorageKey string `json:"storage_key"`
	URL        string `json:"url"`
}

func (c *Client) RequestUpload(ctx context.Context, folder, name, mimeType string) (*UploadTicket, error) {
	in := map[string]string{"folder": folder, "name": name, "mime_type": mimeType}
	var t UploadTicket
	if _, err := c.doJSON(ctx, http.MethodPost, apiPrefix+"/files/upload-url", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UploadDirect writes body straight to the object store through a
// presigned URL and then registers the file record. Backends without
// presigning answer common.ErrNotSupported.
func (c *Client) UploadDirect(ctx context.Context, folder, name, mimeType string, body io.Reader, size int64) (*Upload, error) {
	t, err := c.RequestUpload(ctx, folder, name, mimeType)
	if err != nil {
		return nil, err
	}
	if err := netx.PutPresigned(ctx, c.http, t.URL, mimeType, body, size); err != nil {
		return nil, fmt.Errorf("direct upload: %w", err)
	}

	q := url.Values{
		"folder":      {folder},
		"name":        {name},
		"storage_key": {t.StorageKey},
	}
	var u Upload
	if _, err := c.do(ctx, http.MethodPut, apiPrefix+"/files?"+q.Encode(), nil, mimeType, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// TreeFile is one file of a directory upload.
type TreeFile struct {
	RelativePath string
	MimeType     string
	Body         io.Reader
}

// UploadTree sends files as one multipart request, recreating their
// relative directories under folder.
func (c *Client) UploadTree(ctx context.Context, folder string, files []TreeFile) (*BatchResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("folder", folder); err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := mw.WriteField("paths", f.RelativePath); err != nil {
			return nil, err
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.RelativePath))
		if f.MimeType != "" {
			h.Set("Content-Type", f.MimeType)
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var res BatchResult
	if _, err := c.do(ctx, http.MethodPost, apiPrefix+"/files/tree", &buf, mw.FormDataContentType(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) RenameFile(ctx context.Context, id, name string, confirmExtension bool) (*File, error) {
	in := map[string]any{"name": name, "confirm_extension": confirmExtension}
	var f File
	if _, err := c.doJSON(ctx, http.MethodPatch, apiPrefix+"/files/"+url.PathEscape(id), in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) DeleteFile(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, apiPrefix+"/files/"+url.PathEscape(id), nil, "", nil)
	return err
}

func (c *Client) DownloadURL(ctx context.Context, id string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, apiPrefix+"/files/"+url.PathEscape(id)+"/url", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// SearchQuery mirrors the server's search parameters. Zero values are
// left out of the query string.
type SearchQuery struct {
	Term       string
	MimeType   string
	UploaderID string
	From       string
	To         string
	MinSize    int64
	MaxSize    int64
}

func (q SearchQuery) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("term", q.Term)
	set("mime_type", q.MimeType)
	set("uploader_id", q.UploaderID)
	set("from", q.From)
	set("to", q.To)
	if q.MinSize > 0 {
		v.Set("min_size", strconv.FormatInt(q.MinSize, 10))
	}
	if q.MaxSize > 0 {
		v.Set("max_size", strconv.FormatInt(q.MaxSize, 10))
	}
	return v
}

func (c *Client) Search(ctx context.Context, q SearchQuery) ([]File, error) {
	var files []File
	if _, err := c.doJSON(ctx, http.MethodGet, apiPrefix+"/search?"+q.values().Encode(), nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	path := apiPrefix + "/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var entries []Activity
	if _, err := c.doJSON(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) batch(ctx context.Context, op string, items []Item, destination string) (*BatchResult, error) {
	in := map[string]any{"items": items, "destination": destination}
	var res BatchResult
	if _, err := c.doJSON(ctx, http.MethodPost, apiPrefix+"/batch/"+op, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Move(ctx context.Context, items []Item, destination string) (*BatchResult, error) {
	return c.batch(ctx, "move", items, destination)
}

func (c *Client) Copy(ctx context.Context, items []Item, destination string) (*BatchResult, error) {
	return c.batch(ctx, "copy", items, destination)
}

func (c *Client) BulkDelete(ctx context.Context, items []Item) (*BatchResult, error) {
	return c.batch(ctx, "delete", items, "")
}

func (c *Client) Session(ctx context.Context) (*SessionState, error) {
	return c.session(ctx, http.MethodGet, "/", nil)
}

// ToggleSelect flips one item in the server-side selection and reports
// whether it is now selected.
func (c *Client) ToggleSelect(ctx context.Context, it Item) (bool, error) {
	var out struct {
		Selected bool `json:"selected"`
	}
	if _, err := c.doJSON(ctx, http.MethodPost, apiPrefix+"/session/select", it, &out); err != nil {
		return false, err
	}
	return out.Selected, nil
}

func (c *Client) SelectAll(ctx context.Context, items []Item) (*SessionState, error) {
	return c.session(ctx, http.MethodPut, "/selection", map[string]any{"items": items})
}

func (c *Client) ClearSelection(ctx context.Context) (*SessionState, error) {
	return c.session(ctx, http.MethodDelete, "/selection", nil)
}

func (c *Client) CopyToClipboard(ctx context.Context) (*SessionState, error) {
	return c.session(ctx, http.MethodPost, "/copy", nil)
}

func (c *Client) CutToClipboard(ctx context.Context) (*SessionState, error) {
	return c.session(ctx, http.MethodPost, "/cut", nil)
}

func (c *Client) ClearClipboard(ctx context.Context) (*SessionState, error) {
	return c.session(ctx, http.MethodDelete, "/clipboard", nil)
}

func (c *Client) Paste(ctx context.Context, destination string) (*BatchResult, error) {
	var res BatchResult
	in := map[string]string{"destination": destination}
	if _, err := c.doJSON(ctx, http.MethodPost, apiPrefix+"/session/paste", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) session(ctx context.Context, method, path string, in any) (*SessionState, error) {
	var s SessionState
	if _, err := c.doJSON(ctx, method, apiPrefix+"/session"+path, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// IsUnauthorized reports whether err means the token must be replaced.
func IsUnauthorized(err error) bool {
	return errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired)
}

package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type folderDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ParentPath string    `json:"parent_path"`
	FullPath   string    `json:"full_path"`
	OwnerID    string    `json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toFolderDTO(f *models.Folder) folderDTO {
	return folderDTO{
		ID:         f.ID,
		Name:       f.Name,
		ParentPath: f.ParentPath,
		FullPath:   f.FullPath(),
		OwnerID:    f.OwnerID,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

type fileDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	StorageKey   string    `json:"storage_key"`
	Folder       string    `json:"folder"`
	OwnerID      string    `json:"owner_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toFileDTO(f *models.File) fileDTO {
	return fileDTO{
		ID:           f.ID,
		Name:         f.Name,
		OriginalName: f.OriginalName,
		Size:         f.Size,
		MimeType:     f.MimeType,
		StorageKey:   f.StorageKey,
		Folder:       f.Folder,
		OwnerID:      f.OwnerID,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func toFileDTOs(files []*models.File) []fileDTO {
	out := make([]fileDTO, 0, len(files))
	for _, f := range files {
		out = append(out, toFileDTO(f))
	}
	return out
}

type listingResponse struct {
	Path    string      `json:"path"`
	Folders []folderDTO `json:"folders"`
	Files   []fileDTO   `json:"files"`
}

type createFolderRequest struct {
	ParentPath string `json:"parent_path"`
	Name       string `json:"name" validate:"required"`
}

type renameRequest struct {
	Name             string `json:"name" validate:"required"`
	ConfirmExtension bool   `json:"confirm_extension"`
}

type retryCascadeRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	OldPath string `json:"old_path" validate:"required"`
	NewPath string `json:"new_path" validate:"required"`
}

type retryCascadeResponse struct {
	Rebased int `json:"rebased"`
}

type partialCascadeResponse struct {
	Folder  *folderDTO `json:"folder,omitempty"`
	Error   string     `json:"error"`
	OwnerID string     `json:"owner_id"`
	OldPath string     `json:"old_path"`
	NewPath string     `json:"new_path"`
	Rebased int        `json:"rebased"`
	Failed  []string   `json:"failed"`
}

type uploadResponse struct {
	File fileDTO `json:"file"`
	URL  string  `json:"url,omitempty"`
}

type uploadTicketRequest struct {
	Folder   string `json:"folder"`
	Name     string `json:"name" validate:"required"`
	MimeType string `json:"mime_type"`
}

type uploadTicketResponse struct {
	StorageKey string `json:"storage_key"`
	URL        string `json:"url"`
}

type urlResponse struct {
	URL string `json:"url"`
}

type itemDTO struct {
	Kind string `json:"kind" validate:"required,oneof=file folder"`
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

func (d itemDTO) item() services.Item {
	return services.Item{Kind: services.ItemKind(d.Kind), ID: d.ID, Name: d.Name}
}

func toItems(dtos []itemDTO) []services.Item {
	out := make([]services.Item, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.item())
	}
	return out
}

func toItemDTOs(items []services.Item) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, itemDTO{Kind: string(it.Kind), ID: it.ID, Name: it.Name})
	}
	return out
}

type batchRequest struct {
	Items       []itemDTO `json:"items" validate:"required,min=1,dive"`
	Destination string    `json:"destination"`
}

type itemResultDTO struct {
	Kind       string `json:"kind"`
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	Rebased    int    `json:"rebased,omitempty"`
	NotRebased int    `json:"not_rebased,omitempty"`
}

type batchResponse struct {
	Items     []itemResultDTO `json:"items"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
}

func toBatchResponse(res *services.BatchResult) batchResponse {
	out := batchResponse{
		Items:     make([]itemResultDTO, 0, len(res.Items)),
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
	}
	for _, r := range res.Items {
		d := itemResultDTO{
			Kind:       string(r.Item.Kind),
			ID:         r.Item.ID,
			Name:       r.Item.Name,
			Outcome:    string(r.Outcome),
			Rebased:    r.Rebased,
			NotRebased: r.NotRebased,
		}
		if r.Err != nil {
			d.Error = r.Err.Error()
		}
		out.Items = append(out.Items, d)
	}
	return out
}

type activityDTO struct {
	ID            string            `json:"id"`
	PrincipalID   string            `json:"principal_id"`
	PrincipalName string            `json:"principal_name"`
	Action        string            `json:"action"`
	TargetKind    string            `json:"target_kind"`
	TargetName    string            `json:"target_name"`
	Details       map[string]string `json:"details,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func toActivityDTOs(entries []*models.ActivityLog) []activityDTO {
	out := make([]activityDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityDTO{
			ID:            e.ID,
			PrincipalID:   e.PrincipalID,
			PrincipalName: e.PrincipalName,
			Action:        e.Action,
			TargetKind:    e.TargetKind,
			TargetName:    e.TargetName,
			Details:       e.Details,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out
}

type selectAllRequest struct {
	Items []itemDTO `json:"items" validate:"dive"`
}

type toggleResponse struct {
	Selected bool `json:"selected"`
}

type pasteRequest struct {
	Destination string `json:"destination"`
}

type sessionResponse struct {
	State     string    `json:"state"`
	Mode      string    `json:"mode,omitempty"`
	Selected  []itemDTO `json:"selected"`
	Clipboard []itemDTO `json:"clipboard"`
}

func toSessionResponse(sess *services.Session) sessionResponse {
	clip, mode := sess.Clipboard()
	return sessionResponse{
		State:     string(sess.State()),
		Mode:      string(mode),
		Selected:  toItemDTOs(sess.Selected()),
		Clipboard: toItemDTOs(clip),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the body into v and runs struct validation.
func (s *Server) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if err := s.validate.Struct(v); err != nil {
		return err
	}
	return nil
}

func partialCascade(err error, f *models.Folder) (partialCascadeResponse, bool) {
	var pe *common.PartialCascadeError
	if !errors.As(err, &pe) {
		return partialCascadeResponse{}, false
	}
	resp := partialCascadeResponse{
		Error:   pe.Error(),
		OwnerID: pe.OwnerID,
		OldPath: pe.OldPath,
		NewPath: pe.NewPath,
		Rebased: pe.Rebased,
		Failed:  pe.Failed,
	}
	if f != nil {
		d := toFolderDTO(f)
		resp.Folder = &d
	}
	return resp, true
}

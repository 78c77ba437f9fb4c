package api

import "time"

type Folder struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ParentPath string    `json:"parent_path"`
	FullPath   string    `json:"full_path"`
	OwnerID    string    `json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type File struct {
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

type Listing struct {
	Path    string   `json:"path"`
	Folders []Folder `json:"folders"`
	Files   []File   `json:"files"`
}

type Upload struct {
	File File   `json:"file"`
	URL  string `json:"url,omitempty"`
}

// PartialCascade describes a folder rename or move whose descendants were
// only partly rebased. It carries everything RetryCascade needs.
type PartialCascade struct {
	Folder  *Folder  `json:"folder,omitempty"`
	Error   string   `json:"error"`
	OwnerID string   `json:"owner_id"`
	OldPath string   `json:"old_path"`
	NewPath string   `json:"new_path"`
	Rebased int      `json:"rebased"`
	Failed  []string `json:"failed"`
}

// Item names a file or folder in batch and session calls. Kind is
// "file" or "folder".
type Item struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type ItemResult struct {
	Kind       string `json:"kind"`
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	Rebased    int    `json:"rebased,omitempty"`
	NotRebased int    `json:"not_rebased,omitempty"`
}

type BatchResult struct {
	Items     []ItemResult `json:"items"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

type Activity struct {
	ID            string            `json:"id"`
	PrincipalID   string            `json:"principal_id"`
	PrincipalName string            `json:"principal_name"`
	Action        string            `json:"action"`
	TargetKind    string            `json:"target_kind"`
	TargetName    string            `json:"target_name"`
	Details       map[string]string `json:"details,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

type SessionState struct {
	State     string `json:"state"`
	Mode      string `json:"mode,omitempty"`
	Selected  []Item `json:"selected"`
	Clipboard []Item `json:"clipboard"`
}

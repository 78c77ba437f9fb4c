package models

import "time"

// Action names recorded in the activity feed.
const (
	ActionUploadFile   = "UPLOAD FILE"
	ActionDeleteFile   = "DELETE FILE"
	ActionRenameFile   = "RENAME FILE"
	ActionMoveFile     = "MOVE FILE"
	ActionCopyFile     = "COPY FILE"
	ActionDownloadFile = "DOWNLOAD FILE"

	ActionCreateFolder = "CREATE FOLDER"
	ActionDeleteFolder = "DELETE FOLDER"
	ActionRenameFolder = "RENAME FOLDER"
	ActionMoveFolder   = "MOVE FOLDER"
	ActionCopyFolder   = "COPY FOLDER"
)

const (
	TargetFile   = "FILE"
	TargetFolder = "FOLDER"
)

// ActivityLog is one persisted activity feed entry.
type ActivityLog struct {
	ID            string
	PrincipalID   string
	PrincipalName string
	Action        string
	TargetKind    string
	TargetName    string
	Details       map[string]string
	CreatedAt     time.Time
}

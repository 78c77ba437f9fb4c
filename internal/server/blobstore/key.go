package blobstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var now = time.Now

func ownerPrefix(ownerID string) string {
	owner := strings.ReplaceAll(ownerID, "/", "_")
	if owner == "" {
		owner = "_"
	}
	return "users/" + owner + "/"
}

// NewStorageKey returns a fresh key of the form users/<owner>/<Y>/<M>/<D>/<uuid>.
func NewStorageKey(ownerID string) string {
	d := now()
	return fmt.Sprintf("%s%d/%d/%d/%v", ownerPrefix(ownerID), d.Year(), d.Month(), d.Day(), uuid.New())
}

// OwnedBy reports whether key lies in the namespace NewStorageKey uses for
// ownerID.
func OwnedBy(key, ownerID string) bool {
	return strings.HasPrefix(key, ownerPrefix(ownerID)) && !strings.Contains(key, "..")
}

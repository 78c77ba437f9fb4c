// Package auth decides what an already-authenticated principal may do and
// decodes the bearer tokens that name that principal.
package auth

import (
	"fmt"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

// Capability is a single permission checked before a mutation.
type Capability string

const (
	CapCreateFolder     Capability = "createFolder"
	CapUploadFile       Capability = "uploadFile"
	CapDownloadFile     Capability = "downloadFile"
	CapDeleteFile       Capability = "deleteFile"
	CapDeleteFolder     Capability = "deleteFolder"
	CapRenameOrMove     Capability = "renameOrMove"
	CapAccessAllRecords Capability = "accessAllRecords"
)

var allCapabilities = []Capability{
	CapCreateFolder, CapUploadFile, CapDownloadFile, CapDeleteFile,
	CapDeleteFolder, CapRenameOrMove, CapAccessAllRecords,
}

var roleCapabilities = map[models.Role]map[Capability]bool{
	models.RoleAdministrator: capSet(allCapabilities...),
	models.RoleManager:       capSet(allCapabilities...),
	models.RoleContributor:   capSet(CapUploadFile, CapAccessAllRecords),
	// restricted-guest holds nothing.
	models.RoleRestrictedGuest: capSet(),
}

func capSet(caps ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		m[c] = true
	}
	return m
}

// HasCapability is a pure table lookup. Unknown roles hold nothing.
func HasCapability(role models.Role, c Capability) bool {
	return roleCapabilities[role][c]
}

// Gate checks principals against the role table.
type Gate struct{}

func NewGate() *Gate { return &Gate{} }

// Require fails with common.ErrPermissionDenied naming the first missing
// capability.
func (g *Gate) Require(p models.Principal, caps ...Capability) error {
	for _, c := range caps {
		if !HasCapability(p.Role, c) {
			return fmt.Errorf("%w: role %q lacks %s", common.ErrPermissionDenied, p.Role, c)
		}
	}
	return nil
}

// VisibilityScope limits principals without accessAllRecords to their own
// records.
func (g *Gate) VisibilityScope(p models.Principal) models.Scope {
	if HasCapability(p.Role, CapAccessAllRecords) {
		return models.AllRecords
	}
	return models.Scope{OwnerID: p.ID}
}

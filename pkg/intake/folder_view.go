package intake

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dukex/factotum/pkg/models"
)

// Folder names of the approval surface. The persisted status is the
// system of record; these folders are a projection of it for humans.
const (
	FolderNeedsAction     = "needs_action"
	FolderPlans           = "plans"
	FolderPendingApproval = "pending_approval"
	FolderApproved        = "approved"
	FolderRejected        = "rejected"
	FolderDone            = "done"
	FolderFailed          = "failed"
	FolderExpired         = "expired"
)

var statusFolders = map[models.WorkItemStatus]string{
	models.WorkItemStatusNew:             FolderNeedsAction,
	models.WorkItemStatusPlanned:         FolderPlans,
	models.WorkItemStatusPendingApproval: FolderPendingApproval,
	models.WorkItemStatusApproved:        FolderApproved,
	models.WorkItemStatusDispatched:      FolderApproved,
	models.WorkItemStatusRejected:        FolderRejected,
	models.WorkItemStatusDone:            FolderDone,
	models.WorkItemStatusFailed:          FolderFailed,
	models.WorkItemStatusExpired:         FolderExpired,
}

// FolderView maintains one document per work item under the folder named
// after its status.
type FolderView struct {
	root string
}

func NewFolderView(root string) (*FolderView, error) {
	for _, folder := range statusFolders {
		err := os.MkdirAll(filepath.Join(root, folder), 0750)
		if err != nil {
			return nil, fmt.Errorf("failed to create folder %s: %w", folder, err)
		}
	}

	return &FolderView{root: root}, nil
}

// Root returns the base directory of the view.
func (v *FolderView) Root() string {
	return v.root
}

// FolderFor returns the absolute folder path for a status.
func (v *FolderView) FolderFor(status models.WorkItemStatus) string {
	return filepath.Join(v.root, statusFolders[status])
}

// Project writes the item's document into the folder matching its status
// and removes stale copies from the other folders.
func (v *FolderView) Project(item *models.WorkItem) error {
	filename := item.ID + ".md"

	for _, folder := range statusFolders {
		stale := filepath.Join(v.root, folder, filename)

		err := os.Remove(stale)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to clear stale document: %w", err)
		}
	}

	content, err := RenderDocument(item)
	if err != nil {
		return fmt.Errorf("failed to render work item %s: %w", item.ID, err)
	}

	target := filepath.Join(v.FolderFor(item.Status), filename)

	err = os.WriteFile(target, []byte(content), 0600)
	if err != nil {
		return fmt.Errorf("failed to project work item %s: %w", item.ID, err)
	}

	return nil
}

// Locate returns the folder currently holding the item's document, or ""
// when no projection exists.
func (v *FolderView) Locate(id string) string {
	filename := id + ".md"

	for _, folder := range statusFolders {
		_, err := os.Stat(filepath.Join(v.root, folder, filename))
		if err == nil {
			return folder
		}
	}

	return ""
}

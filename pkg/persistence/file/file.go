// Package file provides file-based persistence for work items and approval records.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/dukex/factotum/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root         string
	workItemRepo *WorkItemRepository
	approvalRepo *ApprovalRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workItemRepo: NewWorkItemRepository(cleanRoot),
		approvalRepo: NewApprovalRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkItems() persistence.WorkItemRepository {
	return fp.workItemRepo
}

func (fp *Persistence) Approvals() persistence.ApprovalRepository {
	return fp.approvalRepo
}

// Package intake parses work item documents and projects items into the
// folder-based approval surface.
package intake

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/template"
)

// ErrInvalidDocument indicates a document without the expected metadata
// header.
var ErrInvalidDocument = errors.New("malformed work item document")

// Document is the text representation of a work item: a key/value
// metadata header, a blank line, then the free-text body.
type Document struct {
	Type     string
	Status   string
	Priority string
	Created  time.Time
	Body     string
}

// ParseDocument reads the header and body of a work item document. The
// type field is mandatory; unknown header keys are ignored.
func ParseDocument(r io.Reader) (*Document, error) {
	scanner := bufio.NewScanner(r)
	doc := &Document{}

	sawHeader := false

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("%w: header line %q has no colon", ErrInvalidDocument, line)
		}

		sawHeader = true
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "type":
			doc.Type = value
		case "status":
			doc.Status = value
		case "priority":
			doc.Priority = value
		case "created":
			parsed, err := time.Parse(time.RFC3339, value)
			if err == nil {
				doc.Created = parsed
			}
		}
	}

	var body strings.Builder

	for scanner.Scan() {
		body.WriteString(scanner.Text())
		body.WriteString("\n")
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	if !sawHeader {
		return nil, fmt.Errorf("%w: missing metadata header", ErrInvalidDocument)
	}

	if doc.Type == "" {
		return nil, fmt.Errorf("%w: missing type field", ErrInvalidDocument)
	}

	doc.Body = strings.TrimRight(body.String(), "\n")

	return doc, nil
}

// ToWorkItem builds a new work item from the document. Status always
// starts at new; the document status field is advisory only.
func (d *Document) ToWorkItem() *models.WorkItem {
	now := time.Now().UTC()

	created := d.Created
	if created.IsZero() {
		created = now
	}

	return &models.WorkItem{
		ID:       uuid.New().String(),
		Type:     d.Type,
		Status:   models.WorkItemStatusNew,
		Priority: d.Priority,
		Payload: map[string]any{
			"description": d.Body,
		},
		CreatedAt: created,
		UpdatedAt: now,
	}
}

// RenderDocument serializes a work item back to document form. Items
// awaiting a decision render as approval requests and planned items as
// plan summaries; every other status uses the plain work item template.
func RenderDocument(item *models.WorkItem) (string, error) {
	description, _ := item.Payload["description"].(string)
	created := item.CreatedAt.UTC().Format(time.RFC3339)

	switch item.Status {
	case models.WorkItemStatusPendingApproval:
		deadline := ""
		if item.DecisionDeadline != nil {
			deadline = item.DecisionDeadline.UTC().Format(time.RFC3339)
		}

		return template.Render("approval_request", map[string]any{
			"work_item_id": item.ID,
			"capability":   strings.Join(approvalCapabilities(item.Plan), ", "),
			"deadline":     deadline,
			"created":      created,
			"body":         description,
		})
	case models.WorkItemStatusPlanned:
		return template.Render("plan_summary", map[string]any{
			"task_type": item.Type,
			"steps":     item.Plan,
			"created":   created,
			"body":      description,
		})
	default:
		return template.Render("work_item", map[string]any{
			"type":     item.Type,
			"status":   string(item.Status),
			"priority": item.Priority,
			"created":  created,
			"body":     description,
		})
	}
}

// approvalCapabilities returns the capabilities of the steps that gate on
// a human decision.
func approvalCapabilities(steps []models.Step) []string {
	caps := make([]string, 0, len(steps))

	for _, step := range steps {
		if step.RequiresApproval {
			caps = append(caps, step.Capability)
		}
	}

	return caps
}

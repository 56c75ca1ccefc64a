package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"docvault/internal/model"
)

// Error reports a delete refused because the document has outlived its
// deletion window and is now part of the permanent record.
type Error struct {
	DocumentID string
	CreatedAt  time.Time
	Window     time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("document %s is retention protected: created %s, deletable within %s of creation",
		e.DocumentID, e.CreatedAt.Format(time.RFC3339), e.Window)
}

// Guard refuses deletion of documents older than the configured window.
// Attach it to the document delete pathway at startup:
//
//	repo.RegisterDeleteHook(guard.ProtectDocuments)
//
// The guard checks age only. Version-chain protection is enforced by the
// datastore constraints, not here.
type Guard struct {
	window time.Duration
	log    *log.Logger
	now    func() time.Time
}

// NewGuard constructs a Guard with the given window.
func NewGuard(window time.Duration, logger *log.Logger) *Guard {
	return &Guard{window: window, log: logger, now: time.Now}
}

// ProtectDocuments is a repository.DeleteHook. It returns a *retention.Error
// when the document's age exceeds the window; deletes within the window pass.
func (g *Guard) ProtectDocuments(ctx context.Context, doc *model.Document) error {
	age := g.now().Sub(doc.CreatedAt)
	if age > g.window {
		g.log.Warn("refusing to delete retention protected document",
			"document_id", doc.ID,
			"created_at", doc.CreatedAt,
			"age", age,
			"window", g.window,
		)
		return &Error{DocumentID: doc.ID, CreatedAt: doc.CreatedAt, Window: g.window}
	}
	return nil
}

package counts

import (
	"context"
	"fmt"
	"log/slog"
)

// PageEditor is the slice of a MediaWiki session the publisher needs.
type PageEditor interface {
	PageContent(ctx context.Context, title string) (string, error)
	EditPage(ctx context.Context, title, text, summary string, bot bool) error
}

// Publish patches the counts module on one language's wiki with the values
// in snap and saves it. Missing slots abort the publish for English and are
// downgraded to warnings for translated modules.
func Publish(ctx context.Context, editor PageEditor, lang Language, snap *Snapshot) error {
	module := lang.Module()

	text, err := editor.PageContent(ctx, module)
	if err != nil {
		return fmt.Errorf("fetching %q: %w", module, err)
	}

	patched, err := PatchModule(text, lang, snap, lang == EN)
	if err != nil {
		return fmt.Errorf("patching %q: %w", module, err)
	}

	slog.Info("updating hiscore counts", "language", lang.String(), "module", module)
	if err := editor.EditPage(ctx, module, patched, lang.EditSummary(), true); err != nil {
		return fmt.Errorf("saving %q: %w", module, err)
	}
	return nil
}

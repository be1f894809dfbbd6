package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/draftboard/internal/autosave"
	"github.com/alexanderramin/draftboard/internal/canvas"
	"github.com/alexanderramin/draftboard/internal/cli/formatter"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/service"
)

// closeTimeout bounds the final flush when a command ends.
const closeTimeout = 10 * time.Second

// cliNotifier prints save outcomes on the command's error stream.
type cliNotifier struct {
	out io.Writer
}

func (n cliNotifier) Saved(_ string, fields []autosave.Field) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	fmt.Fprintln(n.out, formatter.Dim("saved "+strings.Join(names, ", ")))
}

func (n cliNotifier) SaveFailed(_ string, err error) {
	fmt.Fprintln(n.out, formatter.StyleRed.Render("save failed: ")+err.Error())
}

// openSession starts an autosave session on n. Edits are persisted through
// the note service; the caller must Close the session.
func openSession(ctx context.Context, app *App, n *domain.Note, out io.Writer) (*autosave.Session, error) {
	sess := autosave.NewSession(service.NewGateway(app.Notes), autosave.Options{
		Delays:   app.Delays,
		Notifier: cliNotifier{out: out},
		Logger:   app.logger(),
	})
	if err := sess.Load(ctx, n); err != nil {
		return nil, fmt.Errorf("loading note %s: %w", n.ShortID(), err)
	}
	return sess, nil
}

// closeSession flushes pending edits with a fresh deadline so that a
// cancelled command context still gets its edits saved.
func closeSession(sess *autosave.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return sess.Close(ctx)
}

// withSession loads ref, runs fn against an autosave session and closes
// it. Close always runs so edits made before an error are kept.
func withSession(ctx context.Context, app *App, ref string, out io.Writer, fn func(*domain.Note, *autosave.Session) error) error {
	n, err := resolveNote(ctx, app, ref)
	if err != nil {
		return err
	}
	sess, err := openSession(ctx, app, n, out)
	if err != nil {
		return err
	}
	fnErr := fn(n, sess)
	if err := closeSession(sess); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

// noteFromValues returns a copy of base carrying the session's current
// values, for rendering and export.
func noteFromValues(base *domain.Note, v autosave.Values) (*domain.Note, error) {
	out := *base
	out.Title = v.Title
	out.Content = v.Content
	out.Tags = v.Tags
	out.ProjectID = domain.StrPtr(v.ProjectID)
	out.Metadata = v.Metadata
	out.GeneratedFeatures = v.Features
	out.GeneratedTasks = v.Tasks
	out.CanvasData = ""
	if len(v.Canvases) > 0 {
		raw, err := canvas.Encode(v.Canvases)
		if err != nil {
			return nil, err
		}
		out.CanvasData = raw
	}
	return &out, nil
}

package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/alexanderramin/draftboard/internal/repository"
	"github.com/alexanderramin/draftboard/internal/testutil"
)

type testEnv struct {
	db       *sql.DB
	notes    *repository.SQLiteNoteRepo
	projects *repository.SQLiteProjectRepo
	observer *recordingObserver
}

func setupEnv(t *testing.T) testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return testEnv{
		db:       database,
		notes:    repository.NewSQLiteNoteRepo(database),
		projects: repository.NewSQLiteProjectRepo(database),
		observer: &recordingObserver{},
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	for i, e := range o.events {
		out[i] = e.Name
	}
	return out
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

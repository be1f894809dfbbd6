package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/draftboard/internal/cli"
	"github.com/alexanderramin/draftboard/internal/config"
	"github.com/alexanderramin/draftboard/internal/db"
	"github.com/alexanderramin/draftboard/internal/intelligence"
	"github.com/alexanderramin/draftboard/internal/llm"
	"github.com/alexanderramin/draftboard/internal/repository"
	"github.com/alexanderramin/draftboard/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	noteRepo := repository.NewSQLiteNoteRepo(database)
	projectRepo := repository.NewSQLiteProjectRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	observer := service.NewSlogUseCaseObserver(logger)

	app := &cli.App{
		Notes:    service.NewNoteService(noteRepo, projectRepo, observer),
		Projects: service.NewProjectService(projectRepo, observer),
		Items:    service.NewGeneratedItemService(uow, observer),
		Import:   service.NewImportService(uow, observer),
		Delays:   cfg.Delays(),
		Logger:   logger,
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Intelligence services are only wired when the LLM is enabled.
	if cfg.LLM.Enabled {
		var llmObserver llm.Observer = llm.NoopObserver{}
		if cfg.LLM.LogCalls {
			llmObserver = llm.NewSlogObserver(logger)
		}
		client, err := llm.NewClient(cfg.LLM, llmObserver)
		if err != nil {
			return fmt.Errorf("configuring LLM: %w", err)
		}
		app.Features = intelligence.NewFeatureDraftService(client)
		app.Documents = intelligence.NewDocumentService(client)
	}

	return cli.NewRootCmd(app).ExecuteContext(context.Background())
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/manimstudio/internal/config"
	"github.com/jask/manimstudio/internal/editor"
	"github.com/jask/manimstudio/internal/history"
	"github.com/jask/manimstudio/internal/manim"
	"github.com/jask/manimstudio/internal/scene"
	"github.com/jask/manimstudio/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0o755); err != nil {
		log.Fatalf("mkdir history dir: %v", err)
	}

	db, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Fatalf("open history db: %v", err)
	}
	defer db.Close()

	if err := history.RunMigrations(db, "internal/history/migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	renders := history.NewRepo(db)

	builder := scene.NewBuilder()
	builder.OnDiagnostic = func(d scene.Diagnostic) {
		log.Printf("scene: op=%s id=%s key=%s: %s", d.Op, d.ObjectID, d.Key, d.Detail)
	}

	runner, err := manim.NewRunner(cfg.Manim.Binary, cfg.Manim.Args, cfg.Manim.Workdir)
	if err != nil {
		log.Fatalf("runner: %v", err)
	}

	coord := &editor.Coordinator{
		Scene:        builder,
		Renderer:     runner,
		History:      renders,
		Ctx:          ctx,
		PreviewFlags: cfg.Render.PreviewFlags,
		VideoFlags:   cfg.Render.VideoFlags,
	}

	app := tui.New(ctx, coord, renders)
	app.PreviewFile = filepath.Join(filepath.Dir(cfg.History.Path), "preview.png")
	p := tea.NewProgram(app, tea.WithAltScreen())

	// Render completions must land on the UI event loop.
	runner.Schedule = func(fn func()) {
		p.Send(tui.TaskMsg{Run: fn})
	}

	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

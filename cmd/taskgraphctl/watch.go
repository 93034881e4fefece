package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/nexus-automations/taskgraph/internal/dashboard"
	"github.com/nexus-automations/taskgraph/internal/ingest"
)

var watchCmd = &cobra.Command{
	Use:   "watch <descriptor-file>",
	Short: "Re-run analyze and plan whenever the descriptor file changes, in a live dashboard",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	model := dashboard.New(path)
	program := tea.NewProgram(model)

	log := logger.WithComponent("watch")
	refresh := func() dashboard.Refresh {
		r := dashboard.Refresh{Source: path, At: time.Now()}
		tasks, err := ingest.Load(path)
		if err != nil {
			log.Warn(context.Background(), "failed to reload descriptor file", "path", path, "error", err)
			r.Err = err
			return r
		}
		m, err := newManager(cmd, tasks)
		if err != nil {
			r.Err = err
			return r
		}
		defer m.Dispose()

		ctx := context.Background()
		analysis, _, err := m.Analyze(ctx)
		if err != nil {
			r.Err = err
			return r
		}
		r.Analysis = analysis

		plan, _, err := m.Plan(ctx, time.Now())
		if err != nil {
			// A refused plan (e.g. a cycle) still shows the analysis.
			return r
		}
		r.Plan = plan
		return r
	}

	go func() {
		program.Send(refresh())

		const debounce = 150 * time.Millisecond
		var pending bool
		timer := time.NewTimer(time.Hour)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					pending = true
					timer.Reset(debounce)
				}
			case <-timer.C:
				if pending {
					pending = false
					program.Send(refresh())
				}
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	_, err = program.Run()
	return err
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wayfarer-go/wayfarer/internal/config"
	"github.com/wayfarer-go/wayfarer/internal/model"
	"github.com/wayfarer-go/wayfarer/internal/monitor"
	"github.com/wayfarer-go/wayfarer/internal/storage"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	faint  lipgloss.Style
	status lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(18),
		value:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		faint:  lipgloss.NewStyle().Faint(true),
		status: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
	}
}

func newStatusCmd() *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last status written by a running scan loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = config.GetMonitorConfig().StatusFile
			}
			snap, err := monitor.ReadFile(file)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderStatus(snap, time.Now())+"\n")
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "status file (defaults to monitor.statusFile)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw snapshot")
	return cmd
}

func renderStatus(snap model.StatusSnapshot, now time.Time) string {
	s := newStyles()
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render(label), s.value.Render(value))
	}
	age := now.Sub(snap.Time).Round(time.Second)
	return lipgloss.JoinVertical(lipgloss.Left,
		s.title.Render(AppName+" status"),
		row("Session", s.status.Render(snap.SessionState)),
		row("Ticks", fmt.Sprintf("%d (last %.1f ms)", snap.Ticks, snap.LastTickMs)),
		row("Position", fmt.Sprintf("%.6f, %.6f", snap.Latitude, snap.Longitude)),
		row("Tracked", fmt.Sprintf("%d waypoints, %d creatures, %d gyms", snap.TrackedWaypoints, snap.TrackedCreatures, snap.TrackedGyms)),
		row("Journal queue", fmt.Sprintf("%d", snap.JournalQueue)),
		s.faint.Render(fmt.Sprintf("written %s ago", age)),
	)
}

func newJournalCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List the most recent activity journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if config.GetStorageConfig().Type != "database" {
				return errors.New("the journal is only kept across runs with storage.type database")
			}
			a, err := newApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			backend, err := storage.NewBackend(config.GetStorageConfig(), a.gormDB(), a.zlog)
			if err != nil {
				return err
			}
			records, err := backend.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderJournal(records))
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}

func renderJournal(records []core.JournalRecord) string {
	s := newStyles()
	if len(records) == 0 {
		return s.faint.Render("no journal entries") + "\n"
	}
	var b strings.Builder
	for _, r := range records {
		subject := r.SubjectID
		if r.Species != "" {
			subject = fmt.Sprintf("%s %s", r.Species, r.SubjectID)
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			s.faint.Render(r.Time.Local().Format(time.DateTime)+" "),
			s.label.Render(string(r.Kind)),
			s.value.Render(subject+" "),
			s.status.Render(r.Status),
		)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"studytracker/internal/export"
	"studytracker/internal/live"
	"studytracker/internal/repository"
	"studytracker/internal/service"
	"studytracker/internal/tui"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored user totals with completed tasks",
		Long: `Recompute each user's total study minutes and completed task count
from their completed tasks and report users whose stored totals differ.
With --apply the stored totals are overwritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apply, _ := cmd.Flags().GetBool("apply")

			_, database, err := openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			reconciler := service.NewReconcileService(
				repository.NewUserRepository(database),
				repository.NewTaskRepository(database),
				log.New(os.Stderr, "", log.LstdFlags),
			)
			report, err := reconciler.Reconcile(cmd.Context(), apply)
			if err != nil {
				return err
			}

			fmt.Printf("Users checked: %d\n", report.UsersChecked)
			fmt.Printf("Drifted:       %d\n", len(report.Drifts))
			for _, drift := range report.Drifts {
				fmt.Printf("  %s  stored %d min / %d tasks, derived %d min / %d tasks\n",
					drift.UserID,
					drift.Stored.StudyMinutes, drift.Stored.TasksCompleted,
					drift.Derived.StudyMinutes, drift.Derived.TasksCompleted)
			}
			if apply {
				fmt.Printf("Repaired:      %d\n", report.Repaired)
			}
			return nil
		},
	}

	cmd.Flags().Bool("apply", false, "Overwrite drifted totals with derived values")
	return cmd
}

func leaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print users ranked by total study time",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			_, database, err := openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			users := service.NewUserService(repository.NewUserRepository(database))
			entries, apiErr := users.Leaderboard(cmd.Context(), limit)
			if apiErr != nil {
				return apiErr
			}

			fmt.Printf("%-4s %-20s %8s %6s %7s\n", "#", "USER", "MINUTES", "TASKS", "STREAK")
			fmt.Println(strings.Repeat("-", 49))
			for _, entry := range entries {
				fmt.Printf("%-4d %-20s %8d %6d %7d\n",
					entry.Rank, entry.Username, entry.TotalStudyMinutes, entry.TasksCompleted, entry.CurrentStreak)
			}
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum rows")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's summaries and completed tasks to xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("user")
			out, _ := cmd.Flags().GetString("out")
			if username == "" {
				return fmt.Errorf("--user is required")
			}

			_, database, err := openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			ctx := cmd.Context()
			user, err := repository.NewUserRepository(database).GetByUsername(ctx, strings.ToLower(username))
			if err != nil {
				return fmt.Errorf("find user %s: %w", username, err)
			}
			summaries, err := repository.NewSummaryRepository(database).ListByUser(ctx, user.ID)
			if err != nil {
				return err
			}
			tasks, err := repository.NewTaskRepository(database).ListCompletedByUser(ctx, user.ID)
			if err != nil {
				return err
			}

			if err := export.WriteFile(out, summaries, tasks); err != nil {
				return err
			}
			fmt.Printf("Wrote %d summaries and %d tasks to %s\n", len(summaries), len(tasks), out)
			return nil
		},
	}

	cmd.Flags().StringP("user", "u", "", "Username to export")
	cmd.Flags().StringP("out", "o", "study-history.xlsx", "Output file")
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [task-id]",
		Short: "Show a task's timer live in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, _ := cmd.Flags().GetDuration("interval")
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}

			_, database, err := openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			frames := live.Stream(ctx, repository.NewTaskRepository(database), args[0], interval, time.Now)
			_, err = tea.NewProgram(tui.NewWatchModel(frames, cancel)).Run()
			return err
		},
	}

	cmd.Flags().Duration("interval", time.Second, "Refresh interval")
	return cmd
}

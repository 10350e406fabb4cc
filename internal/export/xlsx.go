// Package export writes a user's study history to an Excel workbook.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"studytracker/internal/model"
)

const (
	SummariesSheet = "Summaries"
	TasksSheet     = "Tasks"
)

var summaryHeader = []interface{}{
	"Date", "Maths problems", "Physics problems", "Chemistry problems",
	"Topics covered", "Notes", "Self rating", "Study hours", "Tasks completed", "Success rate %",
}

var taskHeader = []interface{}{
	"Date", "Subject", "Name", "Estimated minutes", "Actual minutes", "Status", "Completed at",
}

// Workbook builds a workbook with one row per summary and one per task.
func Workbook(summaries []model.DailySummary, tasks []model.Task) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), SummariesSheet)
	f.NewSheet(TasksSheet)

	if err := writeRows(f, SummariesSheet, summaryHeader, len(summaries), func(i int) []interface{} {
		s := summaries[i]
		return []interface{}{
			s.Date, s.MathsProblems, s.PhysicsProblems, s.ChemistryProblems,
			s.TopicsCovered, s.Notes, s.SelfRating, s.TotalStudyHours, s.TasksCompleted, s.SuccessRate,
		}
	}); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := writeRows(f, TasksSheet, taskHeader, len(tasks), func(i int) []interface{} {
		t := tasks[i]
		completedAt := ""
		if t.CompletedAt != nil {
			completedAt = t.CompletedAt.UTC().Format("2006-01-02 15:04:05")
		}
		return []interface{}{
			t.TaskDate, t.Subject, t.Name, t.EstimatedMinutes, t.ActualMinutes, t.Status, completedAt,
		}
	}); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}

// WriteFile saves the workbook for summaries and tasks to path.
func WriteFile(path string, summaries []model.DailySummary, tasks []model.Task) error {
	f, err := Workbook(summaries, tasks)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []interface{}, n int, row func(int) []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

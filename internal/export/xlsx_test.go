package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"studytracker/internal/model"
)

func TestWriteFile(t *testing.T) {
	completedAt := time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)
	summaries := []model.DailySummary{
		{Date: "2024-03-04", MathsProblems: 12, TopicsCovered: "Limits", SelfRating: 4, TotalStudyHours: 1.5, TasksCompleted: 1, SuccessRate: 33},
	}
	tasks := []model.Task{
		{TaskDate: "2024-03-04", Subject: model.SubjectMaths, Name: "Limits drill", EstimatedMinutes: 60, ActualMinutes: 90, Status: model.StatusCompletedDelayed, CompletedAt: &completedAt},
		{TaskDate: "2024-03-04", Subject: model.SubjectOther, Name: "Reading", EstimatedMinutes: 20, Status: model.StatusPending},
	}

	path := filepath.Join(t.TempDir(), "history.xlsx")
	if err := WriteFile(path, summaries, tasks); err != nil {
		t.Fatalf("write file: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SummariesSheet)
	if err != nil {
		t.Fatalf("read summaries: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one summary row, got %d", len(rows))
	}
	if rows[1][0] != "2024-03-04" || rows[1][1] != "12" || rows[1][4] != "Limits" {
		t.Fatalf("unexpected summary row: %v", rows[1])
	}

	rows, err = f.GetRows(TasksSheet)
	if err != nil {
		t.Fatalf("read tasks: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and two task rows, got %d", len(rows))
	}
	if rows[1][2] != "Limits drill" || rows[1][5] != model.StatusCompletedDelayed || rows[1][6] != "2024-03-04 10:30:00" {
		t.Fatalf("unexpected task row: %v", rows[1])
	}
}

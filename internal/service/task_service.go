package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "studytracker/internal/errors"
	"studytracker/internal/model"
	"studytracker/internal/repository"
	"studytracker/internal/tracking"
)

const (
	maxFeedDays  = 31
	maxBatchSize = 50
)

type TaskService struct {
	tasks       TaskStore
	completions CompletionRecorder
	location    *time.Location
	logger      *log.Logger
	now         func() time.Time
}

// TaskView is a task as seen at ServerTime, with the live elapsed value
// computed from its timestamps.
type TaskView struct {
	model.Task
	EffectiveElapsedSeconds int64     `json:"effectiveElapsedSeconds"`
	ServerTime              time.Time `json:"serverTime"`
}

type TransitionResult struct {
	Task TaskView    `json:"task"`
	User *model.User `json:"user,omitempty"`
}

type CreateTaskInput struct {
	Name             string
	Subject          string
	EstimatedMinutes int
	TaskDate         string
}

func NewTaskService(tasks TaskStore, completions CompletionRecorder, location *time.Location, logger *log.Logger) *TaskService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TaskService{
		tasks:       tasks,
		completions: completions,
		location:    location,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the wall clock used for transitions and views.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// Today is the current calendar date in the configured time zone.
func (s *TaskService) Today() string {
	return s.now().In(s.location).Format(model.DateLayout)
}

func (s *TaskService) Create(ctx context.Context, userID string, input CreateTaskInput) (*TaskView, *apperrors.APIError) {
	now := s.clock()
	task, apiErr := s.newTask(userID, input, now)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, apperrors.Internal("failed to create task")
	}

	view := s.toView(task, now)
	return &view, nil
}

// CreateBatch plans several tasks at once. Every row is validated before
// anything is stored, and the rows are inserted together or not at all.
func (s *TaskService) CreateBatch(ctx context.Context, userID string, inputs []CreateTaskInput) ([]TaskView, *apperrors.APIError) {
	if len(inputs) == 0 {
		return nil, apperrors.BadRequest("empty_batch", "at least one task is required")
	}
	if len(inputs) > maxBatchSize {
		return nil, apperrors.BadRequest("batch_too_large", "at most 50 tasks can be planned at once")
	}

	now := s.clock()
	tasks := make([]model.Task, 0, len(inputs))
	for i, input := range inputs {
		task, apiErr := s.newTask(userID, input, now)
		if apiErr != nil {
			apiErr.Details = map[string]interface{}{"row": i}
			return nil, apiErr
		}
		tasks = append(tasks, task)
	}

	if err := s.tasks.CreateMany(ctx, tasks); err != nil {
		return nil, apperrors.Internal("failed to create tasks")
	}

	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, s.toView(task, now))
	}
	return views, nil
}

func (s *TaskService) newTask(userID string, input CreateTaskInput, now time.Time) (model.Task, *apperrors.APIError) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return model.Task{}, apperrors.BadRequest("invalid_name", "task name is required")
	}
	if !model.IsValidSubject(input.Subject) {
		return model.Task{}, apperrors.BadRequest("invalid_subject", "subject must be one of Maths, Physics, Chemistry, Other")
	}
	if input.EstimatedMinutes <= 0 {
		return model.Task{}, apperrors.BadRequest("invalid_estimate", "estimatedMinutes must be a positive number of minutes")
	}

	taskDate := input.TaskDate
	if taskDate == "" {
		taskDate = s.Today()
	} else if !isValidDate(taskDate) {
		return model.Task{}, apperrors.BadRequest("invalid_date", "taskDate must be formatted as YYYY-MM-DD")
	}

	return model.Task{
		ID:               uuid.NewString(),
		UserID:           userID,
		Subject:          input.Subject,
		Name:             name,
		EstimatedMinutes: input.EstimatedMinutes,
		TaskDate:         taskDate,
		Status:           model.StatusPending,
		CreatedAt:        now,
	}, nil
}

func (s *TaskService) Get(ctx context.Context, taskID string) (*TaskView, *apperrors.APIError) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get task")
	}

	view := s.toView(*task, s.clock())
	return &view, nil
}

// Active returns the user's in-progress task, or nil when there is none.
func (s *TaskService) Active(ctx context.Context, userID string) (*TaskView, *apperrors.APIError) {
	task, err := s.tasks.FindInProgress(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get active task")
	}

	view := s.toView(*task, s.clock())
	return &view, nil
}

func (s *TaskService) ListForDay(ctx context.Context, userID, date string) ([]TaskView, *apperrors.APIError) {
	if date == "" {
		date = s.Today()
	} else if !isValidDate(date) {
		return nil, apperrors.BadRequest("invalid_date", "date must be formatted as YYYY-MM-DD")
	}

	tasks, err := s.tasks.ListByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, apperrors.Internal("failed to list tasks")
	}
	return s.toViews(tasks), nil
}

// Feed lists every user's tasks dated within [from, to].
func (s *TaskService) Feed(ctx context.Context, from, to string) ([]TaskView, *apperrors.APIError) {
	today := s.Today()
	if from == "" {
		from = today
	}
	if to == "" {
		to = from
	}

	fromDate, err := time.Parse(model.DateLayout, from)
	if err != nil {
		return nil, apperrors.BadRequest("invalid_date", "from must be formatted as YYYY-MM-DD")
	}
	toDate, err := time.Parse(model.DateLayout, to)
	if err != nil {
		return nil, apperrors.BadRequest("invalid_date", "to must be formatted as YYYY-MM-DD")
	}
	if toDate.Before(fromDate) {
		return nil, apperrors.BadRequest("invalid_range", "to must not be before from")
	}
	if toDate.Sub(fromDate) >= maxFeedDays*24*time.Hour {
		return nil, apperrors.BadRequest("invalid_range", "range must span at most 31 days")
	}

	tasks, err := s.tasks.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, apperrors.Internal("failed to list feed")
	}
	return s.toViews(tasks), nil
}

// Transition runs action on the caller's task. Entering in_progress is
// refused while another of the caller's tasks is in progress. Completion and
// the owner's aggregate update commit together.
func (s *TaskService) Transition(ctx context.Context, userID, taskID string, action tracking.Action) (*TransitionResult, *apperrors.APIError) {
	now := s.clock()
	tx, err := s.tasks.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	task, err := s.tasks.GetTx(ctx, tx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get task")
	}
	if task.UserID != userID {
		return nil, apperrors.NotFound("task_not_found", "task not found")
	}

	if action.Activates() {
		active, findErr := s.tasks.FindInProgressTx(ctx, tx, userID)
		if findErr != nil && !errors.Is(findErr, repository.ErrNotFound) {
			return nil, apperrors.Internal("failed to check active task")
		}
		if findErr == nil && active.ID != task.ID {
			return nil, s.activeTaskConflict(active, now)
		}
	}

	next, err := tracking.Apply(*task, action, now)
	if err != nil {
		return nil, s.transitionError(err, task, action)
	}

	if err := s.tasks.SaveTransitionTx(ctx, tx, task.Status, &next); err != nil {
		switch {
		case errors.Is(err, repository.ErrActiveTaskExists):
			return nil, s.activeTaskConflict(nil, now)
		case errors.Is(err, repository.ErrStaleTask):
			return nil, apperrors.Conflict("task_changed", "task changed, reload and retry", nil)
		default:
			return nil, apperrors.Internal("failed to save task")
		}
	}

	result := TransitionResult{}
	if event, ok := tracking.CompletionOf(next); ok {
		user, recordErr := s.completions.RecordCompletionTx(ctx, tx, event.UserID, event.ActualMinutes, event.Date(s.location))
		if recordErr != nil {
			return nil, apperrors.Internal("failed to update user stats")
		}
		result.User = user
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	result.Task = s.toView(next, now)
	return &result, nil
}

func (s *TaskService) transitionError(err error, task *model.Task, action tracking.Action) *apperrors.APIError {
	switch {
	case errors.Is(err, tracking.ErrInvalidTransition):
		return apperrors.Conflict("invalid_transition", err.Error(), map[string]interface{}{
			"status": task.Status,
			"action": action,
		})
	case errors.Is(err, tracking.ErrClockSkew):
		s.logger.Printf("task %s: %s refused: %v", task.ID, action, err)
		return apperrors.UnprocessableEntity("clock_skew", "task timestamps are ahead of the server clock")
	default:
		return apperrors.Internal("failed to apply transition")
	}
}

func (s *TaskService) activeTaskConflict(active *model.Task, now time.Time) *apperrors.APIError {
	var details interface{}
	if active != nil {
		details = map[string]interface{}{"activeTask": s.toView(*active, now)}
	}
	return apperrors.Conflict(
		"active_task_exists",
		tracking.ErrConcurrentActiveTask.Error()+"; pause or complete it first",
		details,
	)
}

func (s *TaskService) toViews(tasks []model.Task) []TaskView {
	now := s.clock()
	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, s.toView(task, now))
	}
	return views
}

func (s *TaskService) toView(task model.Task, now time.Time) TaskView {
	elapsed, err := tracking.EffectiveElapsed(task, now)
	if err != nil {
		s.logger.Printf("task %s: %v", task.ID, err)
	}
	return TaskView{
		Task:                    task,
		EffectiveElapsedSeconds: elapsed,
		ServerTime:              now,
	}
}

// Task timestamps persist at millisecond precision; transitions use the same
// precision so recomputation from storage is exact.
func (s *TaskService) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func isValidDate(raw string) bool {
	_, err := time.Parse(model.DateLayout, raw)
	return err == nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strconv"
	"strings"

	"vyruchaiBack/internal/fsm"
	"vyruchaiBack/internal/models"
)

// Canned system messages dropped into chats on lifecycle changes.
const (
	msgResponseAccepted = "Ваш отклик принят! Можете обсудить детали."
	msgResponseRejected = "Заказчик выбрал другого исполнителя."
	msgTaskCompleted    = "Поручение выполнено. Спасибо!"
)

type TaskStore interface {
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)
	GetTaskByID(ctx context.Context, id int) (models.Task, error)
	ListOpenTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	GetTasksByUserID(ctx context.Context, userID int) ([]models.Task, error)
	GetTasksByExecutorID(ctx context.Context, executorID int) ([]models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) (models.Task, error)
	DeleteTask(ctx context.Context, id int) error
	AssignExecutor(ctx context.Context, taskID, executorID int) error
	UpdateStatus(ctx context.Context, id int, fromStatus, toStatus string) error
}

type ResponseStore interface {
	CreateResponse(ctx context.Context, resp models.TaskResponse) (models.TaskResponse, error)
	HasResponse(ctx context.Context, taskID, userID int) (bool, error)
	GetResponsesByTaskID(ctx context.Context, taskID int) ([]models.TaskResponse, error)
	UpdateResponseStatus(ctx context.Context, taskID, userID int, status string) error
	RejectOthers(ctx context.Context, taskID, acceptedUserID int) error
}

type TaskChatStore interface {
	GetOrCreateChat(ctx context.Context, taskID, customerID, executorID int) (int, bool, error)
	GetChatIDsByTask(ctx context.Context, taskID int, excludeExecutorID int) ([]int, error)
	GetChatIDByTaskAndExecutor(ctx context.Context, taskID, executorID int) (int, error)
}

type SystemMessageStore interface {
	CreateMessage(ctx context.Context, msg models.Message) (models.Message, error)
	CreateMessages(ctx context.Context, msgs []models.Message) error
}

// Notifier fans a push notification out to one user's device.
type Notifier interface {
	Push(ctx context.Context, userID int, title, body string, data map[string]string) error
}

// TaskLocator is the GEO index of open tasks.
type TaskLocator interface {
	Add(ctx context.Context, taskID int, lon, lat float64) error
	Remove(ctx context.Context, taskID int) error
	Nearby(ctx context.Context, lon, lat, radiusKM float64) ([]int, error)
}

type TaskService struct {
	TaskRepo     TaskStore
	ResponseRepo ResponseStore
	ChatRepo     TaskChatStore
	MessageRepo  SystemMessageStore
	Notifier     Notifier
	Locator      TaskLocator
}

func (s *TaskService) ListOpenTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.TaskRepo.ListOpenTasks(ctx, filter)
}

// NearbyTasks resolves "tasks around me" through the GEO index, then
// loads each task. Tasks that closed since indexing are skipped.
func (s *TaskService) NearbyTasks(ctx context.Context, lon, lat, radiusKM float64) ([]models.Task, error) {
	if s.Locator == nil {
		return nil, errors.New("task locator is not configured")
	}
	ids, err := s.Locator.Nearby(ctx, lon, lat, radiusKM)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		task, err := s.TaskRepo.GetTaskByID(ctx, id)
		if errors.Is(err, models.ErrTaskNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if task.Status != fsm.StatusOpen {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id int) (models.Task, error) {
	return s.TaskRepo.GetTaskByID(ctx, id)
}

func (s *TaskService) GetTasksByUserID(ctx context.Context, userID int) ([]models.Task, error) {
	return s.TaskRepo.GetTasksByUserID(ctx, userID)
}

func (s *TaskService) GetTasksByExecutorID(ctx context.Context, executorID int) ([]models.Task, error) {
	return s.TaskRepo.GetTasksByExecutorID(ctx, executorID)
}

func (s *TaskService) CreateTask(ctx context.Context, userID int, task models.Task) (models.Task, error) {
	task.UserID = userID
	task.Title = strings.TrimSpace(task.Title)
	task.Description = strings.TrimSpace(task.Description)

	if err := validateTask(task); err != nil {
		return models.Task{}, err
	}

	created, err := s.TaskRepo.CreateTask(ctx, task)
	if err != nil {
		return models.Task{}, err
	}

	if s.Locator != nil && created.Longitude != 0 && created.Latitude != 0 {
		if err := s.Locator.Add(ctx, created.ID, created.Longitude, created.Latitude); err != nil {
			log.Printf("task locator add %d: %v", created.ID, err)
		}
	}
	return created, nil
}

func validateTask(task models.Task) error {
	if len([]rune(task.Title)) < TitleMinLen || len([]rune(task.Title)) > TitleMaxLen {
		return models.NewValidationError("title", "Заголовок должен быть от 5 до 100 символов")
	}
	if len([]rune(task.Description)) < DescriptionMinLen || len([]rune(task.Description)) > DescriptionMaxLen {
		return models.NewValidationError("description", "Описание должно быть от 10 до 2000 символов")
	}
	if task.Budget < 0 || task.Budget > RewardAmountMax {
		return models.NewValidationError("budget", "Укажите бюджет от 0 до 1 000 000")
	}
	if task.Address == "" {
		return models.NewValidationError("address", "Укажите адрес")
	}
	return nil
}

// UpdateTask lets the owner edit an open task. Assigned or finished
// tasks stay frozen.
func (s *TaskService) UpdateTask(ctx context.Context, callerID int, task models.Task) (models.Task, error) {
	existing, err := s.TaskRepo.GetTaskByID(ctx, task.ID)
	if err != nil {
		return models.Task{}, err
	}
	if existing.UserID != callerID {
		return models.Task{}, models.ErrNotTaskOwner
	}
	if existing.Status != fsm.StatusOpen {
		return models.Task{}, models.ErrTaskNotOpen
	}

	task.UserID = existing.UserID
	task.Title = strings.TrimSpace(task.Title)
	task.Description = strings.TrimSpace(task.Description)
	if err := validateTask(task); err != nil {
		return models.Task{}, err
	}

	updated, err := s.TaskRepo.UpdateTask(ctx, task)
	if err != nil {
		return models.Task{}, err
	}
	if s.Locator != nil && updated.Longitude != 0 && updated.Latitude != 0 {
		if err := s.Locator.Add(ctx, updated.ID, updated.Longitude, updated.Latitude); err != nil {
			log.Printf("task locator add %d: %v", updated.ID, err)
		}
	}
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID, callerID int) error {
	task, err := s.TaskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != callerID {
		return models.ErrNotTaskOwner
	}

	if err := s.TaskRepo.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	if s.Locator != nil {
		if err := s.Locator.Remove(ctx, taskID); err != nil {
			log.Printf("task locator remove %d: %v", taskID, err)
		}
	}
	return nil
}

// CreateResponse records an executor's bid. Outcomes mirror the offer
// flow: ErrTaskNotFound, ErrCannotRespondOwnTask, ErrTaskNotOpen,
// ErrAlreadyResponded. The unique key decides races, the HasResponse
// pre-check only shortens the feedback path.
func (s *TaskService) CreateResponse(ctx context.Context, taskID, userID int, message *string) (models.TaskResponse, error) {
	task, err := s.TaskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return models.TaskResponse{}, err
	}
	if task.UserID == userID {
		return models.TaskResponse{}, models.ErrCannotRespondOwnTask
	}
	if task.Status != fsm.StatusOpen {
		return models.TaskResponse{}, models.ErrTaskNotOpen
	}

	responded, err := s.ResponseRepo.HasResponse(ctx, taskID, userID)
	if err != nil {
		return models.TaskResponse{}, err
	}
	if responded {
		return models.TaskResponse{}, models.ErrAlreadyResponded
	}

	resp, err := s.ResponseRepo.CreateResponse(ctx, models.TaskResponse{
		TaskID:  taskID,
		UserID:  userID,
		Message: message,
		Status:  models.ResponsePending,
	})
	if err != nil {
		return models.TaskResponse{}, err
	}

	s.push(ctx, task.UserID, "Новый отклик", "На ваше поручение откликнулся исполнитель", map[string]string{
		"type":    "new_response",
		"task_id": strconv.Itoa(taskID),
	})
	return resp, nil
}

// GetResponses lists bids on a task. Only the owner sees them.
func (s *TaskService) GetResponses(ctx context.Context, taskID, callerID int) ([]models.TaskResponse, error) {
	task, err := s.TaskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != callerID {
		return nil, models.ErrNotTaskOwner
	}
	return s.ResponseRepo.GetResponsesByTaskID(ctx, taskID)
}

// AcceptResponse assigns the executor and moves the task to
// in_progress in one optimistic update, then marks the accepted
// response, rejects the rest, and drops system messages into the
// chats: a confirmation to the winner, a notice to everyone else.
func (s *TaskService) AcceptResponse(ctx context.Context, taskID, ownerID, executorID int) error {
	task, err := s.TaskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != ownerID {
		return models.ErrNotTaskOwner
	}

	responded, err := s.ResponseRepo.HasResponse(ctx, taskID, executorID)
	if err != nil {
		return err
	}
	if !responded {
		return models.ErrResponseNotFound
	}

	if err := s.TaskRepo.AssignExecutor(ctx, taskID, executorID); err != nil {
		return err
	}
	if err := s.ResponseRepo.UpdateResponseStatus(ctx, taskID, executorID, models.ResponseAccepted); err != nil {
		return err
	}
	if err := s.ResponseRepo.RejectOthers(ctx, taskID, executorID); err != nil {
		return err
	}

	if s.Locator != nil {
		if err := s.Locator.Remove(ctx, taskID); err != nil {
			log.Printf("task locator remove %d: %v", taskID, err)
		}
	}

	chatID, _, err := s.ChatRepo.GetOrCreateChat(ctx, taskID, ownerID, executorID)
	if err != nil {
		return err
	}
	if _, err := s.MessageRepo.CreateMessage(ctx, models.Message{
		ChatID:   chatID,
		SenderID: ownerID,
		Content:  msgResponseAccepted,
	}); err != nil {
		return err
	}

	otherChats, err := s.ChatRepo.GetChatIDsByTask(ctx, taskID, executorID)
	if err != nil {
		return err
	}
	if len(otherChats) > 0 {
		notices := make([]models.Message, 0, len(otherChats))
		for _, id := range otherChats {
			notices = append(notices, models.Message{
				ChatID:   id,
				SenderID: ownerID,
				Content:  msgResponseRejected,
			})
		}
		if err := s.MessageRepo.CreateMessages(ctx, notices); err != nil {
			return err
		}
	}

	s.push(ctx, executorID, "Отклик принят", "Заказчик выбрал вас исполнителем", map[string]string{
		"type":    "response_accepted",
		"task_id": strconv.Itoa(taskID),
	})
	return nil
}

// RejectResponse marks one pending bid rejected and, if a chat already
// exists with that executor, drops the notice there.
func (s *TaskService) RejectResponse(ctx context.Context, taskID, ownerID, executorID int) error {
	task, err := s.TaskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != ownerID {
		return models.ErrNotTaskOwner
	}

	if err := s.ResponseRepo.UpdateResponseStatus(ctx, taskID, executorID, models.ResponseRejected); err != nil {
		return err
	}

	chatID, err := s.ChatRepo.GetChatIDByTaskAndExecutor(ctx, taskID, executorID)
	if errors.Is(err, models.ErrChatNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.MessageRepo.CreateMessage(ctx, models.Message{
		ChatID:   chatID,
		SenderID: ownerID,
		Content:  msgResponseRejected,
	})
	return err
}

// CompleteTask moves an in_progress task to completed and notifies
// the executor in chat.
func (s *TaskService) CompleteTask(ctx context.Context, taskID, ownerID int) error {
	task, err := s.TaskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != ownerID {
		return models.ErrNotTaskOwner
	}
	if task.Status == fsm.StatusCompleted {
		return nil
	}
	if task.Status != fsm.StatusInProgress {
		return models.ErrInvalidStatusChange
	}

	err = s.TaskRepo.UpdateStatus(ctx, taskID, fsm.StatusInProgress, fsm.StatusCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		current, ferr := s.TaskRepo.GetTaskByID(ctx, taskID)
		if ferr == nil && current.Status == fsm.StatusCompleted {
			return nil
		}
		return models.ErrInvalidStatusChange
	}
	if err != nil {
		return err
	}

	if task.ExecutorID != nil {
		chatID, cerr := s.ChatRepo.GetChatIDByTaskAndExecutor(ctx, taskID, *task.ExecutorID)
		if cerr == nil {
			if _, merr := s.MessageRepo.CreateMessage(ctx, models.Message{
				ChatID:   chatID,
				SenderID: ownerID,
				Content:  msgTaskCompleted,
			}); merr != nil {
				return merr
			}
		} else if !errors.Is(cerr, models.ErrChatNotFound) {
			return cerr
		}

		s.push(ctx, *task.ExecutorID, "Поручение завершено", "Заказчик отметил поручение выполненным", map[string]string{
			"type":    "task_completed",
			"task_id": strconv.Itoa(taskID),
		})
	}
	return nil
}

// CancelTask lets the owner cancel a task that has not completed.
func (s *TaskService) CancelTask(ctx context.Context, taskID, ownerID int) error {
	task, err := s.TaskRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != ownerID {
		return models.ErrNotTaskOwner
	}
	if task.Status == fsm.StatusCancelled {
		return nil
	}
	if !fsm.CanTransition(task.Status, fsm.StatusCancelled) {
		return models.ErrInvalidStatusChange
	}

	if err := s.TaskRepo.UpdateStatus(ctx, taskID, task.Status, fsm.StatusCancelled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrInvalidStatusChange
		}
		return err
	}
	if s.Locator != nil {
		if err := s.Locator.Remove(ctx, taskID); err != nil {
			log.Printf("task locator remove %d: %v", taskID, err)
		}
	}
	return nil
}

// push is best-effort: delivery failures are logged, never surfaced.
func (s *TaskService) push(ctx context.Context, userID int, title, body string, data map[string]string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Push(ctx, userID, title, body, data); err != nil {
		log.Printf("push to user %d: %v", userID, err)
	}
}

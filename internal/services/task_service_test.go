package services

import (
	"context"
	"errors"
	"testing"

	"vyruchaiBack/internal/fsm"
	"vyruchaiBack/internal/models"
)

type stubTaskStore struct {
	tasks  map[int]models.Task
	nextID int
}

func newStubTaskStore() *stubTaskStore {
	return &stubTaskStore{tasks: make(map[int]models.Task), nextID: 1}
}

func (s *stubTaskStore) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	task.ID = s.nextID
	s.nextID++
	task.Status = fsm.StatusOpen
	s.tasks[task.ID] = task
	return task, nil
}

func (s *stubTaskStore) GetTaskByID(ctx context.Context, id int) (models.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return models.Task{}, models.ErrTaskNotFound
	}
	return task, nil
}

func (s *stubTaskStore) ListOpenTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var out []models.Task
	for _, t := range s.tasks {
		if t.Status == fsm.StatusOpen {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTaskStore) GetTasksByUserID(ctx context.Context, userID int) ([]models.Task, error) {
	var out []models.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTaskStore) GetTasksByExecutorID(ctx context.Context, executorID int) ([]models.Task, error) {
	var out []models.Task
	for _, t := range s.tasks {
		if t.ExecutorID != nil && *t.ExecutorID == executorID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTaskStore) UpdateTask(ctx context.Context, task models.Task) (models.Task, error) {
	existing, ok := s.tasks[task.ID]
	if !ok {
		return models.Task{}, models.ErrTaskNotFound
	}
	task.Status = existing.Status
	s.tasks[task.ID] = task
	return task, nil
}

func (s *stubTaskStore) DeleteTask(ctx context.Context, id int) error {
	if _, ok := s.tasks[id]; !ok {
		return models.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *stubTaskStore) AssignExecutor(ctx context.Context, taskID, executorID int) error {
	task, ok := s.tasks[taskID]
	if !ok || task.Status != fsm.StatusOpen {
		return models.ErrTaskNotOpen
	}
	task.Status = fsm.StatusInProgress
	task.ExecutorID = &executorID
	s.tasks[taskID] = task
	return nil
}

func (s *stubTaskStore) UpdateStatus(ctx context.Context, id int, fromStatus, toStatus string) error {
	task, ok := s.tasks[id]
	if !ok || task.Status != fromStatus {
		return errors.New("no rows matched")
	}
	task.Status = toStatus
	s.tasks[id] = task
	return nil
}

type stubResponseStore struct {
	responses map[[2]int]models.TaskResponse
	nextID    int
}

func newStubResponseStore() *stubResponseStore {
	return &stubResponseStore{responses: make(map[[2]int]models.TaskResponse), nextID: 1}
}

func (s *stubResponseStore) CreateResponse(ctx context.Context, resp models.TaskResponse) (models.TaskResponse, error) {
	key := [2]int{resp.TaskID, resp.UserID}
	if _, ok := s.responses[key]; ok {
		return models.TaskResponse{}, models.ErrAlreadyResponded
	}
	resp.ID = s.nextID
	s.nextID++
	s.responses[key] = resp
	return resp, nil
}

func (s *stubResponseStore) HasResponse(ctx context.Context, taskID, userID int) (bool, error) {
	_, ok := s.responses[[2]int{taskID, userID}]
	return ok, nil
}

func (s *stubResponseStore) GetResponsesByTaskID(ctx context.Context, taskID int) ([]models.TaskResponse, error) {
	var out []models.TaskResponse
	for _, r := range s.responses {
		if r.TaskID == taskID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubResponseStore) UpdateResponseStatus(ctx context.Context, taskID, userID int, status string) error {
	key := [2]int{taskID, userID}
	resp, ok := s.responses[key]
	if !ok {
		return models.ErrResponseNotFound
	}
	resp.Status = status
	s.responses[key] = resp
	return nil
}

func (s *stubResponseStore) RejectOthers(ctx context.Context, taskID, acceptedUserID int) error {
	for key, r := range s.responses {
		if r.TaskID == taskID && r.UserID != acceptedUserID && r.Status == models.ResponsePending {
			r.Status = models.ResponseRejected
			s.responses[key] = r
		}
	}
	return nil
}

type stubChatStore struct {
	chats  map[[2]int]models.Chat
	nextID int
}

func newStubChatStore() *stubChatStore {
	return &stubChatStore{chats: make(map[[2]int]models.Chat), nextID: 1}
}

func (s *stubChatStore) GetOrCreateChat(ctx context.Context, taskID, customerID, executorID int) (int, bool, error) {
	key := [2]int{taskID, executorID}
	if chat, ok := s.chats[key]; ok {
		return chat.ID, false, nil
	}
	chat := models.Chat{ID: s.nextID, TaskID: taskID, CustomerID: customerID, ExecutorID: executorID}
	s.nextID++
	s.chats[key] = chat
	return chat.ID, true, nil
}

func (s *stubChatStore) GetChatByID(ctx context.Context, id int) (models.Chat, error) {
	for _, chat := range s.chats {
		if chat.ID == id {
			return chat, nil
		}
	}
	return models.Chat{}, models.ErrChatNotFound
}

func (s *stubChatStore) GetChatsByUserID(ctx context.Context, userID int) ([]models.Chat, error) {
	var out []models.Chat
	for _, chat := range s.chats {
		if chat.CustomerID == userID || chat.ExecutorID == userID {
			out = append(out, chat)
		}
	}
	return out, nil
}

func (s *stubChatStore) GetChatIDsByTask(ctx context.Context, taskID int, excludeExecutorID int) ([]int, error) {
	var out []int
	for _, chat := range s.chats {
		if chat.TaskID == taskID && chat.ExecutorID != excludeExecutorID {
			out = append(out, chat.ID)
		}
	}
	return out, nil
}

func (s *stubChatStore) GetChatIDByTaskAndExecutor(ctx context.Context, taskID, executorID int) (int, error) {
	if chat, ok := s.chats[[2]int{taskID, executorID}]; ok {
		return chat.ID, nil
	}
	return 0, models.ErrChatNotFound
}

func (s *stubChatStore) DeleteChat(ctx context.Context, id int) error {
	for key, chat := range s.chats {
		if chat.ID == id {
			delete(s.chats, key)
			return nil
		}
	}
	return models.ErrChatNotFound
}

type stubMessageStore struct {
	messages []models.Message
	nextID   int
}

func (s *stubMessageStore) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	s.nextID++
	msg.ID = s.nextID
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *stubMessageStore) CreateMessages(ctx context.Context, msgs []models.Message) error {
	for _, m := range msgs {
		s.nextID++
		m.ID = s.nextID
		s.messages = append(s.messages, m)
	}
	return nil
}

func (s *stubMessageStore) GetMessagesByChatID(ctx context.Context, chatID int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubMessageStore) MarkRead(ctx context.Context, chatID, readerID int) error {
	for i, m := range s.messages {
		if m.ChatID == chatID && m.SenderID != readerID {
			s.messages[i].Read = true
		}
	}
	return nil
}

func (s *stubMessageStore) CountUnread(ctx context.Context, userID int) (int, error) {
	count := 0
	for _, m := range s.messages {
		if !m.Read && m.SenderID != userID {
			count++
		}
	}
	return count, nil
}

type stubNotifier struct {
	pushes []int
}

func (s *stubNotifier) Push(ctx context.Context, userID int, title, body string, data map[string]string) error {
	s.pushes = append(s.pushes, userID)
	return nil
}

type stubLocator struct {
	members map[int][2]float64
}

func newStubLocator() *stubLocator {
	return &stubLocator{members: make(map[int][2]float64)}
}

func (s *stubLocator) Add(ctx context.Context, taskID int, lon, lat float64) error {
	s.members[taskID] = [2]float64{lon, lat}
	return nil
}

func (s *stubLocator) Remove(ctx context.Context, taskID int) error {
	delete(s.members, taskID)
	return nil
}

func (s *stubLocator) Nearby(ctx context.Context, lon, lat, radiusKM float64) ([]int, error) {
	var out []int
	for id := range s.members {
		out = append(out, id)
	}
	return out, nil
}

func newTestTaskService() (*TaskService, *stubTaskStore, *stubResponseStore, *stubChatStore, *stubMessageStore, *stubNotifier) {
	tasks := newStubTaskStore()
	responses := newStubResponseStore()
	chats := newStubChatStore()
	messages := &stubMessageStore{}
	notifier := &stubNotifier{}
	svc := &TaskService{
		TaskRepo:     tasks,
		ResponseRepo: responses,
		ChatRepo:     chats,
		MessageRepo:  messages,
		Notifier:     notifier,
		Locator:      newStubLocator(),
	}
	return svc, tasks, responses, chats, messages, notifier
}

func validTask() models.Task {
	return models.Task{
		Title:       "Выгулять собаку",
		Description: "Прогулка 30 минут в парке рядом",
		Budget:      1000,
		Address:     "ул. Абая, 10",
		Latitude:    51.1287,
		Longitude:   71.4305,
		Category:    "прогулки",
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _, _, _, _, _ := newTestTaskService()
	ctx := context.Background()

	bad := validTask()
	bad.Title = "ok"
	if _, err := svc.CreateTask(ctx, 1, bad); err == nil {
		t.Fatal("expected validation error for short title")
	}

	noAddr := validTask()
	noAddr.Address = ""
	if _, err := svc.CreateTask(ctx, 1, noAddr); err == nil {
		t.Fatal("expected validation error for empty address")
	}

	created, err := svc.CreateTask(ctx, 1, validTask())
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.Status != fsm.StatusOpen {
		t.Fatalf("expected open status, got %s", created.Status)
	}
}

func TestCreateResponseOutcomes(t *testing.T) {
	svc, _, _, _, _, notifier := newTestTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, 1, validTask())
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if _, err := svc.CreateResponse(ctx, 999, 2, nil); !errors.Is(err, models.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := svc.CreateResponse(ctx, task.ID, 1, nil); !errors.Is(err, models.ErrCannotRespondOwnTask) {
		t.Fatalf("expected ErrCannotRespondOwnTask, got %v", err)
	}

	resp, err := svc.CreateResponse(ctx, task.ID, 2, nil)
	if err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}
	if resp.Status != models.ResponsePending {
		t.Fatalf("expected pending status, got %s", resp.Status)
	}
	if len(notifier.pushes) != 1 || notifier.pushes[0] != 1 {
		t.Fatalf("expected push to owner, got %v", notifier.pushes)
	}

	if _, err := svc.CreateResponse(ctx, task.ID, 2, nil); !errors.Is(err, models.ErrAlreadyResponded) {
		t.Fatalf("expected ErrAlreadyResponded, got %v", err)
	}
}

func TestAcceptResponseFlow(t *testing.T) {
	svc, tasks, responses, chats, messages, notifier := newTestTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, 1, validTask())
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	for _, executor := range []int{2, 3} {
		if _, err := svc.CreateResponse(ctx, task.ID, executor, nil); err != nil {
			t.Fatalf("CreateResponse(%d): %v", executor, err)
		}
		// Each candidate already opened a chat with the owner.
		if _, _, err := chats.GetOrCreateChat(ctx, task.ID, 1, executor); err != nil {
			t.Fatalf("GetOrCreateChat(%d): %v", executor, err)
		}
	}

	if err := svc.AcceptResponse(ctx, task.ID, 2, 2); !errors.Is(err, models.ErrNotTaskOwner) {
		t.Fatalf("expected ErrNotTaskOwner, got %v", err)
	}
	if err := svc.AcceptResponse(ctx, task.ID, 1, 99); !errors.Is(err, models.ErrResponseNotFound) {
		t.Fatalf("expected ErrResponseNotFound, got %v", err)
	}

	if err := svc.AcceptResponse(ctx, task.ID, 1, 2); err != nil {
		t.Fatalf("AcceptResponse: %v", err)
	}

	got := tasks.tasks[task.ID]
	if got.Status != fsm.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", got.Status)
	}
	if got.ExecutorID == nil || *got.ExecutorID != 2 {
		t.Fatalf("expected executor 2, got %v", got.ExecutorID)
	}

	if responses.responses[[2]int{task.ID, 2}].Status != models.ResponseAccepted {
		t.Fatal("winning response not accepted")
	}
	if responses.responses[[2]int{task.ID, 3}].Status != models.ResponseRejected {
		t.Fatal("losing response not rejected")
	}

	var accepted, rejected int
	for _, m := range messages.messages {
		switch m.Content {
		case msgResponseAccepted:
			accepted++
		case msgResponseRejected:
			rejected++
		}
	}
	if accepted != 1 {
		t.Fatalf("expected 1 acceptance message, got %d", accepted)
	}
	if rejected != 1 {
		t.Fatalf("expected 1 rejection notice, got %d", rejected)
	}

	// Pushes: two on the responses, one to the accepted executor.
	if len(notifier.pushes) != 3 || notifier.pushes[2] != 2 {
		t.Fatalf("unexpected push sequence: %v", notifier.pushes)
	}

	// A second accept fails on the optimistic open check.
	if err := svc.AcceptResponse(ctx, task.ID, 1, 3); !errors.Is(err, models.ErrTaskNotOpen) {
		t.Fatalf("expected ErrTaskNotOpen on re-accept, got %v", err)
	}
}

func TestCompleteTask(t *testing.T) {
	svc, tasks, _, _, messages, _ := newTestTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, 1, validTask())
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.CreateResponse(ctx, task.ID, 2, nil); err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}

	// Completing an open task is invalid.
	if err := svc.CompleteTask(ctx, task.ID, 1); !errors.Is(err, models.ErrInvalidStatusChange) {
		t.Fatalf("expected ErrInvalidStatusChange, got %v", err)
	}

	if err := svc.AcceptResponse(ctx, task.ID, 1, 2); err != nil {
		t.Fatalf("AcceptResponse: %v", err)
	}
	if err := svc.CompleteTask(ctx, task.ID, 2); !errors.Is(err, models.ErrNotTaskOwner) {
		t.Fatalf("expected ErrNotTaskOwner, got %v", err)
	}
	if err := svc.CompleteTask(ctx, task.ID, 1); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if tasks.tasks[task.ID].Status != fsm.StatusCompleted {
		t.Fatalf("expected completed, got %s", tasks.tasks[task.ID].Status)
	}

	// Repeated completes are no-ops.
	if err := svc.CompleteTask(ctx, task.ID, 1); err != nil {
		t.Fatalf("expected idempotent complete, got %v", err)
	}

	found := false
	for _, m := range messages.messages {
		if m.Content == msgTaskCompleted {
			found = true
		}
	}
	if !found {
		t.Fatal("completion message not sent to executor chat")
	}
}

func TestCancelTask(t *testing.T) {
	svc, tasks, _, _, _, _ := newTestTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, 1, validTask())
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := svc.CancelTask(ctx, task.ID, 2); !errors.Is(err, models.ErrNotTaskOwner) {
		t.Fatalf("expected ErrNotTaskOwner, got %v", err)
	}
	if err := svc.CancelTask(ctx, task.ID, 1); err != nil {
		t.Fatalf("CancelTask: %v", err)
	}
	if tasks.tasks[task.ID].Status != fsm.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", tasks.tasks[task.ID].Status)
	}
	if err := svc.CancelTask(ctx, task.ID, 1); err != nil {
		t.Fatalf("expected idempotent cancel, got %v", err)
	}
}

func TestUpdateTaskFrozenAfterAssign(t *testing.T) {
	svc, _, _, _, _, _ := newTestTaskService()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, 1, validTask())
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.CreateResponse(ctx, task.ID, 2, nil); err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}
	if err := svc.AcceptResponse(ctx, task.ID, 1, 2); err != nil {
		t.Fatalf("AcceptResponse: %v", err)
	}

	edit := validTask()
	edit.ID = task.ID
	edit.Title = "Совсем другой заголовок"
	if _, err := svc.UpdateTask(ctx, 1, edit); !errors.Is(err, models.ErrTaskNotOpen) {
		t.Fatalf("expected ErrTaskNotOpen, got %v", err)
	}
}

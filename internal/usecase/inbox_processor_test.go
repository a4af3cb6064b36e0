package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pnrdesk-service/internal/domain/entity"
	"pnrdesk-service/pkg/logger"
)

// MockInboxRepository is a mock implementation of repository.InboxRepository
type MockInboxRepository struct {
	mock.Mock
}

func (m *MockInboxRepository) Save(ctx context.Context, msg *entity.InboxMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockInboxRepository) FindByMessageID(ctx context.Context, messageID string) (*entity.InboxMessage, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.InboxMessage), args.Error(1)
}

func (m *MockInboxRepository) FindByStatus(ctx context.Context, status string, limit int) ([]*entity.InboxMessage, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.InboxMessage), args.Error(1)
}

func (m *MockInboxRepository) UpdateStatus(ctx context.Context, messageID string, status string, startedAt time.Time) error {
	args := m.Called(ctx, messageID, status, startedAt)
	return args.Error(0)
}

func (m *MockInboxRepository) MarkAsProcessed(ctx context.Context, messageID, status, handlerType, errorDetail string, extractedData map[string]interface{}) error {
	args := m.Called(ctx, messageID, status, handlerType, errorDetail, extractedData)
	return args.Error(0)
}

func (m *MockInboxRepository) GetLastMessage(ctx context.Context) (*entity.InboxMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.InboxMessage), args.Error(1)
}

func (m *MockInboxRepository) ResetProcessingMessages(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// stubHandler is a TemplateHandler with canned behavior
type stubHandler struct {
	canHandle bool
	err       error
	processed []*entity.InboxMessage
}

func (h *stubHandler) CanHandle(subject string) bool {
	return h.canHandle
}

func (h *stubHandler) Process(ctx context.Context, msg *entity.InboxMessage) error {
	h.processed = append(h.processed, msg)
	return h.err
}

// stubRouter returns its single handler when it matches
type stubRouter struct {
	handler TemplateHandler
}

func (r *stubRouter) Register(handler TemplateHandler) {
	r.handler = handler
}

func (r *stubRouter) GetHandler(subject string) TemplateHandler {
	if r.handler != nil && r.handler.CanHandle(subject) {
		return r.handler
	}
	return nil
}

func TestProcessMessageRoutesToHandler(t *testing.T) {
	repo := &MockInboxRepository{}
	handler := &stubHandler{canHandle: true}
	router := &stubRouter{handler: handler}
	processor := NewInboxProcessor(repo, router, nil, logger.NewNopLogger())

	msg := &entity.InboxMessage{MessageID: "msg-1", Subject: "PNR confirmation"}

	repo.On("UpdateStatus", mock.Anything, "msg-1", entity.StatusProcessing, mock.Anything).Return(nil)
	repo.On("MarkAsProcessed", mock.Anything, "msg-1", entity.StatusCompleted, mock.Anything, "", mock.Anything).Return(nil)

	err := processor.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)

	require.Len(t, handler.processed, 1)
	assert.Equal(t, "msg-1", handler.processed[0].MessageID)
	repo.AssertExpectations(t)
}

func TestProcessMessageSkipsWhenNoHandlerMatches(t *testing.T) {
	repo := &MockInboxRepository{}
	router := &stubRouter{handler: &stubHandler{canHandle: false}}
	processor := NewInboxProcessor(repo, router, nil, logger.NewNopLogger())

	msg := &entity.InboxMessage{MessageID: "msg-2", Subject: "Weekly newsletter"}

	repo.On("MarkAsProcessed", mock.Anything, "msg-2", entity.StatusSkipped, "none", mock.Anything, mock.Anything).Return(nil)

	err := processor.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProcessMessageMarksFailureWithoutAborting(t *testing.T) {
	repo := &MockInboxRepository{}
	handler := &stubHandler{canHandle: true, err: errors.New("boom")}
	router := &stubRouter{handler: handler}
	processor := NewInboxProcessor(repo, router, nil, logger.NewNopLogger())

	msg := &entity.InboxMessage{MessageID: "msg-3", Subject: "PNR confirmation"}

	repo.On("UpdateStatus", mock.Anything, "msg-3", entity.StatusProcessing, mock.Anything).Return(nil)
	repo.On("MarkAsProcessed", mock.Anything, "msg-3", entity.StatusFailed, mock.Anything, "boom", mock.Anything).Return(nil)

	// Handler failures are recorded, not propagated, so one bad message never
	// stalls the rest of the queue.
	err := processor.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProcessPendingMessages(t *testing.T) {
	repo := &MockInboxRepository{}
	handler := &stubHandler{canHandle: true}
	router := &stubRouter{handler: handler}
	processor := NewInboxProcessor(repo, router, nil, logger.NewNopLogger())

	pending := []*entity.InboxMessage{
		{MessageID: "msg-4", Subject: "PNR confirmation"},
		{MessageID: "msg-5", Subject: "PNR confirmation"},
	}

	repo.On("ResetProcessingMessages", mock.Anything).Return(nil)
	repo.On("FindByStatus", mock.Anything, entity.StatusPending, 100).Return(pending, nil)
	repo.On("UpdateStatus", mock.Anything, mock.Anything, entity.StatusProcessing, mock.Anything).Return(nil)
	repo.On("MarkAsProcessed", mock.Anything, mock.Anything, entity.StatusCompleted, mock.Anything, "", mock.Anything).Return(nil)

	err := processor.ProcessPendingMessages(context.Background())
	require.NoError(t, err)

	assert.Len(t, handler.processed, 2)
	repo.AssertExpectations(t)
}

// memoryInboxRepo tracks status transitions like the Mongo repository does, so
// the full pending sweep lifecycle can be exercised end to end.
type memoryInboxRepo struct {
	messages map[string]*entity.InboxMessage
	order    []string
}

func newMemoryInboxRepo(msgs ...*entity.InboxMessage) *memoryInboxRepo {
	r := &memoryInboxRepo{messages: make(map[string]*entity.InboxMessage)}
	for _, msg := range msgs {
		r.messages[msg.MessageID] = msg
		r.order = append(r.order, msg.MessageID)
	}
	return r
}

func (r *memoryInboxRepo) Save(ctx context.Context, msg *entity.InboxMessage) error {
	r.messages[msg.MessageID] = msg
	r.order = append(r.order, msg.MessageID)
	return nil
}

func (r *memoryInboxRepo) FindByMessageID(ctx context.Context, messageID string) (*entity.InboxMessage, error) {
	return r.messages[messageID], nil
}

func (r *memoryInboxRepo) FindByStatus(ctx context.Context, status string, limit int) ([]*entity.InboxMessage, error) {
	var found []*entity.InboxMessage
	for _, id := range r.order {
		if msg := r.messages[id]; msg.ProcessStatus == status && len(found) < limit {
			found = append(found, msg)
		}
	}
	return found, nil
}

func (r *memoryInboxRepo) UpdateStatus(ctx context.Context, messageID string, status string, startedAt time.Time) error {
	r.messages[messageID].ProcessStatus = status
	return nil
}

func (r *memoryInboxRepo) MarkAsProcessed(ctx context.Context, messageID, status, handlerType, errorDetail string, extractedData map[string]interface{}) error {
	msg := r.messages[messageID]
	msg.ProcessStatus = status
	msg.HandlerType = handlerType
	msg.ErrorDetail = errorDetail
	msg.ExtractedData = extractedData
	return nil
}

func (r *memoryInboxRepo) GetLastMessage(ctx context.Context) (*entity.InboxMessage, error) {
	return nil, nil
}

// ResetProcessingMessages treats every in-flight message as stale, the worst
// case for a message that never reached a terminal status.
func (r *memoryInboxRepo) ResetProcessingMessages(ctx context.Context) error {
	for _, msg := range r.messages {
		if msg.ProcessStatus == entity.StatusProcessing {
			msg.ProcessStatus = entity.StatusPending
		}
	}
	return nil
}

func TestProcessPendingMessagesHandlesEachMessageOnce(t *testing.T) {
	repo := newMemoryInboxRepo(&entity.InboxMessage{
		MessageID:     "msg-6",
		Subject:       "PNR confirmation",
		ProcessStatus: entity.StatusPending,
	})
	handler := &stubHandler{canHandle: true}
	processor := NewInboxProcessor(repo, &stubRouter{handler: handler}, nil, logger.NewNopLogger())

	require.NoError(t, processor.ProcessPendingMessages(context.Background()))
	assert.Equal(t, entity.StatusCompleted, repo.messages["msg-6"].ProcessStatus)

	// A second sweep must not pick the message up again: COMPLETED is terminal
	// and survives the stale-processing reset.
	require.NoError(t, processor.ProcessPendingMessages(context.Background()))
	assert.Len(t, handler.processed, 1)
}

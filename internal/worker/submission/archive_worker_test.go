package submission_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survey-reachability/internal/domain"
	redisRepo "github.com/survey-reachability/internal/repository/redis"
	"github.com/survey-reachability/internal/worker"
	"github.com/survey-reachability/internal/worker/submission"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, maxCount int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, maxCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ClaimPending(ctx context.Context, stream, group, consumer string, minIdle time.Duration, maxCount int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, minIdle, maxCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockSubmissionArchive is a mock of SubmissionArchive
type MockSubmissionArchive struct {
	mock.Mock
}

func (m *MockSubmissionArchive) Save(ctx context.Context, s *domain.Submission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSubmissionArchive) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionArchive) ListRecent(ctx context.Context, limit int) ([]*domain.Submission, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Submission), args.Error(1)
}

const group = "archivers"

func eventMessage(t *testing.T, id string, s *domain.Submission) domain.StreamMessage {
	t.Helper()
	data, err := json.Marshal(domain.NewSubmissionEvent(s))
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(data)}
}

func newSubmission() *domain.Submission {
	lat, lon := 47.6567, -122.3066
	return &domain.Submission{
		ID: uuid.New(),
		Payload: domain.Payload{
			{Name: "lat", Value: "47.6567"},
			{Name: "lon", Value: "-122.3066"},
		},
		Lat:       &lat,
		Lon:       &lon,
		Status:    domain.StatusSubmitted,
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func expectNoPending(stream *MockStreamRepository, ctx interface{}, w *submission.ArchiveWorker) *mock.Call {
	return stream.On("ClaimPending", ctx, domain.StreamSurveySubmissions, group, w.ConsumerName(), w.RetryIdle, 10).
		Return(nil, nil)
}

func TestArchiveWorker_Name(t *testing.T) {
	w := submission.NewArchiveWorker(&MockStreamRepository{}, &MockSubmissionArchive{}, group, 0, zap.NewNop())
	assert.Equal(t, "submission-archive", w.Name())
	assert.Equal(t, group, w.ConsumerGroup())
	assert.NotEmpty(t, w.ConsumerName())
}

func TestArchiveWorker_ProcessBatch(t *testing.T) {
	ctx := context.Background()
	stream := &MockStreamRepository{}
	archive := &MockSubmissionArchive{}
	w := submission.NewArchiveWorker(stream, archive, group, 10, zap.NewNop())

	ok := newSubmission()
	failing := newSubmission()

	messages := []domain.StreamMessage{
		eventMessage(t, "1-0", ok),
		{ID: "2-0", Data: "{not json"},
		{ID: "3-0", Data: ""},
		eventMessage(t, "4-0", failing),
	}

	expectNoPending(stream, ctx, w)
	stream.On("ConsumeBatch", ctx, domain.StreamSurveySubmissions, group, w.ConsumerName(), 10).Return(messages, nil)
	archive.On("Save", ctx, mock.MatchedBy(func(s *domain.Submission) bool { return s.ID == ok.ID })).Return(nil)
	archive.On("Save", ctx, mock.MatchedBy(func(s *domain.Submission) bool { return s.ID == failing.ID })).
		Return(errors.New("connection reset"))
	stream.On("AckMessages", ctx, domain.StreamSurveySubmissions, group, []string{"1-0", "2-0", "3-0"}).Return(nil)

	processed, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, processed)

	stream.AssertExpectations(t)
	archive.AssertExpectations(t)
	archive.AssertNumberOfCalls(t, "Save", 2)
}

func TestArchiveWorker_ProcessBatch_SavesEventFields(t *testing.T) {
	ctx := context.Background()
	stream := &MockStreamRepository{}
	archive := &MockSubmissionArchive{}
	w := submission.NewArchiveWorker(stream, archive, group, 10, zap.NewNop())

	s := newSubmission()
	expectNoPending(stream, ctx, w)
	stream.On("ConsumeBatch", ctx, domain.StreamSurveySubmissions, group, w.ConsumerName(), 10).
		Return([]domain.StreamMessage{eventMessage(t, "1-0", s)}, nil)
	stream.On("AckMessages", ctx, domain.StreamSurveySubmissions, group, []string{"1-0"}).Return(nil)

	var saved *domain.Submission
	archive.On("Save", ctx, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.Submission)
	}).Return(nil)

	_, err := w.ProcessBatch(ctx)
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, s.ID, saved.ID)
	assert.Equal(t, s.Payload, saved.Payload)
	assert.Equal(t, s.Status, saved.Status)
	assert.True(t, s.CreatedAt.Equal(saved.CreatedAt))
}

func TestArchiveWorker_ProcessBatch_Empty(t *testing.T) {
	ctx := context.Background()
	stream := &MockStreamRepository{}
	w := submission.NewArchiveWorker(stream, &MockSubmissionArchive{}, group, 10, zap.NewNop())

	expectNoPending(stream, ctx, w)
	stream.On("ConsumeBatch", ctx, domain.StreamSurveySubmissions, group, w.ConsumerName(), 10).Return(nil, nil)

	processed, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiveWorker_ProcessBatch_ConsumeError(t *testing.T) {
	ctx := context.Background()
	stream := &MockStreamRepository{}
	w := submission.NewArchiveWorker(stream, &MockSubmissionArchive{}, group, 10, zap.NewNop())

	expectNoPending(stream, ctx, w)
	stream.On("ConsumeBatch", ctx, domain.StreamSurveySubmissions, group, w.ConsumerName(), 10).
		Return(nil, errors.New("redis down"))

	_, err := w.ProcessBatch(ctx)
	assert.Error(t, err)
}

func TestArchiveWorker_ProcessBatch_RetriesFailedSave(t *testing.T) {
	ctx := context.Background()
	stream := &MockStreamRepository{}
	archive := &MockSubmissionArchive{}
	w := submission.NewArchiveWorker(stream, archive, group, 10, zap.NewNop())
	w.RetryIdle = time.Minute

	s := newSubmission()
	msg := eventMessage(t, "1-0", s)

	// первая пачка: сохранение падает, сообщение остаётся в группе
	expectNoPending(stream, ctx, w).Once()
	stream.On("ConsumeBatch", ctx, domain.StreamSurveySubmissions, group, w.ConsumerName(), 10).
		Return([]domain.StreamMessage{msg}, nil).Once()
	archive.On("Save", ctx, mock.Anything).Return(errors.New("connection refused")).Once()

	processed, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// вторая пачка: сообщение забирается из pending и подтверждается
	stream.On("ClaimPending", ctx, domain.StreamSurveySubmissions, group, w.ConsumerName(), time.Minute, 10).
		Return([]domain.StreamMessage{msg}, nil).Once()
	archive.On("Save", ctx, mock.MatchedBy(func(saved *domain.Submission) bool { return saved.ID == s.ID })).
		Return(nil).Once()
	stream.On("AckMessages", ctx, domain.StreamSurveySubmissions, group, []string{"1-0"}).Return(nil).Once()

	processed, err = w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stream.AssertExpectations(t)
	archive.AssertExpectations(t)
	stream.AssertNumberOfCalls(t, "ConsumeBatch", 1)
	archive.AssertNumberOfCalls(t, "Save", 2)
}

func TestArchiveWorker_ProcessBatch_ClaimError(t *testing.T) {
	ctx := context.Background()
	stream := &MockStreamRepository{}
	w := submission.NewArchiveWorker(stream, &MockSubmissionArchive{}, group, 10, zap.NewNop())

	stream.On("ClaimPending", ctx, domain.StreamSurveySubmissions, group, w.ConsumerName(), w.RetryIdle, 10).
		Return(nil, errors.New("NOGROUP"))

	_, err := w.ProcessBatch(ctx)
	assert.Error(t, err)
	stream.AssertNotCalled(t, "ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiveWorker_RetriesAfterArchiveOutage_Redis(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 1})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}
	client.Del(ctx, domain.StreamSurveySubmissions)
	defer client.Del(ctx, domain.StreamSurveySubmissions)

	streamRepo := redisRepo.NewStreamRepository(client, 50*time.Millisecond, zap.NewNop())
	archive := &MockSubmissionArchive{}
	w := submission.NewArchiveWorker(streamRepo, archive, group, 10, zap.NewNop())
	w.RetryIdle = 0

	require.NoError(t, streamRepo.CreateConsumerGroup(ctx, domain.StreamSurveySubmissions, group))
	s := newSubmission()
	require.NoError(t, streamRepo.PublishToStream(ctx, domain.StreamSurveySubmissions, domain.NewSubmissionEvent(s)))

	archive.On("Save", ctx, mock.Anything).Return(errors.New("connection refused")).Once()
	archive.On("Save", ctx, mock.MatchedBy(func(saved *domain.Submission) bool { return saved.ID == s.ID })).
		Return(nil).Once()

	_, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	pending, err := client.XPending(ctx, domain.StreamSurveySubmissions, group).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending.Count)

	processed, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	pending, err = client.XPending(ctx, domain.StreamSurveySubmissions, group).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
	archive.AssertExpectations(t)
}

func TestArchiveWorker_StartStop(t *testing.T) {
	stream := &MockStreamRepository{}
	w := submission.NewArchiveWorker(stream, &MockSubmissionArchive{}, group, 10, zap.NewNop())
	w.IdleSleep = 5 * time.Millisecond

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamSurveySubmissions, group).Return(nil)
	expectNoPending(stream, mock.Anything, w)
	polled := make(chan struct{})
	var once sync.Once
	stream.On("ConsumeBatch", mock.Anything, domain.StreamSurveySubmissions, group, w.ConsumerName(), 10).
		Run(func(mock.Arguments) { once.Do(func() { close(polled) }) }).
		Return(nil, nil)

	manager := worker.NewWorkerManager(zap.NewNop())
	manager.Register(w)
	require.NoError(t, manager.Start(context.Background()))

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("worker did not poll the stream")
	}

	require.NoError(t, manager.Stop())
	<-manager.Done()
	assert.NoError(t, manager.Err())
}

func TestArchiveWorker_ConsumerGroupError(t *testing.T) {
	stream := &MockStreamRepository{}
	w := submission.NewArchiveWorker(stream, &MockSubmissionArchive{}, group, 10, zap.NewNop())

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamSurveySubmissions, group).Return(errors.New("NOPERM"))

	err := w.Start(context.Background())
	assert.Error(t, err)
}

package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formwoz/internal/model"
	"formwoz/internal/repository"
	"formwoz/internal/schema"
)

const serviceSchemaYAML = `
title: Incident Intake
questions:
  - id: incident_date
    question: "When did the incident happen?"
    type: date
  - id: injuries
    question: "Was anyone hurt?"
    type: boolean
    followup_if_yes:
      id: injury_details
      question: "Please describe what happened to them"
      type: multiline_text
  - id: severity
    question: "How severe was it?"
    type: single_choice
    options: ["Minor", "Moderate", "Severe"]
`

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*model.Session{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.RoomCode] = &cp
	return nil
}

func (f *fakeSessionRepo) GetByRoomCode(_ context.Context, code string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) UpdateSnapshot(_ context.Context, code string, snapshot []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[code]; ok {
		s.Snapshot = snapshot
	}
	return nil
}

func (f *fakeSessionRepo) AppendMessages(_ context.Context, code string, messages ...model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[code]; ok {
		s.Messages = append(s.Messages, messages...)
	}
	return nil
}

func (f *fakeSessionRepo) SetStatus(_ context.Context, code string, status model.SessionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[code]; ok {
		s.Status = status
	}
	return nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[string]*model.Record
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: map[string]*model.Record{}}
}

func (f *fakeRecordRepo) Create(_ context.Context, r *model.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[r.RoomCode] = r
	return nil
}

func (f *fakeRecordRepo) GetByRoomCode(_ context.Context, code string) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeRecordRepo) List(_ context.Context) ([]*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Record
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Set(_ context.Context, code string, snapshot []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[code] = snapshot
	return nil
}

func (f *fakeCache) Get(_ context.Context, code string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[code], nil
}

func (f *fakeCache) Delete(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, code)
	return nil
}

type upperPreprocessor struct{}

func (upperPreprocessor) Rephrase(_ context.Context, text string) (string, error) {
	return strings.ToUpper(text), nil
}

func newTestService(t *testing.T, pre Preprocessor) (*InterviewService, *fakeSessionRepo, *fakeRecordRepo, *fakeCache) {
	t.Helper()
	s, err := schema.Parse([]byte(serviceSchemaYAML))
	require.NoError(t, err)
	sessions := newFakeSessionRepo()
	records := newFakeRecordRepo()
	snapshots := newFakeCache()
	return NewInterviewService(s, sessions, records, snapshots, pre), sessions, records, snapshots
}

func TestCreateRoomOpensSession(t *testing.T) {
	svc, sessions, _, snapshots := newTestService(t, nil)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)
	assert.Len(t, room.RoomCode, 8)
	require.NotNil(t, room.Prompt)
	assert.Equal(t, "incident_date", room.Prompt.QuestionID)
	assert.Contains(t, room.Reply, "When did the incident happen?")

	stored, err := sessions.GetByRoomCode(ctx, room.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, model.SessionActive, stored.Status)
	require.Len(t, stored.Messages, 1)
	assert.Equal(t, "bot", stored.Messages[0].Sender)
	assert.NotEmpty(t, stored.Snapshot)

	cached, err := snapshots.Get(ctx, room.RoomCode)
	require.NoError(t, err)
	assert.NotEmpty(t, cached)
}

func TestHandleMessageRunsInterviewToCompletion(t *testing.T) {
	svc, sessions, records, _ := newTestService(t, nil)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)
	code := room.RoomCode

	for _, reply := range []string{"2025-06-12", "no"} {
		res, err := svc.HandleMessage(ctx, code, reply)
		require.NoError(t, err)
		assert.False(t, res.Completed)
	}

	res, err := svc.HandleMessage(ctx, code, "minor")
	require.NoError(t, err)
	assert.True(t, res.Completed)
	require.NotNil(t, res.Record)
	assert.Contains(t, res.Reply, "Thank you")

	stored, err := records.GetByRoomCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "Incident Intake", stored.Title)
	assert.Equal(t, "Minor", stored.Answers["severity"].Choice)

	session, err := sessions.GetByRoomCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, session.Status)
	// Opening message plus a respondent/bot pair per turn.
	assert.Len(t, session.Messages, 7)
}

func TestHandleMessageValidationFailureKeepsRoomOpen(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)

	res, err := svc.HandleMessage(ctx, room.RoomCode, "no idea")
	require.NoError(t, err)
	assert.False(t, res.Completed)
	require.NotNil(t, res.Prompt)
	assert.Equal(t, "incident_date", res.Prompt.QuestionID)
	assert.Equal(t, 1, res.Prompt.Retries)
	assert.NotEmpty(t, res.Prompt.Error)
}

func TestHandleMessageUnknownRoom(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	_, err := svc.HandleMessage(context.Background(), "nope1234", "hello")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomRebuiltFromSnapshotAfterEviction(t *testing.T) {
	svc, sessions, records, snapshots := newTestService(t, nil)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)
	code := room.RoomCode

	_, err = svc.HandleMessage(ctx, code, "2025-06-12")
	require.NoError(t, err)

	// Simulate a process restart: a fresh service over the same stores.
	s, err := schema.Parse([]byte(serviceSchemaYAML))
	require.NoError(t, err)
	revived := NewInterviewService(s, sessions, records, snapshots, nil)

	res, err := revived.HandleMessage(ctx, code, "no")
	require.NoError(t, err)
	require.NotNil(t, res.Prompt)
	assert.Equal(t, "severity", res.Prompt.QuestionID)
}

func TestRoomRebuiltFromStoreWhenCacheCold(t *testing.T) {
	svc, sessions, records, snapshots := newTestService(t, nil)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)
	code := room.RoomCode

	_, err = svc.HandleMessage(ctx, code, "2025-06-12")
	require.NoError(t, err)

	// Cache wiped; only the session store has the snapshot.
	require.NoError(t, snapshots.Delete(ctx, code))

	s, err := schema.Parse([]byte(serviceSchemaYAML))
	require.NoError(t, err)
	revived := NewInterviewService(s, sessions, records, snapshots, nil)

	res, err := revived.HandleMessage(ctx, code, "no")
	require.NoError(t, err)
	assert.Equal(t, "severity", res.Prompt.QuestionID)
}

func TestEditFlowThroughService(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)
	code := room.RoomCode

	_, err = svc.HandleMessage(ctx, code, "2025-06-12")
	require.NoError(t, err)
	_, err = svc.HandleMessage(ctx, code, "yes")
	require.NoError(t, err)
	_, err = svc.HandleMessage(ctx, code, "A cyclist was bruised")
	require.NoError(t, err)

	out, err := svc.RequestEdit(ctx, code, "injuries", "no")
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, model.StrategyRestartBranch, out.Strategy.Kind)

	// The branch question is asked again.
	status, err := svc.Status(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "injuries", status.Prompt.QuestionID)
}

func TestTranscriptAndRecordLookups(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)

	messages, err := svc.Transcript(ctx, room.RoomCode)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	_, err = svc.Transcript(ctx, "missing1")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.Record(ctx, room.RoomCode)
	assert.ErrorIs(t, err, ErrRoomNotFound, "no record before completion")
}

func TestPreprocessorRewritesBotText(t *testing.T) {
	svc, _, _, _ := newTestService(t, upperPreprocessor{})
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx)
	require.NoError(t, err)
	assert.Equal(t, strings.ToUpper(room.Reply), room.Reply)
	assert.Contains(t, room.Reply, "WHEN DID THE INCIDENT HAPPEN?")
}

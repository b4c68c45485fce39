package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"formwoz/internal/cache"
	"formwoz/internal/engine"
	"formwoz/internal/model"
	"formwoz/internal/repository"
	"formwoz/internal/schema"
)

var (
	// ErrRoomNotFound is returned for an unknown or expired room code.
	ErrRoomNotFound = errors.New("room not found")
)

// TurnResult is the outcome of one respondent message.
type TurnResult struct {
	Reply     string                  `json:"reply"`
	Prompt    *model.PromptDescriptor `json:"prompt,omitempty"`
	Completed bool                    `json:"completed"`
	Record    *model.CompletionRecord `json:"record,omitempty"`
}

// RoomState describes a freshly opened room.
type RoomState struct {
	RoomCode string                  `json:"roomCode"`
	Reply    string                  `json:"reply"`
	Prompt   *model.PromptDescriptor `json:"prompt"`
}

// InterviewService runs interview rooms: it owns the per-room engines,
// persists snapshots and transcripts, and hands completed interviews to the
// record store. Engines for hot rooms stay in memory; a room seen after a
// restart is rebuilt from the cached snapshot, falling back to the session
// store.
type InterviewService struct {
	schema    *schema.Schema
	sessions  repository.SessionRepo
	records   repository.RecordRepo
	snapshots cache.SessionCache
	pre       Preprocessor

	mu    sync.Mutex
	rooms map[string]*room
}

// room serializes turns for one code. The engine is nil until loaded.
type room struct {
	mu  sync.Mutex
	eng *engine.Engine
}

func NewInterviewService(s *schema.Schema, sessions repository.SessionRepo, records repository.RecordRepo, snapshots cache.SessionCache, pre Preprocessor) *InterviewService {
	if pre == nil {
		pre = NopPreprocessor{}
	}
	return &InterviewService{
		schema:    s,
		sessions:  sessions,
		records:   records,
		snapshots: snapshots,
		pre:       pre,
		rooms:     make(map[string]*room),
	}
}

// CreateRoom opens a new interview room and returns its code together with
// the opening bot message.
func (s *InterviewService) CreateRoom(ctx context.Context) (*RoomState, error) {
	code := uuid.NewString()[:8]

	eng := engine.New(s.schema)
	prompt := eng.Start()
	reply := s.rephrase(ctx, renderPrompt(prompt))

	session := &model.Session{
		RoomCode: code,
		Status:   model.SessionActive,
		Messages: []model.Message{botMessage(reply)},
	}
	snapshot, err := eng.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot room %s: %w", code, err)
	}
	session.Snapshot = snapshot

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.snapshots.Set(ctx, code, snapshot); err != nil {
		log.Printf("cache set for room %s failed: %v", code, err)
	}

	s.mu.Lock()
	s.rooms[code] = &room{eng: eng}
	s.mu.Unlock()

	return &RoomState{RoomCode: code, Reply: reply, Prompt: prompt}, nil
}

// HandleMessage feeds one respondent message into a room and returns the
// bot's reply. When the message completes the interview the result carries
// the completion record and the session is closed out.
func (s *InterviewService) HandleMessage(ctx context.Context, code, text string) (*TurnResult, error) {
	r := s.roomEntry(code)
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := s.ensureLoaded(ctx, code, r); err != nil {
		return nil, err
	}

	prompt, rec, err := r.eng.Submit(text)
	if err != nil {
		// Only schema inconsistencies surface here; the session is
		// unrecoverable.
		if serr := s.sessions.SetStatus(ctx, code, model.SessionAbandoned); serr != nil {
			log.Printf("abandon room %s failed: %v", code, serr)
		}
		return nil, err
	}

	result := &TurnResult{Prompt: prompt}
	if rec != nil {
		result.Completed = true
		result.Record = rec
		result.Reply = s.rephrase(ctx, completionText(rec))
	} else {
		result.Reply = s.rephrase(ctx, renderPrompt(prompt))
	}

	if err := s.persistTurn(ctx, code, r, respondentMessage(text), botMessage(result.Reply)); err != nil {
		return nil, err
	}
	if rec != nil {
		if err := s.finish(ctx, code, rec); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// RequestEdit changes an already-answered question in a room. Destructive
// edits come back unapplied with a confirmation question; the confirmation
// is answered via ConfirmEdit or a plain yes/no message.
func (s *InterviewService) RequestEdit(ctx context.Context, code, questionID, newValue string) (*model.EditOutcome, error) {
	r := s.roomEntry(code)
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := s.ensureLoaded(ctx, code, r); err != nil {
		return nil, err
	}

	out, err := r.eng.RequestEdit(questionID, newValue)
	if err != nil {
		return nil, err
	}

	var msg model.Message
	if out.RequiresConfirmation {
		msg = botMessage(s.rephrase(ctx, out.Message))
	} else {
		msg = botMessage(s.rephrase(ctx, fmt.Sprintf("Updated %s.", questionID)))
	}
	if err := s.persistTurn(ctx, code, r, msg); err != nil {
		return nil, err
	}
	return out, nil
}

// ConfirmEdit resolves a pending destructive edit for a room.
func (s *InterviewService) ConfirmEdit(ctx context.Context, code string, confirmed bool) (*TurnResult, error) {
	r := s.roomEntry(code)
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := s.ensureLoaded(ctx, code, r); err != nil {
		return nil, err
	}

	prompt, err := r.eng.ConfirmEdit(confirmed)
	if err != nil {
		return nil, err
	}

	result := &TurnResult{Prompt: prompt}
	if prompt != nil {
		result.Reply = s.rephrase(ctx, renderPrompt(prompt))
	} else if rec := r.eng.Completion(); rec != nil {
		result.Completed = true
		result.Record = rec
		result.Reply = s.rephrase(ctx, "Nothing was changed.")
	}
	if err := s.persistTurn(ctx, code, r, botMessage(result.Reply)); err != nil {
		return nil, err
	}
	return result, nil
}

// Status returns the room's current prompt and whether it is done.
func (s *InterviewService) Status(ctx context.Context, code string) (*TurnResult, error) {
	r := s.roomEntry(code)
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := s.ensureLoaded(ctx, code, r); err != nil {
		return nil, err
	}
	result := &TurnResult{Prompt: r.eng.Prompt()}
	if rec := r.eng.Completion(); rec != nil {
		result.Completed = true
		result.Record = rec
	}
	return result, nil
}

// Transcript returns the full message history of a room.
func (s *InterviewService) Transcript(ctx context.Context, code string) ([]model.Message, error) {
	session, err := s.sessions.GetByRoomCode(ctx, code)
	if err == repository.ErrNotFound {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

// Record returns the persisted completion record of a room.
func (s *InterviewService) Record(ctx context.Context, code string) (*model.Record, error) {
	rec, err := s.records.GetByRoomCode(ctx, code)
	if err == repository.ErrNotFound {
		return nil, ErrRoomNotFound
	}
	return rec, err
}

func (s *InterviewService) roomEntry(code string) *room {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	if !ok {
		r = &room{}
		s.rooms[code] = r
	}
	return r
}

// ensureLoaded rebuilds the room's engine from the cached snapshot, falling
// back to the session store. Callers hold the room lock.
func (s *InterviewService) ensureLoaded(ctx context.Context, code string, r *room) error {
	if r.eng != nil {
		return nil
	}

	snapshot, err := s.snapshots.Get(ctx, code)
	if err != nil {
		log.Printf("cache get for room %s failed: %v", code, err)
	}
	if snapshot == nil {
		session, err := s.sessions.GetByRoomCode(ctx, code)
		if err == repository.ErrNotFound {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		snapshot = session.Snapshot
	}

	eng := engine.New(s.schema)
	if err := eng.Restore(snapshot); err != nil {
		return fmt.Errorf("restore room %s: %w", code, err)
	}
	r.eng = eng
	return nil
}

// persistTurn writes the new snapshot and appends transcript messages.
// Callers hold the room lock.
func (s *InterviewService) persistTurn(ctx context.Context, code string, r *room, messages ...model.Message) error {
	snapshot, err := r.eng.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot room %s: %w", code, err)
	}
	if err := s.sessions.UpdateSnapshot(ctx, code, snapshot); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	if err := s.snapshots.Set(ctx, code, snapshot); err != nil {
		log.Printf("cache set for room %s failed: %v", code, err)
	}
	if err := s.sessions.AppendMessages(ctx, code, messages...); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// finish closes out a completed room: the record is stored and the session
// marked completed.
func (s *InterviewService) finish(ctx context.Context, code string, rec *model.CompletionRecord) error {
	record := &model.Record{
		RoomCode: code,
		Title:    rec.Title,
		Order:    rec.Order,
		Answers:  rec.Answers,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	if err := s.sessions.SetStatus(ctx, code, model.SessionCompleted); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if err := s.snapshots.Delete(ctx, code); err != nil {
		log.Printf("cache delete for room %s failed: %v", code, err)
	}
	return nil
}

func (s *InterviewService) rephrase(ctx context.Context, text string) string {
	out, err := s.pre.Rephrase(ctx, text)
	if err != nil {
		log.Printf("preprocessor failed, using raw text: %v", err)
		return text
	}
	return out
}

// renderPrompt flattens a prompt descriptor into the bot utterance.
func renderPrompt(p *model.PromptDescriptor) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	if p.Error != "" {
		b.WriteString(p.Error)
		b.WriteString("\n")
	}
	b.WriteString(p.Prompt)
	if len(p.Options) > 0 {
		opts := p.Options
		if p.OtherSpecify {
			opts = append(append([]string(nil), opts...), "Other")
		}
		b.WriteString("\nOptions: ")
		b.WriteString(strings.Join(opts, ", "))
	}
	if p.Hint != "" {
		b.WriteString("\n")
		b.WriteString(p.Hint)
	}
	return b.String()
}

func completionText(rec *model.CompletionRecord) string {
	return fmt.Sprintf("Thank you, that completes the %s. %d answers were recorded.",
		rec.Title, len(rec.Order))
}

func botMessage(text string) model.Message {
	return model.Message{Sender: "bot", Text: text, Timestamp: time.Now()}
}

func respondentMessage(text string) model.Message {
	return model.Message{Sender: "respondent", Text: text, Timestamp: time.Now()}
}

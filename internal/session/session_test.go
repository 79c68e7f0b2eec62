package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperror "github.com/Paddy1981/larun-space/internal/error"
	"github.com/Paddy1981/larun-space/internal/llm"
	"github.com/Paddy1981/larun-space/internal/store"
	"github.com/Paddy1981/larun-space/internal/usage"
	"go.uber.org/zap"
)

// Mock completer for testing
type mockCompleter struct {
	completeFunc func(ctx context.Context, message string, history []llm.Message) llm.Result
}

func (m *mockCompleter) Complete(ctx context.Context, message string, history []llm.Message) llm.Result {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, message, history)
	}
	return llm.Result{Text: "mock response", Source: llm.SourceRemote}
}

// Mock recorder for testing
type mockRecorder struct {
	events []usage.Event
}

func (m *mockRecorder) Record(_ context.Context, ev usage.Event) error {
	m.events = append(m.events, ev)
	return nil
}

func (m *mockRecorder) Close() error { return nil }

func newTestSession(t *testing.T, completer llm.Completer) (*Session, store.Store) {
	t.Helper()
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "conversations.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return New(st, completer, nil, nil, zap.NewNop()), st
}

func TestSession_SendCreatesConversation(t *testing.T) {
	sess, st := newTestSession(t, &mockCompleter{})
	ctx := context.Background()

	result, err := sess.Send(ctx, "hello")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.ConversationID == "" {
		t.Fatal("Expected a conversation id")
	}
	if result.Reply.Content != "mock response" {
		t.Errorf("Expected mock reply, got %q", result.Reply.Content)
	}
	if result.Source != llm.SourceRemote {
		t.Errorf("Expected remote source, got %q", result.Source)
	}
	if sess.Current() != result.ConversationID {
		t.Error("Expected the new conversation to become current")
	}

	conv, err := st.Get(ctx, result.ConversationID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if conv.Title != "hello" {
		t.Errorf("Expected title derived from first message, got %q", conv.Title)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("Expected user + assistant messages, got %d", len(conv.Messages))
	}
	if conv.Messages[0].Role != store.RoleUser || conv.Messages[1].Role != store.RoleAssistant {
		t.Error("Expected user message then assistant message")
	}
}

func TestSession_SendReusesCurrentConversation(t *testing.T) {
	sess, st := newTestSession(t, &mockCompleter{})
	ctx := context.Background()

	first, _ := sess.Send(ctx, "first question")
	second, err := sess.Send(ctx, "second question")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Error("Expected the second send to append to the current conversation")
	}

	conv, _ := st.Get(ctx, first.ConversationID)
	if len(conv.Messages) != 4 {
		t.Errorf("Expected 4 messages after two sends, got %d", len(conv.Messages))
	}
}

func TestSession_SendPassesHistory(t *testing.T) {
	var gotHistory []llm.Message
	completer := &mockCompleter{
		completeFunc: func(_ context.Context, _ string, history []llm.Message) llm.Result {
			gotHistory = history
			return llm.Result{Text: "ok", Source: llm.SourceRemote}
		},
	}
	sess, _ := newTestSession(t, completer)
	ctx := context.Background()

	_, _ = sess.Send(ctx, "first")
	_, _ = sess.Send(ctx, "second")

	if len(gotHistory) != 2 {
		t.Fatalf("Expected 2 history messages on second send, got %d", len(gotHistory))
	}
	if gotHistory[0].Content != "first" || gotHistory[1].Content != "ok" {
		t.Error("Expected the prior exchange as history")
	}
}

func TestSession_EmptyMessage(t *testing.T) {
	sess, _ := newTestSession(t, &mockCompleter{})

	_, err := sess.Send(context.Background(), "   ")
	if err == nil {
		t.Fatal("Expected validation error for empty message")
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperror.ErrorTypeValidation {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestSession_OverlappingSendRejected(t *testing.T) {
	release := make(chan struct{})
	completer := &mockCompleter{
		completeFunc: func(_ context.Context, _ string, _ []llm.Message) llm.Result {
			<-release
			return llm.Result{Text: "slow response", Source: llm.SourceRemote}
		},
	}
	sess, st := newTestSession(t, completer)
	ctx := context.Background()

	firstDone := make(chan *SendResult, 1)
	go func() {
		result, err := sess.Send(ctx, "slow question")
		if err != nil {
			t.Errorf("First Send() error = %v", err)
		}
		firstDone <- result
	}()

	// Wait for the first send to reach the completer
	deadline := time.After(2 * time.Second)
	for !sess.Loading() {
		select {
		case <-deadline:
			t.Fatal("Timed out waiting for the first send to start")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	_, err := sess.Send(ctx, "overlapping question")
	if err == nil {
		t.Fatal("Expected the overlapping send to be rejected")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperror.ErrorTypeBusy {
		t.Errorf("Expected busy error, got %v", err)
	}
	if !errors.Is(err, apperror.ErrSessionBusy) {
		t.Errorf("Expected err to match ErrSessionBusy, got %v", err)
	}

	close(release)
	result := <-firstDone

	// Exactly one assistant message per completed send
	conv, _ := st.Get(ctx, result.ConversationID)
	if len(conv.Messages) != 2 {
		t.Errorf("Expected 2 messages after one completed send, got %d", len(conv.Messages))
	}
	if sess.Loading() {
		t.Error("Expected loading to clear after the send completed")
	}
}

func TestSession_RecordsUsageEventWithTier(t *testing.T) {
	recorder := &mockRecorder{}
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "conversations.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	sess := New(st, &mockCompleter{}, recorder, usage.NewStaticTierReader("pro"), zap.NewNop())

	result, err := sess.Send(context.Background(), "record me")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(recorder.events) != 1 {
		t.Fatalf("Expected 1 usage event, got %d", len(recorder.events))
	}
	ev := recorder.events[0]
	if ev.Type != usage.EventChatMessage {
		t.Errorf("Expected chat_message event, got %q", ev.Type)
	}
	if ev.ConversationID != result.ConversationID {
		t.Error("Expected the event to carry the conversation id")
	}
	if ev.Detail != string(llm.SourceRemote) {
		t.Errorf("Expected the completion source as detail, got %q", ev.Detail)
	}
	if ev.Tier != "pro" {
		t.Errorf("Expected the account tier on the event, got %q", ev.Tier)
	}
}

func TestSession_NewConversationClearsCurrent(t *testing.T) {
	sess, _ := newTestSession(t, &mockCompleter{})
	ctx := context.Background()

	first, _ := sess.Send(ctx, "first chat")
	sess.NewConversation()
	if sess.Current() != "" {
		t.Error("Expected current reference cleared")
	}

	second, err := sess.Send(ctx, "second chat")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if second.ConversationID == first.ConversationID {
		t.Error("Expected a fresh conversation after NewConversation")
	}
}

func TestSession_DeleteConversation(t *testing.T) {
	sess, st := newTestSession(t, &mockCompleter{})
	ctx := context.Background()

	result, _ := sess.Send(ctx, "doomed chat")

	if err := sess.DeleteConversation(ctx, result.ConversationID); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}
	if sess.Current() != "" {
		t.Error("Expected current reference cleared when deleting the current conversation")
	}
	if _, err := st.Get(ctx, result.ConversationID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected conversation gone, got %v", err)
	}

	// Idempotent
	if err := sess.DeleteConversation(ctx, result.ConversationID); err != nil {
		t.Errorf("Second DeleteConversation() should be a no-op, got %v", err)
	}
}

func TestSession_SelectUnknownConversation(t *testing.T) {
	sess, _ := newTestSession(t, &mockCompleter{})

	if err := sess.Select(context.Background(), "no-such-id"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSession_CompleterPanicBecomesErrorReply(t *testing.T) {
	completer := &mockCompleter{
		completeFunc: func(_ context.Context, _ string, _ []llm.Message) llm.Result {
			panic("provider exploded")
		},
	}
	sess, st := newTestSession(t, completer)
	ctx := context.Background()

	result, err := sess.Send(ctx, "trigger the defensive path")
	if err != nil {
		t.Fatalf("Send() should absorb the panic, got error %v", err)
	}
	if result.Source != llm.SourceFallback {
		t.Errorf("Expected fallback source, got %q", result.Source)
	}

	conv, _ := st.Get(ctx, result.ConversationID)
	if len(conv.Messages) != 2 {
		t.Fatalf("Expected the error reply to be appended, got %d messages", len(conv.Messages))
	}
	if conv.Messages[1].Role != store.RoleAssistant {
		t.Error("Expected the error reply to carry the assistant role")
	}
	if sess.Loading() {
		t.Error("Expected loading cleared")
	}
}

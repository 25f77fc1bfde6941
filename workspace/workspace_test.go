package workspace

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/yaguaretech/builder/generator"
	"github.com/yaguaretech/builder/models"
)

// fakeClient returns canned results; when gate is set it blocks until the
// gate is closed
type fakeClient struct {
	result  *models.GenerationResult
	err     error
	gate    chan struct{}
	started chan struct{}
	calls   int
	mu      sync.Mutex
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
	errors    []error
	history   []string
}

func (r *recordingNotifier) NotifyGenerationCompleted(id string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, id)
}

func (r *recordingNotifier) NotifyGenerationError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func (r *recordingNotifier) NotifyHistoryChanged(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, id)
}

func result(files ...models.FileChange) *models.GenerationResult {
	return &models.GenerationResult{
		Code:         "code",
		Explanation:  "explicación",
		Files:        files,
		GenerationID: "gen_test",
	}
}

func file(path string) models.FileChange {
	return models.FileChange{Path: path, Content: "// " + path, Action: models.ActionCreate}
}

func newTestWorkspace(c generator.Client, n Notifier) *Workspace {
	w := New(Options{Client: c, Notifier: n})
	seq := 0
	w.newID = func() string {
		seq++
		return "id" + strings.Repeat("x", seq)
	}
	return w
}

func TestSubmit_Success(t *testing.T) {
	n := &recordingNotifier{}
	w := newTestWorkspace(&fakeClient{result: result(file("src/App.tsx"), file("src/components/Login.tsx"))}, n)

	msg, res, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: "  crea un login  "})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.GenerationID != "gen_test" || msg.Content != "explicación" || msg.Sender != models.SenderSystem {
		t.Errorf("unexpected answer %+v", msg)
	}

	msgs := w.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected welcome + user + system, got %d messages", len(msgs))
	}
	if msgs[0].Content != WelcomeMessage || msgs[1].Content != "crea un login" || msgs[1].Sender != models.SenderUser {
		t.Errorf("unexpected transcript %+v", msgs[:2])
	}

	hist := w.History()
	if len(hist) != 1 || !hist[0].IsActive || hist[0].Title != "crea un login" {
		t.Errorf("unexpected history %+v", hist)
	}
	if diff := cmp.Diff(res.Files, w.Files()); diff != "" {
		t.Errorf("current files mismatch (-want +got):\n%s", diff)
	}
	if w.Loading() {
		t.Error("loading still set after success")
	}
	if len(n.completed) != 1 || len(n.errors) != 0 {
		t.Errorf("expected one completed notification, got %+v", n)
	}
}

func TestSubmit_EmptyPromptRecordsNothing(t *testing.T) {
	c := &fakeClient{result: result()}
	w := newTestWorkspace(c, nil)

	for _, p := range []string{"", "   ", "\n\t"} {
		if _, _, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: p}); !errors.Is(err, ErrEmptyPrompt) {
			t.Errorf("Submit(%q) = %v, want ErrEmptyPrompt", p, err)
		}
	}
	if len(w.Messages()) != 1 || c.calls != 0 {
		t.Errorf("empty prompts must not reach the transcript or the client")
	}
}

func TestSubmit_FailureAppendsApologyAndNotifiesOnce(t *testing.T) {
	n := &recordingNotifier{}
	w := newTestWorkspace(&fakeClient{err: generator.ErrGeneration}, n)
	w.files = []models.FileChange{file("keep.ts")}

	msg, _, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: "algo"})
	if !errors.Is(err, generator.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
	if msg.Content != ApologyMessage {
		t.Errorf("expected apology, got %q", msg.Content)
	}

	msgs := w.Messages()
	if len(msgs) != 3 || msgs[2].Content != ApologyMessage || msgs[2].Sender != models.SenderSystem {
		t.Errorf("transcript should end with the apology, got %+v", msgs)
	}
	if len(n.errors) != 1 || len(n.completed) != 0 {
		t.Errorf("expected exactly one error notification, got %+v", n)
	}
	if len(w.History()) != 0 {
		t.Error("failed generation must not add history")
	}
	if diff := cmp.Diff([]models.FileChange{file("keep.ts")}, w.Files()); diff != "" {
		t.Errorf("failure changed current files (-want +got):\n%s", diff)
	}
	if w.Loading() {
		t.Error("loading still set after failure")
	}
}

func TestSubmit_NilResultIsFailure(t *testing.T) {
	w := newTestWorkspace(&fakeClient{}, nil)
	if _, _, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: "x"}); !errors.Is(err, generator.ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}

func TestSubmit_BusyRejectsSecondSubmit(t *testing.T) {
	c := &fakeClient{result: result(file("a.ts")), gate: make(chan struct{}), started: make(chan struct{})}
	w := newTestWorkspace(c, nil)

	done := make(chan error, 1)
	go func() {
		_, _, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: "first"})
		done <- err
	}()
	<-c.started

	if !w.Loading() {
		t.Error("loading should be set while generating")
	}
	if _, _, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: "second"}); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(c.gate)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}

	for _, m := range w.Messages() {
		if m.Content == "second" {
			t.Error("rejected prompt reached the transcript")
		}
	}
}

func TestSubmit_TimeoutBoundsGeneration(t *testing.T) {
	n := &recordingNotifier{}
	c := &fakeClient{gate: make(chan struct{})}
	w := newTestWorkspace(c, n)
	w.timeout = 20 * time.Millisecond

	_, _, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: "lento"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
	if len(n.errors) != 1 {
		t.Errorf("expected one error notification, got %d", len(n.errors))
	}
}

func TestSubmit_HistoryTitleTruncated(t *testing.T) {
	w := newTestWorkspace(&fakeClient{result: result(file("a.ts"))}, nil)
	prompt := strings.Repeat("ñ", 80)

	if _, _, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: prompt}); err != nil {
		t.Fatal(err)
	}
	if got := w.History()[0].Title; got != strings.Repeat("ñ", 50) {
		t.Errorf("title = %q", got)
	}
}

func TestSelectHistory(t *testing.T) {
	c := &fakeClient{result: result(file("first.ts"))}
	n := &recordingNotifier{}
	w := newTestWorkspace(c, n)

	if _, _, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: "uno"}); err != nil {
		t.Fatal(err)
	}
	c.result = result(file("second.ts"))
	if _, _, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: "dos"}); err != nil {
		t.Fatal(err)
	}

	if latest, ok := w.ActiveHistory(); !ok || latest.Title != "dos" {
		t.Errorf("expected newest item active, got %+v (ok=%v)", latest, ok)
	}

	first := w.History()[0]
	item, err := w.SelectHistory(first.ID)
	if err != nil {
		t.Fatalf("SelectHistory: %v", err)
	}
	if !item.IsActive {
		t.Error("selected item not active")
	}

	active := 0
	for _, h := range w.History() {
		if h.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("expected exactly one active item, got %d", active)
	}
	if diff := cmp.Diff(first.Files, w.Files()); diff != "" {
		t.Errorf("current files not restored (-want +got):\n%s", diff)
	}
	if active, ok := w.ActiveHistory(); !ok || active.ID != first.ID {
		t.Errorf("ActiveHistory = %q, want %q", active.ID, first.ID)
	}

	if _, err := w.SelectHistory("missing"); !errors.Is(err, ErrHistoryNotFound) {
		t.Errorf("expected ErrHistoryNotFound, got %v", err)
	}
}

func TestActiveHistory_EmptyWorkspace(t *testing.T) {
	w := newTestWorkspace(&fakeClient{}, nil)
	if _, ok := w.ActiveHistory(); ok {
		t.Error("fresh workspace has no active history item")
	}
}

func TestSelectHistory_ReturnsDeepCopy(t *testing.T) {
	w := newTestWorkspace(&fakeClient{result: result(file("a.ts"))}, nil)
	if _, _, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: "x"}); err != nil {
		t.Fatal(err)
	}

	id := w.History()[0].ID
	item, _ := w.SelectHistory(id)
	item.Files[0].Content = "mutated"

	again, _ := w.SelectHistory(id)
	if again.Files[0].Content == "mutated" {
		t.Error("history item aliased by a returned copy")
	}
	if w.Files()[0].Content == "mutated" {
		t.Error("current files aliased by a returned history item")
	}
}

func TestTreeAndPreview(t *testing.T) {
	w := newTestWorkspace(&fakeClient{result: result(file("src/components/StudentList.tsx"))}, nil)

	if doc, tmpl := w.Preview(); doc != "" || tmpl != "" {
		t.Error("preview should be empty before any generation")
	}

	if _, _, err := w.Submit(context.Background(), models.GenerationRequest{Prompt: "alumnos"}); err != nil {
		t.Fatal(err)
	}

	doc, tmpl := w.Preview()
	if tmpl != "students" || !strings.Contains(doc, "Listado de Alumnos") {
		t.Errorf("unexpected preview template %q", tmpl)
	}
	if got := w.Tree().Selected; got != "src/components/StudentList.tsx" {
		t.Errorf("tree selection = %q", got)
	}

	f, ok := w.File("/src/components/StudentList.tsx")
	if !ok || f.Path != "src/components/StudentList.tsx" {
		t.Errorf("File lookup failed: %+v, %v", f, ok)
	}
	if _, ok := w.File("../x"); ok {
		t.Error("malformed path should not resolve")
	}
}

func TestRelativeAge(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "Hace 0 minutos"},
		{59 * time.Minute, "Hace 59 minutos"},
		{2 * time.Hour, "Hace 2 horas"},
		{50 * time.Hour, "Hace 2 días"},
		{-time.Minute, "Hace 0 minutos"},
	}
	for _, tt := range tests {
		if got := RelativeAge(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("RelativeAge(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

// Package workspace holds the state of one builder session: the chat
// transcript, the generation history and the files currently shown in the
// explorer and preview.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yaguaretech/builder/filetree"
	"github.com/yaguaretech/builder/generator"
	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/metrics"
	"github.com/yaguaretech/builder/models"
	"github.com/yaguaretech/builder/preview"
)

var (
	// ErrEmptyPrompt is returned for a blank prompt; nothing is recorded
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrBusy is returned while another generation is pending
	ErrBusy = errors.New("a generation is already in progress")
)

// titleLimit is the rune length of history titles cut from the prompt
const titleLimit = 50

// Notifier receives workspace events for the toast stream
type Notifier interface {
	NotifyGenerationCompleted(generationID string, fileCount int)
	NotifyGenerationError(err error)
	NotifyHistoryChanged(activeID string)
}

// Options configure a Workspace
type Options struct {
	Client   generator.Client
	Notifier Notifier
	// Baseline is merged under the generated files in the tree projection
	Baseline []models.FileNode
	// Timeout bounds each generation call; zero means no bound beyond the
	// caller's context
	Timeout time.Duration
}

// Workspace serializes generations and owns the derived views
type Workspace struct {
	client     generator.Client
	notifier   Notifier
	baseline   []models.FileNode
	timeout    time.Duration
	transcript *Transcript
	history    *History

	mu      sync.Mutex
	files   []models.FileChange
	loading bool

	now   func() time.Time
	newID func() string
}

// New creates a workspace with a fresh transcript and empty history
func New(opts Options) *Workspace {
	w := &Workspace{
		client:   opts.Client,
		notifier: opts.Notifier,
		baseline: opts.Baseline,
		timeout:  opts.Timeout,
		history:  NewHistory(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	w.transcript = NewTranscript(models.Message{
		ID:        "welcome",
		Content:   WelcomeMessage,
		Sender:    models.SenderSystem,
		Timestamp: w.now(),
	})
	return w
}

// Submit runs one generation for req. The user message is recorded before
// the call; the answer, or an apology on failure, is recorded after it. The
// returned message is the system answer.
func (w *Workspace) Submit(ctx context.Context, req models.GenerationRequest) (models.Message, *models.GenerationResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return models.Message{}, nil, ErrEmptyPrompt
	}
	req.Prompt = prompt

	w.mu.Lock()
	if w.loading {
		w.mu.Unlock()
		return models.Message{}, nil, ErrBusy
	}
	w.loading = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.loading = false
		w.mu.Unlock()
	}()

	w.transcript.Append(models.Message{
		ID:        w.newID(),
		Content:   prompt,
		Sender:    models.SenderUser,
		Timestamp: w.now(),
	})

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := w.client.Generate(ctx, req)
	if err == nil && result == nil {
		err = fmt.Errorf("%w: empty result", generator.ErrGeneration)
	}
	if err != nil {
		metrics.RecordGeneration(w.client.Name(), time.Since(start), 0, false)
		log.Error().Err(err).Str("generator", w.client.Name()).Msg("generation failed")

		apology := models.Message{
			ID:        w.newID(),
			Content:   ApologyMessage,
			Sender:    models.SenderSystem,
			Timestamp: w.now(),
		}
		w.transcript.Append(apology)
		w.notify(func(n Notifier) { n.NotifyGenerationError(err) })
		return apology, nil, err
	}

	files := models.CloneFiles(result.Files)
	metrics.RecordGeneration(w.client.Name(), time.Since(start), len(files), true)

	answer := models.Message{
		ID:        w.newID(),
		Content:   result.Explanation,
		Sender:    models.SenderSystem,
		Timestamp: w.now(),
		Code:      result.Code,
		Files:     files,
	}
	w.transcript.Append(answer)

	item := models.HistoryItem{
		ID:          w.newID(),
		Title:       truncateTitle(prompt),
		Timestamp:   w.now(),
		Files:       files,
		Explanation: result.Explanation,
	}
	w.history.Add(item)

	w.mu.Lock()
	w.files = models.CloneFiles(files)
	w.mu.Unlock()

	log.Info().
		Str("generationId", result.GenerationID).
		Int("files", len(files)).
		Str("preview", preview.Classify(files)).
		Msg("generation completed")

	w.notify(func(n Notifier) {
		n.NotifyGenerationCompleted(result.GenerationID, len(files))
		n.NotifyHistoryChanged(item.ID)
	})
	return answer, result, nil
}

// SelectHistory makes a past generation current again
func (w *Workspace) SelectHistory(id string) (models.HistoryItem, error) {
	item, err := w.history.Select(id)
	if err != nil {
		return models.HistoryItem{}, err
	}

	w.mu.Lock()
	w.files = models.CloneFiles(item.Files)
	w.mu.Unlock()

	w.notify(func(n Notifier) { n.NotifyHistoryChanged(item.ID) })
	return item, nil
}

func (w *Workspace) notify(fn func(Notifier)) {
	if w.notifier != nil {
		fn(w.notifier)
	}
}

// Messages returns the transcript
func (w *Workspace) Messages() []models.Message {
	return w.transcript.Messages()
}

// History returns every history item, oldest first
func (w *Workspace) History() []models.HistoryItem {
	return w.history.Items()
}

// ActiveHistory returns the history item whose files are current
func (w *Workspace) ActiveHistory() (models.HistoryItem, bool) {
	return w.history.Active()
}

// Loading reports whether a generation is pending
func (w *Workspace) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// Generator names the active generation strategy
func (w *Workspace) Generator() string {
	return w.client.Name()
}

// Files returns the current file set
func (w *Workspace) Files() []models.FileChange {
	w.mu.Lock()
	defer w.mu.Unlock()
	return models.CloneFiles(w.files)
}

// File returns the current file at path
func (w *Workspace) File(path string) (models.FileChange, bool) {
	normalized, err := models.NormalizePath(path)
	if err != nil {
		return models.FileChange{}, false
	}
	for _, f := range w.Files() {
		if p, err := models.NormalizePath(f.Path); err == nil && p == normalized && f.Action != models.ActionDelete {
			return f, true
		}
	}
	return models.FileChange{}, false
}

// Tree projects the current files over the baseline
func (w *Workspace) Tree() filetree.Projection {
	return filetree.Project(w.baseline, w.Files())
}

// Preview returns the preview document for the current files and the
// template it was built from. Both are empty when there are no files.
func (w *Workspace) Preview() (doc string, template string) {
	files := w.Files()
	return preview.Synthesize(files), preview.Classify(files)
}

// truncateTitle cuts prompt to titleLimit runes
func truncateTitle(prompt string) string {
	if utf8.RuneCountInString(prompt) <= titleLimit {
		return prompt
	}
	return string([]rune(prompt)[:titleLimit])
}

// RelativeAge renders how long ago t was, the way the history sidebar
// shows it
func RelativeAge(t, now time.Time) string {
	mins := int(now.Sub(t) / time.Minute)
	if mins < 0 {
		mins = 0
	}
	switch {
	case mins < 60:
		return fmt.Sprintf("Hace %d minutos", mins)
	case mins < 24*60:
		return fmt.Sprintf("Hace %d horas", mins/60)
	default:
		return fmt.Sprintf("Hace %d días", mins/(24*60))
	}
}

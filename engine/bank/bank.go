// Package bank owns the question set, the manifest of uploaded sources and
// the per-session exclusion set used when drawing questions.
package bank

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nathoo/quizshot/clock"
	"github.com/nathoo/quizshot/engine/save"
	"github.com/nathoo/quizshot/engine/state"
	"github.com/nathoo/quizshot/errors"
	"github.com/nathoo/quizshot/types"
)

// Rand is the randomness a bank needs. *engine.RNG satisfies it.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Persister receives the full bank after every upload and delete.
type Persister interface {
	SaveBank(save.BankData) error
}

// Options configures a Bank. Rand is required; the rest have defaults.
type Options struct {
	Rand   Rand
	Store  Persister // nil disables persistence
	Clock  clock.Clock
	Logger *slog.Logger
	NewID  func() string
}

// Bank is safe for concurrent use.
type Bank struct {
	mu        sync.Mutex
	all       []types.Question
	sources   []types.SourceFile
	exhausted map[string]bool

	rng   Rand
	store Persister
	clock clock.Clock
	log   *slog.Logger
	newID func() string
}

// New creates an empty bank.
func New(opts Options) *Bank {
	b := &Bank{
		exhausted: map[string]bool{},
		rng:       opts.Rand,
		store:     opts.Store,
		clock:     opts.Clock,
		log:       opts.Logger,
		newID:     opts.NewID,
	}
	if b.clock == nil {
		b.clock = clock.New()
	}
	if b.log == nil {
		b.log = slog.New(slog.DiscardHandler)
	}
	if b.newID == nil {
		b.newID = uuid.NewString
	}
	return b
}

// Restore replaces the bank contents with previously persisted data and
// returns how many saved questions were dropped. Questions without an ID
// are given one. Questions that cannot be played are logged and skipped,
// and the source that held each one shrinks so the manifest stays aligned
// with the questions. Nothing is written back.
func (b *Bank) Restore(data save.BankData) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.all = make([]types.Question, 0, len(data.Questions))
	b.sources = append([]types.SourceFile(nil), data.Files...)
	b.exhausted = map[string]bool{}

	seen := map[string]bool{}
	dropped := 0
	src, left := -1, 0
	for i, q := range data.Questions {
		for left <= 0 && src+1 < len(b.sources) {
			src++
			left = b.sources[src].QuestionCount
		}
		owner := -1
		if left > 0 {
			owner = src
			left--
		}

		if problems := state.Problems(q); len(problems) > 0 {
			err := errors.MalformedContentf("saved question %d: %s", i+1, strings.Join(problems, "; "))
			b.log.Warn("dropping unplayable question", "error", err)
			if owner >= 0 {
				b.sources[owner].QuestionCount--
			}
			dropped++
			continue
		}

		if q.ID == "" || seen[q.ID] {
			q.ID = b.newID()
		}
		seen[q.ID] = true
		b.all = append(b.all, q)
	}
	return dropped
}

// Ingest appends the questions of one upload and records its source.
// An upload with no questions changes nothing. The in-memory bank keeps
// the upload even when persisting it fails.
func (b *Bank) Ingest(name, path string, qs []types.Question) (int, error) {
	if len(qs) == 0 {
		return 0, nil
	}

	b.mu.Lock()
	for _, q := range qs {
		q = clone(q)
		q.ID = b.newID()
		b.all = append(b.all, q)
	}
	b.sources = append(b.sources, types.SourceFile{
		Name:          name,
		Path:          path,
		QuestionCount: len(qs),
		UploadedAt:    b.clock.Now(),
	})
	data := b.snapshot()
	b.mu.Unlock()

	b.log.Info("questions ingested", "file", name, "count", len(qs), "total", len(data.Questions))
	return len(qs), b.persist(data)
}

// DeleteSource removes the source at index and the questions it contributed.
func (b *Bank) DeleteSource(index int) error {
	b.mu.Lock()
	if index < 0 || index >= len(b.sources) {
		n := len(b.sources)
		b.mu.Unlock()
		return errors.InvalidArgumentf("source index %d out of range [0,%d)", index, n)
	}

	start := 0
	for _, s := range b.sources[:index] {
		start += s.QuestionCount
	}
	end := start + b.sources[index].QuestionCount
	if end > len(b.all) {
		end = len(b.all)
	}
	if start > end {
		start = end
	}

	for _, q := range b.all[start:end] {
		delete(b.exhausted, q.ID)
	}
	removed := b.sources[index]
	b.all = append(b.all[:start:start], b.all[end:]...)
	b.sources = append(b.sources[:index:index], b.sources[index+1:]...)
	data := b.snapshot()
	b.mu.Unlock()

	b.log.Info("source deleted", "file", removed.Name, "questions", end-start)
	return b.persist(data)
}

// Draw picks a random question, preferring ones not drawn this session and
// matching level. It returns a shuffled copy. The second result is false
// only when the bank is empty.
func (b *Bank) Draw(level types.Level) (types.Question, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.all) == 0 {
		return types.Question{}, false
	}

	var fresh []int
	for i, q := range b.all {
		if !b.exhausted[q.ID] {
			fresh = append(fresh, i)
		}
	}
	pool := b.byLevel(fresh, level)
	if len(pool) == 0 {
		b.log.Debug("all questions drawn, widening pool", "level", level)
		everything := make([]int, len(b.all))
		for i := range everything {
			everything[i] = i
		}
		pool = b.byLevel(everything, level)
	}

	picked := b.all[pool[b.rng.Intn(len(pool))]]
	b.exhausted[picked.ID] = true
	return b.shuffle(clone(picked)), true
}

// byLevel narrows candidates to level, falling back to all candidates
// when none match.
func (b *Bank) byLevel(candidates []int, level types.Level) []int {
	if level == types.LevelAny {
		return candidates
	}
	var matched []int
	for _, i := range candidates {
		if b.all[i].Level == level {
			matched = append(matched, i)
		}
	}
	if len(matched) == 0 {
		return candidates
	}
	return matched
}

// shuffle permutes the answers of q in place and relocates the correct
// indexes.
func (b *Bank) shuffle(q types.Question) types.Question {
	switch body := q.Body.(type) {
	case types.MultipleChoice:
		perm := b.perm(len(body.Options))
		opts := make([]string, len(perm))
		correct := types.NoAnswer
		for to, from := range perm {
			opts[to] = body.Options[from]
			if from == body.Correct {
				correct = to
			}
		}
		q.Body = types.MultipleChoice{Options: opts, Correct: correct}

	case types.TrueFalse:
		wasCorrect := make(map[int]bool, len(body.Correct))
		for _, i := range body.Correct {
			wasCorrect[i] = true
		}
		perm := b.perm(len(body.Statements))
		stmts := make([]string, len(perm))
		var correct []int
		for to, from := range perm {
			stmts[to] = body.Statements[from]
			if wasCorrect[from] {
				correct = append(correct, to)
			}
		}
		primary := types.NoAnswer
		if len(correct) > 0 {
			primary = correct[0]
		}
		q.Body = types.TrueFalse{Statements: stmts, Correct: correct, Primary: primary}
	}
	return q
}

// perm returns a random ordering of original positions: perm[new] = old.
func (b *Bank) perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	b.rng.Shuffle(n, func(i, j int) { p[i], p[j] = p[j], p[i] })
	return p
}

// HasUnusedQuestions reports whether some question has not been drawn
// this session.
func (b *Bank) HasUnusedQuestions() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, q := range b.all {
		if !b.exhausted[q.ID] {
			return true
		}
	}
	return false
}

// ResetSession clears the exclusion set.
func (b *Bank) ResetSession() {
	b.mu.Lock()
	b.exhausted = map[string]bool{}
	b.mu.Unlock()
}

// Questions returns a copy of every stored question in upload order.
func (b *Bank) Questions() []types.Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.Question, len(b.all))
	for i, q := range b.all {
		out[i] = clone(q)
	}
	return out
}

// Sources returns a copy of the upload manifest.
func (b *Bank) Sources() []types.SourceFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.SourceFile(nil), b.sources...)
}

// Len returns the number of stored questions.
func (b *Bank) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.all)
}

// snapshot must be called with mu held.
func (b *Bank) snapshot() save.BankData {
	qs := make([]types.Question, len(b.all))
	for i, q := range b.all {
		qs[i] = clone(q)
	}
	return save.BankData{
		Questions: qs,
		Files:     append([]types.SourceFile(nil), b.sources...),
	}
}

func (b *Bank) persist(data save.BankData) error {
	if b.store == nil {
		return nil
	}
	if err := b.store.SaveBank(data); err != nil {
		b.log.Error("saving question bank", "error", err)
		return fmt.Errorf("saving question bank: %w", err)
	}
	return nil
}

// clone deep-copies the answer slices of q.
func clone(q types.Question) types.Question {
	switch body := q.Body.(type) {
	case types.MultipleChoice:
		body.Options = append([]string(nil), body.Options...)
		q.Body = body
	case types.TrueFalse:
		body.Statements = append([]string(nil), body.Statements...)
		body.Correct = append([]int(nil), body.Correct...)
		q.Body = body
	}
	return q
}

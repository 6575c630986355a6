package bank

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/nathoo/quizshot/clock"
	"github.com/nathoo/quizshot/engine/save"
	qerrors "github.com/nathoo/quizshot/errors"
	"github.com/nathoo/quizshot/types"
)

type fakeStore struct {
	saves []save.BankData
	err   error
}

func (f *fakeStore) SaveBank(d save.BankData) error {
	f.saves = append(f.saves, d)
	return f.err
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestBank(seed int64, store Persister) *Bank {
	return New(Options{
		Rand:  rand.New(rand.NewSource(seed)),
		Store: store,
		Clock: clock.Fixed{T: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		NewID: sequentialIDs(),
	})
}

func mc(text string, level types.Level, opts []string, correct int) types.Question {
	return types.Question{Text: text, Level: level, Body: types.MultipleChoice{Options: opts, Correct: correct}}
}

func TestDraw_EmptyBank(t *testing.T) {
	b := newTestBank(1, nil)
	if _, ok := b.Draw(types.LevelAny); ok {
		t.Fatal("Draw on empty bank returned a question")
	}
	if b.HasUnusedQuestions() {
		t.Error("empty bank reports unused questions")
	}
}

func TestDraw_NeverRepeatsWhileUnusedRemain(t *testing.T) {
	b := newTestBank(7, nil)
	var qs []types.Question
	for i := 0; i < 6; i++ {
		qs = append(qs, mc(fmt.Sprintf("q%d", i), types.LevelComprehension, []string{"x", "y"}, 0))
	}
	if _, err := b.Ingest("a.txt", "/a.txt", qs); err != nil {
		t.Fatal(err)
	}

	seen := map[string]bool{}
	for i := 0; i < 6; i++ {
		if !b.HasUnusedQuestions() {
			t.Fatalf("draw %d: HasUnusedQuestions = false", i)
		}
		q, ok := b.Draw(types.LevelAny)
		if !ok {
			t.Fatalf("draw %d failed", i)
		}
		if seen[q.ID] {
			t.Fatalf("draw %d repeated %s", i, q.ID)
		}
		seen[q.ID] = true
	}
	if b.HasUnusedQuestions() {
		t.Error("HasUnusedQuestions = true after drawing everything")
	}
	if _, ok := b.Draw(types.LevelAny); !ok {
		t.Error("Draw after exhaustion should widen to the full bank")
	}
}

func TestDraw_IdenticalQuestionsAreDistinct(t *testing.T) {
	b := newTestBank(3, nil)
	same := mc("dup", types.LevelRecall, []string{"x", "y"}, 1)
	b.Ingest("a.txt", "", []types.Question{same, same})

	first, _ := b.Draw(types.LevelAny)
	if !b.HasUnusedQuestions() {
		t.Fatal("second copy of an identical question counted as used")
	}
	second, _ := b.Draw(types.LevelAny)
	if first.ID == second.ID {
		t.Errorf("drew %s twice", first.ID)
	}
}

func TestDraw_PrefersLevelThenFallsBack(t *testing.T) {
	b := newTestBank(5, nil)
	b.Ingest("a.txt", "", []types.Question{
		mc("hard", types.LevelApplication, []string{"x"}, 0),
		mc("easy1", types.LevelRecall, []string{"x"}, 0),
		mc("easy2", types.LevelRecall, []string{"x"}, 0),
	})

	q, _ := b.Draw(types.LevelApplication)
	if q.Text != "hard" {
		t.Fatalf("first application draw = %q, want hard", q.Text)
	}
	// No unused application questions left: fall back to unused others.
	for i := 0; i < 2; i++ {
		q, _ = b.Draw(types.LevelApplication)
		if q.Text == "hard" {
			t.Fatalf("fallback draw %d returned an exhausted question", i)
		}
	}
	// Everything drawn: the full bank is searched by level again.
	q, _ = b.Draw(types.LevelApplication)
	if q.Text != "hard" {
		t.Errorf("widened draw = %q, want hard", q.Text)
	}
}

func TestDraw_MultipleChoiceShuffleKeepsCorrectText(t *testing.T) {
	b := newTestBank(11, nil)
	b.Ingest("a.txt", "", []types.Question{
		mc("q", types.LevelRecall, []string{"w", "right", "x", "y"}, 1),
	})

	moved := false
	for i := 0; i < 50; i++ {
		q, _ := b.Draw(types.LevelAny)
		body := q.Body.(types.MultipleChoice)
		if body.Options[body.Correct] != "right" {
			t.Fatalf("draw %d: Options[%d] = %q, want right", i, body.Correct, body.Options[body.Correct])
		}
		if body.Correct != 1 {
			moved = true
		}
	}
	if !moved {
		t.Error("correct answer never moved in 50 shuffles")
	}
}

func TestDraw_UnmarkedMultipleChoiceStaysUnmarked(t *testing.T) {
	b := newTestBank(2, nil)
	b.Ingest("a.txt", "", []types.Question{mc("q", types.LevelRecall, []string{"a", "b"}, types.NoAnswer)})
	q, _ := b.Draw(types.LevelAny)
	if c := q.Body.(types.MultipleChoice).Correct; c != types.NoAnswer {
		t.Errorf("Correct = %d, want NoAnswer", c)
	}
}

func TestDraw_TrueFalseShuffleRebuildsCorrectSet(t *testing.T) {
	b := newTestBank(13, nil)
	b.Ingest("a.txt", "", []types.Question{{
		Text:  "tf",
		Level: types.LevelRecall,
		Body: types.TrueFalse{
			Statements: []string{"T1", "F1", "T2", "F2"},
			Correct:    []int{0, 2},
			Primary:    0,
		},
	}})

	for i := 0; i < 30; i++ {
		q, _ := b.Draw(types.LevelAny)
		body := q.Body.(types.TrueFalse)
		if len(body.Correct) != 2 {
			t.Fatalf("Correct = %v", body.Correct)
		}
		got := map[string]bool{}
		for _, idx := range body.Correct {
			got[body.Statements[idx]] = true
		}
		if !got["T1"] || !got["T2"] {
			t.Fatalf("correct statements = %v (order %q)", got, body.Statements)
		}
		if body.Primary != body.Correct[0] {
			t.Errorf("Primary = %d, want first correct position %d", body.Primary, body.Correct[0])
		}
	}
}

func TestDraw_ShortAnswerUnmodified(t *testing.T) {
	b := newTestBank(1, nil)
	b.Ingest("a.txt", "", []types.Question{{Text: "cap", Body: types.ShortAnswer{Expected: "Hanoi"}}})
	q, _ := b.Draw(types.LevelAny)
	if q.Body != (types.ShortAnswer{Expected: "Hanoi"}) {
		t.Errorf("Body = %+v", q.Body)
	}
}

func TestDraw_ReturnsCopy(t *testing.T) {
	b := newTestBank(1, nil)
	b.Ingest("a.txt", "", []types.Question{mc("q", types.LevelRecall, []string{"a", "b"}, 0)})
	q, _ := b.Draw(types.LevelAny)
	q.Body.(types.MultipleChoice).Options[0] = "mutated"

	for _, stored := range b.Questions() {
		for _, o := range stored.Body.(types.MultipleChoice).Options {
			if o == "mutated" {
				t.Fatal("Draw handed out the stored slice")
			}
		}
	}
}

func TestResetSession(t *testing.T) {
	b := newTestBank(1, nil)
	b.Ingest("a.txt", "", []types.Question{mc("q", types.LevelRecall, []string{"a"}, 0)})
	b.Draw(types.LevelAny)
	if b.HasUnusedQuestions() {
		t.Fatal("expected bank exhausted")
	}
	b.ResetSession()
	if !b.HasUnusedQuestions() {
		t.Error("ResetSession did not clear the exhausted set")
	}
	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1", b.Len())
	}
}

func TestIngest_RecordsSourceAndPersists(t *testing.T) {
	store := &fakeStore{}
	b := newTestBank(1, store)

	n, err := b.Ingest("bank.txt", "/data/bank.txt", []types.Question{
		mc("a", types.LevelRecall, []string{"x"}, 0),
		mc("b", types.LevelRecall, []string{"x"}, 0),
	})
	if err != nil || n != 2 {
		t.Fatalf("Ingest = %d, %v", n, err)
	}

	srcs := b.Sources()
	if len(srcs) != 1 {
		t.Fatalf("Sources = %+v", srcs)
	}
	want := types.SourceFile{
		Name:          "bank.txt",
		Path:          "/data/bank.txt",
		QuestionCount: 2,
		UploadedAt:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if srcs[0] != want {
		t.Errorf("source = %+v, want %+v", srcs[0], want)
	}

	qs := b.Questions()
	if qs[0].ID != "id-1" || qs[1].ID != "id-2" {
		t.Errorf("IDs = %q, %q", qs[0].ID, qs[1].ID)
	}
	if len(store.saves) != 1 || len(store.saves[0].Questions) != 2 {
		t.Errorf("saves = %+v", store.saves)
	}
}

func TestIngest_EmptyUploadChangesNothing(t *testing.T) {
	store := &fakeStore{}
	b := newTestBank(1, store)
	n, err := b.Ingest("empty.txt", "", nil)
	if n != 0 || err != nil {
		t.Fatalf("Ingest = %d, %v", n, err)
	}
	if len(b.Sources()) != 0 || len(store.saves) != 0 {
		t.Error("empty upload was recorded")
	}
}

func TestIngest_PersistFailureKeepsQuestions(t *testing.T) {
	boom := errors.New("disk full")
	b := newTestBank(1, &fakeStore{err: boom})
	n, err := b.Ingest("a.txt", "", []types.Question{mc("a", types.LevelRecall, []string{"x"}, 0)})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if n != 1 || b.Len() != 1 {
		t.Errorf("n = %d, Len = %d", n, b.Len())
	}
}

func TestDeleteSource_RemovesContributedSlice(t *testing.T) {
	store := &fakeStore{}
	b := newTestBank(1, store)
	b.Ingest("one.txt", "", []types.Question{mc("1a", "", []string{"x"}, 0)})
	b.Ingest("two.txt", "", []types.Question{mc("2a", "", []string{"x"}, 0), mc("2b", "", []string{"x"}, 0)})
	b.Ingest("three.txt", "", []types.Question{mc("3a", "", []string{"x"}, 0)})

	if err := b.DeleteSource(1); err != nil {
		t.Fatal(err)
	}

	var texts []string
	for _, q := range b.Questions() {
		texts = append(texts, q.Text)
	}
	if fmt.Sprint(texts) != "[1a 3a]" {
		t.Errorf("questions = %v, want [1a 3a]", texts)
	}
	srcs := b.Sources()
	if len(srcs) != 2 || srcs[0].Name != "one.txt" || srcs[1].Name != "three.txt" {
		t.Errorf("sources = %+v", srcs)
	}
	last := store.saves[len(store.saves)-1]
	if len(last.Questions) != 2 || len(last.Files) != 2 {
		t.Errorf("persisted %d questions, %d files", len(last.Questions), len(last.Files))
	}
}

func TestDeleteSource_ForgetsExhaustedIDs(t *testing.T) {
	b := newTestBank(1, nil)
	b.Ingest("one.txt", "", []types.Question{mc("1a", "", []string{"x"}, 0)})
	b.Draw(types.LevelAny)
	b.Ingest("two.txt", "", []types.Question{mc("2a", "", []string{"x"}, 0)})

	if err := b.DeleteSource(0); err != nil {
		t.Fatal(err)
	}
	if !b.HasUnusedQuestions() {
		t.Error("remaining question should be unused")
	}
	b.Draw(types.LevelAny)
	if b.HasUnusedQuestions() {
		t.Error("bank should be exhausted after drawing its only question")
	}
}

func TestDeleteSource_OutOfRange(t *testing.T) {
	b := newTestBank(1, nil)
	for _, idx := range []int{-1, 0, 3} {
		err := b.DeleteSource(idx)
		if qerrors.CodeOf(err) != qerrors.CodeInvalidArgument {
			t.Errorf("DeleteSource(%d) = %v, want InvalidArgument", idx, err)
		}
	}
}

func TestRestore_AssignsMissingIDs(t *testing.T) {
	b := newTestBank(1, nil)
	b.Restore(save.BankData{
		Questions: []types.Question{
			mc("a", "", []string{"x"}, 0),
			{ID: "keep", Text: "b", Body: types.ShortAnswer{Expected: "y"}},
			{ID: "keep", Text: "c", Body: types.ShortAnswer{Expected: "z"}},
		},
		Files: []types.SourceFile{{Name: "old.txt", QuestionCount: 3}},
	})

	qs := b.Questions()
	ids := map[string]bool{}
	for _, q := range qs {
		if q.ID == "" {
			t.Fatalf("question %q has no ID", q.Text)
		}
		ids[q.ID] = true
	}
	if len(ids) != 3 {
		t.Errorf("IDs not unique: %v", ids)
	}
	if qs[1].ID != "keep" {
		t.Errorf("existing ID replaced: %q", qs[1].ID)
	}
	if len(b.Sources()) != 1 {
		t.Errorf("Sources = %+v", b.Sources())
	}
}

func TestRestore_DropsUnplayableQuestions(t *testing.T) {
	b := newTestBank(1, nil)
	dropped := b.Restore(save.BankData{
		Questions: []types.Question{
			mc("first", "", []string{"x", "y"}, 0),
			mc("no options", "", nil, types.NoAnswer),
			{Text: "blank answer", Body: types.ShortAnswer{}},
			{Text: "stray index", Body: types.TrueFalse{Statements: []string{"a", "b"}, Correct: []int{0, 3}}},
			{Text: "last", Body: types.ShortAnswer{Expected: "z"}},
		},
		Files: []types.SourceFile{
			{Name: "a.txt", QuestionCount: 2},
			{Name: "b.txt", QuestionCount: 3},
		},
	})

	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
	qs := b.Questions()
	if len(qs) != 2 || qs[0].Text != "first" || qs[1].Text != "last" {
		t.Fatalf("Questions = %+v", qs)
	}
	sources := b.Sources()
	if sources[0].QuestionCount != 1 || sources[1].QuestionCount != 1 {
		t.Fatalf("Sources = %+v, want one question each", sources)
	}

	if err := b.DeleteSource(0); err != nil {
		t.Fatal(err)
	}
	if qs := b.Questions(); len(qs) != 1 || qs[0].Text != "last" {
		t.Errorf("after deleting a.txt: %+v", qs)
	}
}

func TestDraw_ConcurrentAccess(t *testing.T) {
	b := newTestBank(1, nil)
	var qs []types.Question
	for i := 0; i < 20; i++ {
		qs = append(qs, mc(fmt.Sprint(i), "", []string{"a", "b"}, 0))
	}
	b.Ingest("a.txt", "", qs)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				b.Draw(types.LevelRecall)
				b.HasUnusedQuestions()
			}
		}()
	}
	wg.Wait()
}

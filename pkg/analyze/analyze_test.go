package analyze

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/japaniel/lexiplan/pkg/config"
	"github.com/japaniel/lexiplan/pkg/corpus"
	"github.com/japaniel/lexiplan/pkg/filter"
	"github.com/japaniel/lexiplan/pkg/tokenize"
)

// fakeTokenizer splits sentences on "。" and tokens on spaces. The lemma is
// the surface; a "word/reading" token carries a reading.
type fakeTokenizer struct{}

func (fakeTokenizer) Tokenize(text string) ([]tokenize.Token, error) {
	var out []tokenize.Token
	for _, f := range strings.Fields(strings.ReplaceAll(text, "。", " ")) {
		lemma, reading, _ := strings.Cut(f, "/")
		out = append(out, tokenize.Token{Surface: lemma, Lemma: lemma, Reading: reading})
	}
	return out, nil
}

func (f fakeTokenizer) TokenizeSentences(text string) ([]tokenize.Sentence, error) {
	var out []tokenize.Sentence
	for _, s := range tokenize.SplitSentences(text, "。") {
		toks, _ := f.Tokenize(s)
		out = append(out, tokenize.Sentence{Text: strings.TrimSpace(s), Tokens: toks})
	}
	return out, nil
}

// memSource serves file contents from a map; missing paths fail.
type memSource map[string]string

func (m memSource) ExtractText(path string, lang config.Language) (string, error) {
	text, ok := m[path]
	if !ok {
		return "", errors.New("no such file")
	}
	return text, nil
}

func newTestAggregator(src memSource, fs *filter.Set) *Aggregator {
	cfg := config.Default()
	cfg.Language = config.Japanese
	a := NewAggregator(cfg, src, fakeTokenizer{}, fs)
	a.Workers = 3
	return a
}

func files(specs ...corpus.File) []corpus.File { return specs }

func TestAggregateIgnorePrecedence(t *testing.T) {
	fs := filter.New(config.Japanese, true)
	fs.Ignore("猫")
	src := memSource{"h/a.txt": "猫 猫 猫。猫 猫 学校。"}
	a := newTestAggregator(src, fs)

	res, err := a.Run(context.Background(), files(corpus.File{Path: "h/a.txt", Priority: corpus.High, Seq: 1}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := res.Words[tokenize.Key{Lemma: "猫"}]; ok {
		t.Errorf("ignored word must not be aggregated")
	}
	f := res.Files[0]
	if f.TotalTokens != 6 || f.BaselineKnown != 5 {
		t.Errorf("expected 6 total / 5 known, got %d / %d", f.TotalTokens, f.BaselineKnown)
	}
}

func TestAggregateSingleChar(t *testing.T) {
	src := memSource{"h/a.txt": strings.Repeat("の ", 100) + "学校。"}
	in := files(corpus.File{Path: "h/a.txt", Priority: corpus.High, Seq: 1})

	res, _ := newTestAggregator(src, filter.New(config.Japanese, true)).Run(context.Background(), in)
	if _, ok := res.Words[tokenize.Key{Lemma: "の"}]; ok {
		t.Errorf("single character lemma should be suppressed by default")
	}
	if res.Files[0].BaselineKnown != 100 {
		t.Errorf("suppressed tokens count as known, got %d", res.Files[0].BaselineKnown)
	}

	res, _ = newTestAggregator(src, filter.New(config.Japanese, false)).Run(context.Background(), in)
	ws, ok := res.Words[tokenize.Key{Lemma: "の"}]
	if !ok || ws.Total != 100 {
		t.Fatalf("expected の with 100 occurrences, got %+v", ws)
	}
}

func TestAggregateScores(t *testing.T) {
	src := memSource{
		"h/1.txt": "学校 学校 学校 先生。",
		"l/2.txt": "先生 先生 先生。",
		"g/3.txt": "先生 学校。",
	}
	in := files(
		corpus.File{Path: "h/1.txt", Priority: corpus.High, Seq: 1},
		corpus.File{Path: "l/2.txt", Priority: corpus.Low, Seq: 2},
		corpus.File{Path: "g/3.txt", Priority: corpus.Goal, Seq: 3},
	)
	res, err := newTestAggregator(src, filter.New(config.Japanese, true)).Run(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}

	a := res.Words[tokenize.Key{Lemma: "学校"}]
	b := res.Words[tokenize.Key{Lemma: "先生"}]
	if a.Score != 32 || a.High != 3 || a.Goal != 1 || a.Total != 4 {
		t.Errorf("学校: %+v", a)
	}
	if b.Score != 10+15+2 || b.High != 1 || b.Low != 3 || b.Goal != 1 || b.Total != 5 {
		t.Errorf("先生: %+v", b)
	}
	for _, ws := range res.Ordered() {
		if ws.Score != 10*ws.High+5*ws.Low+2*ws.Goal {
			t.Errorf("%s: score %d does not match counts", ws.Key, ws.Score)
		}
		if ws.Total != ws.High+ws.Low+ws.Goal {
			t.Errorf("%s: total %d does not match counts", ws.Key, ws.Total)
		}
	}
	if got := strings.Join(b.Sources(), ","); got != "1.txt,2.txt,3.txt" {
		t.Errorf("sources = %q", got)
	}
	if res.Order[0].Lemma != "学校" || res.Order[1].Lemma != "先生" {
		t.Errorf("unexpected first-appearance order %v", res.Order)
	}
}

func TestAggregateMinSeqAndErrors(t *testing.T) {
	var logs bytes.Buffer
	src := memSource{
		"h/1.txt": "学校。",
		"h/3.txt": "先生。",
	}
	in := files(
		corpus.File{Path: "h/1.txt", Priority: corpus.High, Seq: 1},
		corpus.File{Path: "h/2.txt", Priority: corpus.High, Seq: 2},
		corpus.File{Path: "h/3.txt", Priority: corpus.High, Seq: 3},
	)
	a := newTestAggregator(src, filter.New(config.Japanese, true))
	a.Logger = log.New(&logs, "", 0)
	var progress []int
	a.OnProgress = func(cur, total int) { progress = append(progress, cur) }

	res, err := a.Run(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Seq != 2 {
		t.Fatalf("expected one error for seq 2, got %v", res.Errors)
	}
	if !strings.Contains(logs.String(), "Warning") {
		t.Errorf("expected a warning to be logged, got %q", logs.String())
	}
	if len(res.Files) != 2 {
		t.Errorf("failed file must not produce file stats")
	}
	if got := res.Words[tokenize.Key{Lemma: "先生"}].MinSeq; got != 3 {
		t.Errorf("sequence must not shift after a failed file, got %d", got)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Errorf("progress = %v", progress)
	}
}

func TestAggregateContexts(t *testing.T) {
	src := memSource{"h/1.txt": "学校 先生 電車。学校 先生 電車。学校 先生。学校。学校 先生 電車 時間。"}
	res, err := newTestAggregator(src, filter.New(config.Japanese, true)).Run(context.Background(),
		files(corpus.File{Path: "h/1.txt", Priority: corpus.High, Seq: 1}))
	if err != nil {
		t.Fatal(err)
	}
	got := res.Words[tokenize.Key{Lemma: "学校"}].Contexts()
	want := []string{"学校 先生 電車。", "学校。", "学校 先生。"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("contexts = %q, want %q", got, want)
	}
	if got := res.Words[tokenize.Key{Lemma: "時間"}].Contexts(); len(got) != 1 {
		t.Errorf("single sighting should have one context, got %q", got)
	}
}

func TestAggregateLongSentenceContext(t *testing.T) {
	sentence := strings.Repeat("あ", 80) + " 猫 " + strings.Repeat("い", 80) + "。"
	src := memSource{"h/1.txt": sentence}
	f := files(corpus.File{Path: "h/1.txt", Priority: corpus.High, Seq: 1})

	res, err := newTestAggregator(src, filter.New(config.Japanese, true)).Run(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Words[tokenize.Key{Lemma: "猫"}].FirstContext; got != sentence {
		t.Errorf("first context = %q, want the whole sentence", got)
	}

	a := newTestAggregator(src, filter.New(config.Japanese, true))
	a.Context.MaxSentenceRunes = 120
	res, err = a.Run(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	want := "…" + strings.Repeat("あ", 19) + " 猫 " + strings.Repeat("い", 19) + "…"
	if got := res.Words[tokenize.Key{Lemma: "猫"}].FirstContext; got != want {
		t.Errorf("clipped context = %q, want %q", got, want)
	}
}

func TestAggregateKnownAndEmpty(t *testing.T) {
	fs := filter.New(config.Japanese, true)
	fs.AddKnown("学校", "がっこう")
	src := memSource{
		"h/1.txt": "学校/がっこう 学校/がっこう。",
		"h/2.txt": "Hello world。",
	}
	res, err := newTestAggregator(src, fs).Run(context.Background(), files(
		corpus.File{Path: "h/1.txt", Priority: corpus.High, Seq: 1},
		corpus.File{Path: "h/2.txt", Priority: corpus.High, Seq: 2},
	))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Words) != 0 {
		t.Errorf("expected no unknown words, got %v", res.Order)
	}
	if res.Files[0].Coverage != 100 {
		t.Errorf("coverage = %v", res.Files[0].Coverage)
	}
	if res.Files[1].TotalTokens != 0 || res.Files[1].Coverage != 0 {
		t.Errorf("empty file stats = %+v", res.Files[1])
	}
}

func TestAggregateFileUnknowns(t *testing.T) {
	src := memSource{"h/1.txt": "先生 学校 先生。先生。"}
	res, _ := newTestAggregator(src, filter.New(config.Japanese, true)).Run(context.Background(),
		files(corpus.File{Path: "h/1.txt", Priority: corpus.High, Seq: 1}))
	u := res.Files[0].Unknown
	if len(u) != 2 || u[0].Key.Lemma != "先生" || u[0].Count != 3 || u[1].Count != 1 {
		t.Errorf("unexpected per-file unknowns %+v", u)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	src := memSource{}
	var in []corpus.File
	for i := 0; i < 40; i++ {
		p := "f" + strings.Repeat("x", i)
		src[p] = strings.Repeat("学校 ", i%5) + "先生。電車 " + strings.Repeat("時間 ", i%3) + "。"
		in = append(in, corpus.File{Path: p, Priority: corpus.Priority(i % 3), Seq: i + 1})
	}
	run := func(workers int) *Result {
		a := newTestAggregator(src, filter.New(config.Japanese, true))
		a.Workers = workers
		res, err := a.Run(context.Background(), in)
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	seq, par := run(1), run(8)
	if len(seq.Order) != len(par.Order) {
		t.Fatalf("word count differs")
	}
	for i, k := range seq.Order {
		if par.Order[i] != k {
			t.Fatalf("order differs at %d", i)
		}
		x, y := seq.Words[k], par.Words[k]
		if x.Score != y.Score || x.MinSeq != y.MinSeq || strings.Join(x.Contexts(), "|") != strings.Join(y.Contexts(), "|") {
			t.Errorf("%s differs: %+v vs %+v", k, x, y)
		}
	}
}

// failingPool always returns an error on Submit.
type failingPool struct{}

func (f *failingPool) Start(ctx context.Context) {}
func (f *failingPool) Submit(job Job) error      { return errors.New("submit failed") }
func (f *failingPool) SubmitCtx(ctx context.Context, job Job) error {
	return errors.New("submit failed")
}
func (f *failingPool) Close() {}

func TestRunSubmitError(t *testing.T) {
	a := newTestAggregator(memSource{"a": "学校。"}, filter.New(config.Japanese, true))
	a.PoolFactory = func(workers, queue int) WorkerPoolInterface { return &failingPool{} }
	if _, err := a.Run(context.Background(), files(corpus.File{Path: "a", Seq: 1})); err == nil {
		t.Fatalf("expected submit error")
	}
}

func TestRunEmpty(t *testing.T) {
	res, err := newTestAggregator(nil, filter.New(config.Japanese, true)).Run(context.Background(), nil)
	if err != nil || len(res.Words) != 0 || len(res.Files) != 0 {
		t.Errorf("empty corpus: %+v %v", res, err)
	}
}

package tokenize

import (
	"reflect"
	"testing"

	"github.com/japaniel/lexiplan/pkg/config"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		boundaries string
		expected   []string
	}{
		{"empty", "", "。", nil},
		{"whitespace only", " \n ", "。\n", nil},
		{"two sentences", "猫です。犬です。", "。", []string{"猫です。", "犬です。"}},
		{"trailing flush", "猫です。犬", "。", []string{"猫です。", "犬"}},
		{"newline boundary", "はい\nいいえ", "\n", []string{"はい\n", "いいえ"}},
		{"ascii marks", "本当?うん!", "?!", []string{"本当?", "うん!"}},
		{"chinese semicolon", "我去；你来", "；", []string{"我去；", "你来"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.input, tt.boundaries)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestHasTarget(t *testing.T) {
	tests := []struct {
		lang config.Language
		s    string
		want bool
	}{
		{config.Japanese, "猫", true},
		{config.Japanese, "ねこ", true},
		{config.Japanese, "ネコ", true},
		{config.Japanese, "00:01:02,500", false},
		{config.Japanese, "Hello", false},
		{config.Japanese, "😀", false},
		{config.Chinese, "学习", true},
		{config.Chinese, "ねこ", false},
		{config.Chinese, "{\\an8}", false},
	}
	for _, tt := range tests {
		if got := HasTarget(tt.lang, tt.s); got != tt.want {
			t.Errorf("HasTarget(%s, %q) = %v, want %v", tt.lang, tt.s, got, tt.want)
		}
	}
}

func TestToHiragana(t *testing.T) {
	if got := ToHiragana("タベル"); got != "たべる" {
		t.Errorf("got %q", got)
	}
	if got := ToHiragana("ラーメン"); got != "らーめん" {
		t.Errorf("got %q", got)
	}
}

func TestJapaneseTokenize(t *testing.T) {
	j, err := NewJapanese("。！？!?\n")
	if err != nil {
		t.Fatalf("NewJapanese: %v", err)
	}

	sentences, err := j.TokenizeSentences("猫が好きです。昨日、寿司を食べた")
	if err != nil {
		t.Fatalf("TokenizeSentences: %v", err)
	}
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %+v", len(sentences), sentences)
	}
	if sentences[0].Text != "猫が好きです。" {
		t.Errorf("unexpected first sentence %q", sentences[0].Text)
	}

	for _, s := range sentences {
		for _, tok := range s.Tokens {
			if tok.Surface == "。" || tok.Surface == "、" {
				t.Errorf("punctuation token leaked: %+v", tok)
			}
		}
	}

	var cat, eat *Token
	for i := range sentences[0].Tokens {
		if sentences[0].Tokens[i].Lemma == "猫" {
			cat = &sentences[0].Tokens[i]
		}
	}
	for i := range sentences[1].Tokens {
		if sentences[1].Tokens[i].Lemma == "食べる" {
			eat = &sentences[1].Tokens[i]
		}
	}
	if cat == nil || cat.Reading != "ねこ" {
		t.Errorf("expected 猫 with reading ねこ, got %+v", cat)
	}
	if eat == nil {
		t.Fatalf("expected lemma 食べる in %+v", sentences[1].Tokens)
	}
	if eat.Surface != "食べ" || eat.Reading != "たべる" {
		t.Errorf("expected surface 食べ with lemma reading たべる, got %+v", eat)
	}
}

func TestJapaneseEmpty(t *testing.T) {
	j, err := NewJapanese("。")
	if err != nil {
		t.Fatalf("NewJapanese: %v", err)
	}
	sentences, err := j.TokenizeSentences("")
	if err != nil {
		t.Fatalf("TokenizeSentences: %v", err)
	}
	if len(sentences) != 0 {
		t.Errorf("expected zero sentences, got %d", len(sentences))
	}
}

func TestChineseTokenize(t *testing.T) {
	c, err := NewChinese("。！？!?\n；;…", nil)
	if err != nil {
		t.Fatalf("NewChinese: %v", err)
	}
	sentences, err := c.TokenizeSentences("我喜欢アニメ。你呢？hello")
	if err != nil {
		t.Fatalf("TokenizeSentences: %v", err)
	}
	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d", len(sentences))
	}
	for _, s := range sentences {
		for _, tok := range s.Tokens {
			if tok.Reading != "" {
				t.Errorf("chinese token with reading: %+v", tok)
			}
			if !HasTarget(config.Chinese, tok.Lemma) || containsFunc(tok.Lemma, IsKana) {
				t.Errorf("non-hanzi token kept: %+v", tok)
			}
		}
	}
	if len(sentences[2].Tokens) != 0 {
		t.Errorf("latin sentence produced tokens: %+v", sentences[2].Tokens)
	}
}

func TestChineseReinforced(t *testing.T) {
	c, err := NewChinese("。", []config.Pair{{Left: "我", Right: "们"}})
	if err != nil {
		t.Fatalf("NewChinese: %v", err)
	}
	tokens, err := c.Tokenize("我们是学生")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var sawWo, sawMen bool
	for _, tok := range tokens {
		switch tok.Lemma {
		case "我们":
			t.Errorf("fused pair survived reinforced segmentation: %+v", tokens)
		case "我":
			sawWo = true
		case "们":
			sawMen = true
		}
	}
	if !sawWo || !sawMen {
		t.Errorf("expected 我 and 们 in %+v", tokens)
	}
}

func TestNewByLanguage(t *testing.T) {
	cfg := config.Default()
	cfg.Language = config.Japanese
	tk, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := tk.(*Japanese); !ok {
		t.Errorf("expected *Japanese, got %T", tk)
	}

	cfg.Language = "en"
	if _, err := New(cfg); err == nil {
		t.Errorf("expected error for unsupported language")
	}
}

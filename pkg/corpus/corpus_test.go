package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/japaniel/lexiplan/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkerOrder(t *testing.T) {
	root := t.TempDir()
	ja := filepath.Join(root, "ja")

	writeFile(t, filepath.Join(ja, "HighPriority", "b.txt"), "b")
	writeFile(t, filepath.Join(ja, "HighPriority", "A.txt"), "a")
	writeFile(t, filepath.Join(ja, "HighPriority", "c.srt"), "c")
	writeFile(t, filepath.Join(ja, "HighPriority", "_order.txt"), "# watch first\nc.srt\nmissing.txt\n")
	writeFile(t, filepath.Join(ja, "LowPriority", "show", "ep02.srt"), "2")
	writeFile(t, filepath.Join(ja, "LowPriority", "show", "ep01.srt"), "1")
	writeFile(t, filepath.Join(ja, "LowPriority", "notes.md"), "n")
	writeFile(t, filepath.Join(ja, "LowPriority", "cover.jpg"), "x")
	writeFile(t, filepath.Join(ja, "LowPriority", ".hidden.txt"), "h")
	writeFile(t, filepath.Join(ja, "GoalContent", "novel.txt"), "g")

	w := &Walker{Root: root, ManifestName: "_order.txt"}
	files, err := w.Files(config.Japanese)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	want := []struct {
		rel      string
		priority Priority
	}{
		{"HighPriority/c.srt", High},
		{"HighPriority/A.txt", High},
		{"HighPriority/b.txt", High},
		{"LowPriority/notes.md", Low},
		{"LowPriority/show/ep01.srt", Low},
		{"LowPriority/show/ep02.srt", Low},
		{"GoalContent/novel.txt", Goal},
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d: %+v", len(want), len(files), files)
	}
	for i, f := range files {
		rel, _ := filepath.Rel(ja, f.Path)
		if filepath.ToSlash(rel) != want[i].rel || f.Priority != want[i].priority {
			t.Errorf("file %d: got %s (%s), want %s (%s)", i, rel, f.Priority, want[i].rel, want[i].priority)
		}
		if f.Seq != i+1 {
			t.Errorf("file %d: seq %d, want %d", i, f.Seq, i+1)
		}
	}
}

func TestWalkerMissingRoot(t *testing.T) {
	w := &Walker{Root: t.TempDir(), ManifestName: "_order.txt"}
	_, err := w.Files(config.Chinese)
	if !errors.Is(err, ErrNoCorpus) {
		t.Fatalf("expected ErrNoCorpus, got %v", err)
	}
}

func TestWalkerEmptyTiers(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "zh"), 0755); err != nil {
		t.Fatal(err)
	}
	w := &Walker{Root: root, ManifestName: "_order.txt"}
	files, err := w.Files(config.Chinese)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %+v", files)
	}
}

func TestPriorityString(t *testing.T) {
	if High.String() != "HIGH" || Low.String() != "LOW" || Goal.String() != "GOAL" {
		t.Errorf("unexpected priority names")
	}
}

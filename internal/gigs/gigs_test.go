package gigs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/gigs/internal/apperr"
	"github.com/starford/gigs/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testOptions(t *testing.T) (Options, string) {
	t.Helper()
	root, _ := testutil.ContentDir(t)
	return Options{
		InputRoot:  root,
		OutputPath: filepath.Join(t.TempDir(), "public", "data", "gigs.json"),
		Extension:  ".mdx",
	}, root
}

func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return out
}

func TestExport_EmptyInput(t *testing.T) {
	opts, _ := testOptions(t)
	res, err := Export(context.Background(), opts, discardLogger())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Count != 0 {
		t.Errorf("count = %d, want 0", res.Count)
	}
	data, _ := os.ReadFile(opts.OutputPath)
	if string(data) != "[]" {
		t.Errorf("output = %q, want []", data)
	}
	if !filepath.IsAbs(res.OutputPath) {
		t.Errorf("output path not absolute: %q", res.OutputPath)
	}
}

func TestExport_SortedByStart(t *testing.T) {
	opts, root := testOptions(t)
	testutil.WriteFile(t, root, "b.mdx", testutil.Gig("B", "2024-02-05"))
	testutil.WriteFile(t, root, "a.mdx", testutil.Gig("A", "2024-01-10"))

	if _, err := Export(context.Background(), opts, discardLogger()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	recs := readRecords(t, opts.OutputPath)
	if len(recs) != 2 || recs[0]["file"] != "a.mdx" || recs[1]["file"] != "b.mdx" {
		t.Errorf("records = %v", recs)
	}
}

func TestExport_UndatedAfterDated(t *testing.T) {
	opts, root := testOptions(t)
	testutil.WriteFile(t, root, "a-undated.mdx", testutil.Gig("Undated", ""))
	testutil.WriteFile(t, root, "z-dated.mdx", testutil.Gig("Dated", "2024-03-01"))

	if _, err := Export(context.Background(), opts, discardLogger()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	recs := readRecords(t, opts.OutputPath)
	if len(recs) != 2 || recs[0]["file"] != "z-dated.mdx" || recs[1]["file"] != "a-undated.mdx" {
		t.Errorf("records = %v", recs)
	}
}

func TestExport_NestedRelativePath(t *testing.T) {
	opts, root := testOptions(t)
	testutil.WriteFile(t, root, filepath.Join("2024", "jazz.mdx"), testutil.Gig("Jazz", "2024-05-01"))
	testutil.WriteFile(t, root, filepath.Join("2024", "notes.txt"), "ignored")

	res, err := Export(context.Background(), opts, discardLogger())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("count = %d, want 1", res.Count)
	}
	recs := readRecords(t, opts.OutputPath)
	if recs[0]["file"] != filepath.Join("2024", "jazz.mdx") {
		t.Errorf("file = %v", recs[0]["file"])
	}
}

func TestExport_FileKeyOverridden(t *testing.T) {
	opts, root := testOptions(t)
	testutil.WriteFile(t, root, "real.mdx", "---\nfile: fake.mdx\ntitle: X\n---\n")

	if _, err := Export(context.Background(), opts, discardLogger()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	recs := readRecords(t, opts.OutputPath)
	if recs[0]["file"] != "real.mdx" || recs[0]["title"] != "X" {
		t.Errorf("record = %v", recs[0])
	}
}

func TestExport_FieldsPassThrough(t *testing.T) {
	opts, root := testOptions(t)
	testutil.WriteFile(t, root, "talk.mdx", "---\ntitle: Talk\nsessions:\n  - name: Keynote\n    slides: true\ndate:\n  start: 2024-04-01\n  end: 2024-04-02\n---\nBody")

	if _, err := Export(context.Background(), opts, discardLogger()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, _ := os.ReadFile(opts.OutputPath)
	want := `[
  {
    "file": "talk.mdx",
    "date": {
      "end": "2024-04-02",
      "start": "2024-04-01"
    },
    "sessions": [
      {
        "name": "Keynote",
        "slides": true
      }
    ],
    "title": "Talk"
  }
]`
	if string(data) != want {
		t.Errorf("output =\n%s\nwant\n%s", data, want)
	}
}

func TestExport_Idempotent(t *testing.T) {
	opts, root := testOptions(t)
	testutil.WriteFile(t, root, "a.mdx", testutil.Gig("A", "2024-01-10"))
	testutil.WriteFile(t, root, "b.mdx", testutil.Gig("B", ""))
	testutil.WriteFile(t, root, "sub/c.mdx", testutil.Gig("C", ""))

	first, err := Export(context.Background(), opts, discardLogger())
	if err != nil {
		t.Fatalf("first Export: %v", err)
	}
	firstBytes, _ := os.ReadFile(opts.OutputPath)
	second, err := Export(context.Background(), opts, discardLogger())
	if err != nil {
		t.Fatalf("second Export: %v", err)
	}
	secondBytes, _ := os.ReadFile(opts.OutputPath)

	if string(firstBytes) != string(secondBytes) {
		t.Error("output differs between runs")
	}
	if first.Checksum != second.Checksum {
		t.Errorf("checksum %s != %s", first.Checksum, second.Checksum)
	}
}

func TestExport_MissingRoot(t *testing.T) {
	opts, _ := testOptions(t)
	opts.InputRoot = filepath.Join(t.TempDir(), "missing")

	_, err := Export(context.Background(), opts, discardLogger())
	if err == nil {
		t.Fatal("expected error for missing input root")
	}
	if apperr.StageOf(err) != apperr.StageCollect {
		t.Errorf("stage = %q, want %q", apperr.StageOf(err), apperr.StageCollect)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist in chain: %v", err)
	}
	if _, statErr := os.Stat(opts.OutputPath); !errors.Is(statErr, fs.ErrNotExist) {
		t.Error("output should not be written")
	}
}

func TestExport_MalformedFrontmatter(t *testing.T) {
	opts, root := testOptions(t)
	testutil.WriteFile(t, root, "good.mdx", testutil.Gig("Good", "2024-01-01"))
	testutil.WriteFile(t, root, "broken.mdx", "---\ntitle: [unclosed\n---\n")

	_, err := Export(context.Background(), opts, discardLogger())
	if err == nil {
		t.Fatal("expected parse error")
	}
	if apperr.StageOf(err) != apperr.StageParse {
		t.Errorf("stage = %q, want %q", apperr.StageOf(err), apperr.StageParse)
	}
	if !strings.Contains(err.Error(), "broken.mdx") {
		t.Errorf("error should name the file: %v", err)
	}
	if _, statErr := os.Stat(opts.OutputPath); !errors.Is(statErr, fs.ErrNotExist) {
		t.Error("output should not be written")
	}
}

func TestExport_UnwritableDestination(t *testing.T) {
	opts, _ := testOptions(t)
	blocker := filepath.Join(t.TempDir(), "public")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts.OutputPath = filepath.Join(blocker, "gigs.json")

	_, err := Export(context.Background(), opts, discardLogger())
	if apperr.StageOf(err) != apperr.StageWrite {
		t.Errorf("stage = %q, want %q (err: %v)", apperr.StageOf(err), apperr.StageWrite, err)
	}
}

func TestEncode_Nil(t *testing.T) {
	got, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("Encode(nil) = %q, want []", got)
	}
}

func TestExport_QuotedAndUnquotedDatesSortTogether(t *testing.T) {
	opts, root := testOptions(t)
	testutil.WriteFile(t, root, "a.mdx", "---\ndate:\n  start: 2024-03-01\n---\n")
	testutil.WriteFile(t, root, "b.mdx", "---\ndate:\n  start: \"2024-02-01\"\n---\n")
	testutil.WriteFile(t, root, "c.mdx", "---\ndate:\n  start: 2024-01-01\n---\n")

	if _, err := Export(context.Background(), opts, discardLogger()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	recs := readRecords(t, opts.OutputPath)
	want := []string{"c.mdx", "b.mdx", "a.mdx"}
	for i, w := range want {
		if recs[i]["file"] != w {
			t.Fatalf("order = %v, want %v", recs, want)
		}
	}
	start := recs[0]["date"].(map[string]any)["start"]
	if start != "2024-01-01" {
		t.Errorf("unquoted date rewritten: %#v", start)
	}
}

func TestExport_UnclosedFrontmatterKeepsFields(t *testing.T) {
	opts, root := testOptions(t)
	testutil.WriteFile(t, root, "open.mdx", "---\ntitle: Open Block\n")

	if _, err := Export(context.Background(), opts, discardLogger()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	recs := readRecords(t, opts.OutputPath)
	if recs[0]["title"] != "Open Block" {
		t.Errorf("record = %v", recs[0])
	}
}

func TestExport_NonFiniteFloatsEncodeAsNull(t *testing.T) {
	opts, root := testOptions(t)
	testutil.WriteFile(t, root, "inf.mdx", "---\ncapacity: .inf\n---\n")

	if _, err := Export(context.Background(), opts, discardLogger()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, _ := os.ReadFile(opts.OutputPath)
	if !strings.Contains(string(data), `"capacity": null`) {
		t.Errorf("output = %s", data)
	}
}

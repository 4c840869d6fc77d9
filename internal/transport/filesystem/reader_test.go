package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/specdex/internal/domain"
)

type fakeRunner struct {
	calls  [][]string
	stdout string
	stderr string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestList_FiltersAndSkipsHidden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "hp.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, "dell.TXT"), "Marca: Dell")
	writeFile(t, filepath.Join(dir, "notes.md"), "ignore")
	writeFile(t, filepath.Join(dir, ".hidden.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, ".cache", "x.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, "sub", "asus.pdf"), "%PDF")

	got, err := NewReader("", nil).List(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "dell.TXT"),
		filepath.Join(dir, "hp.pdf"),
		filepath.Join(dir, "sub", "asus.pdf"),
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("List() = %v\nwant     %v", got, want)
	}
}

func TestList_CustomExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "hp.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, "dell.txt"), "x")

	got, err := NewReader("", []string{".TXT"}).List(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "dell.txt" {
		t.Errorf("List() = %v", got)
	}
}

func TestList_Errors(t *testing.T) {
	r := NewReader("", nil)
	if _, err := r.List(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := r.List(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRead_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dell.txt")
	writeFile(t, path, "Marca: Dell\nPrecio: 1.099,00 €")

	got, err := NewReader("", nil).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "1.099,00 €") {
		t.Errorf("Read() = %q", got)
	}
}

func TestRead_InvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	writeFile(t, path, "\xff\xfe")

	_, err := NewReader("", nil).Read(context.Background(), path)
	if !errors.Is(err, domain.ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}
}

func TestRead_PDF(t *testing.T) {
	runner := &fakeRunner{stdout: "Marca HP\fPrecio 899 €"}
	r := NewReader("/usr/bin/pdftotext", nil).WithRunner(runner)

	got, err := r.Read(context.Background(), "/in/hp.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Marca HP\fPrecio 899 €" {
		t.Errorf("Read() = %q", got)
	}
	want := "/usr/bin/pdftotext -layout -enc UTF-8 -eol unix /in/hp.pdf -"
	if len(runner.calls) != 1 || strings.Join(runner.calls[0], " ") != want {
		t.Errorf("command = %v, want %q", runner.calls, want)
	}
}

func TestRead_PDFFailure(t *testing.T) {
	runner := &fakeRunner{stderr: "Syntax Error: Couldn't find trailer dictionary", err: errors.New("exit status 1")}
	r := NewReader("", nil).WithRunner(runner)

	_, err := r.Read(context.Background(), "/in/broken.pdf")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "trailer dictionary") {
		t.Errorf("error should carry stderr: %v", err)
	}
}

func TestRead_Unsupported(t *testing.T) {
	_, err := NewReader("", nil).Read(context.Background(), "/in/photo.jpg")
	if !errors.Is(err, domain.ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  short  ", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc...(truncated)" {
		t.Errorf("truncate() = %q", got)
	}
}

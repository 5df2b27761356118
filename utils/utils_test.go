package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExpandFileArgs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.eml", "a")
	b := writeFile(t, dir, "b.eml", "b")
	c := writeFile(t, dir, "c.txt", "c")

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{name: "plain paths keep order", args: []string{b, a}, want: []string{"b.eml", "a.eml"}},
		{name: "comma separated", args: []string{a + ", " + c}, want: []string{"a.eml", "c.txt"}},
		{name: "glob sorted", args: []string{filepath.Join(dir, "*.eml")}, want: []string{"a.eml", "b.eml"}},
		{name: "duplicates dropped", args: []string{a, filepath.Join(dir, "*.eml")}, want: []string{"a.eml", "b.eml"}},
		{name: "missing file", args: []string{filepath.Join(dir, "nope.eml")}, wantErr: true},
		{name: "glob without matches", args: []string{filepath.Join(dir, "*.msg")}, wantErr: true},
		{name: "directory", args: []string{dir}, wantErr: true},
		{name: "no args", args: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandFileArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExpandFileArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if names := got.Names(); !reflect.DeepEqual(names, tt.want) {
				t.Errorf("ExpandFileArgs() = %v, want %v", names, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":        "report.pdf",
		"a/b:c.pdf":         "a_b_c.pdf",
		"  spaced.pdf  ":    "spaced.pdf",
		"":                  "unnamed",
		`what?"*<>|\.yaml`: "what_______.yaml",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatFileSize(512); got != "512 B" {
		t.Errorf("FormatFileSize(512) = %q", got)
	}
	if got := FormatFileSize(1536); got != "1.5 KB" {
		t.Errorf("FormatFileSize(1536) = %q", got)
	}
	if got := FormatDuration(250 * time.Millisecond); got != "250 ms" {
		t.Errorf("FormatDuration() = %q", got)
	}
	if got := FormatDuration(1500 * time.Millisecond); got != "1.5 sec" {
		t.Errorf("FormatDuration() = %q", got)
	}
	if got := TruncateString("abcdefgh", 6); got != "abc..." {
		t.Errorf("TruncateString() = %q", got)
	}
}

func TestParseCommaSeparatedList(t *testing.T) {
	got := ParseCommaSeparatedList(" a, ,b ,")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ParseCommaSeparatedList() = %v", got)
	}
	if ParseCommaSeparatedList("") != nil {
		t.Error("expected nil for empty input")
	}
}

package format

import "testing"

func TestFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want Format
		ok   bool
	}{
		{"report.pdf", PDF, true},
		{"REPORT.PDF", PDF, true},
		{"notes.docx", DOCX, true},
		{"legacy.doc", DOCX, true},
		{"readme.txt", Text, true},
		{"README.md", Markdown, true},
		{"guide.markdown", Markdown, true},
		{"scan.jpeg", Image, true},
		{"photo.PNG", Image, true},
		{"main.go", Code, true},
		{"script.py", Code, true},
		{"setup.exe", "", false},
		{"noextension", "", false},
		{"archive.tar.gz", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FromFilename(tc.name)
			if ok != tc.ok {
				t.Fatalf("FromFilename(%q) ok = %v, want %v", tc.name, ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("FromFilename(%q) = %q, want %q", tc.name, got, tc.want)
			}
		})
	}
}

func TestFromExtension_Dotted(t *testing.T) {
	if f, ok := FromExtension(".MD"); !ok || f != Markdown {
		t.Errorf("FromExtension(.MD) = %q, %v", f, ok)
	}
}

func TestIsValid(t *testing.T) {
	for _, f := range All {
		if !f.IsValid() {
			t.Errorf("%q.IsValid() = false", f)
		}
	}
	if Format("exe").IsValid() {
		t.Error("exe should be invalid")
	}
}

func TestExtensions_Sorted(t *testing.T) {
	exts := Extensions()
	for i := 1; i < len(exts); i++ {
		if exts[i-1] > exts[i] {
			t.Fatalf("extensions not sorted at %d: %q > %q", i, exts[i-1], exts[i])
		}
	}
}

package catalog_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tplreg/pkg/catalog"
	"github.com/goliatone/go-tplreg/pkg/registry"
)

func TestLoad_YAML(t *testing.T) {
	fsys := fstest.MapFS{
		"templates.yaml": &fstest.MapFile{Data: []byte(`greeting: "Hello, {{.name}}!"
banner:
  - line one
  - line two
footer:
  file: partials/footer.tmpl
`)},
		"partials/footer.tmpl": &fstest.MapFile{Data: []byte("-- footer --")},
	}

	got, err := catalog.Load(fsys, "templates.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := map[string]string{
		"greeting": "Hello, {{.name}}!",
		"banner":   "line one\nline two",
		"footer":   "-- footer --",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_JSON(t *testing.T) {
	fsys := fstest.MapFS{
		"templates.json": &fstest.MapFile{Data: []byte(`{
  "greeting": "hi",
  "footer": {"file": "footer.tmpl"}
}`)},
		"footer.tmpl": &fstest.MapFile{Data: []byte("bye")},
	}

	got, err := catalog.Load(fsys, "templates.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := map[string]string{"greeting": "hi", "footer": "bye"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_TOML(t *testing.T) {
	fsys := fstest.MapFS{
		"templates.toml": &fstest.MapFile{Data: []byte(`greeting = "hi"
lines = ["a", "b"]

[footer]
file = "footer.tmpl"
`)},
		"footer.tmpl": &fstest.MapFile{Data: []byte("bye")},
	}

	got, err := catalog.Load(fsys, "templates.toml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := map[string]string{"greeting": "hi", "lines": "a\nb", "footer": "bye"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name     string
		fsys     fstest.MapFS
		manifest string
		wantMsg  string
	}{
		{
			name:     "missing manifest",
			fsys:     fstest.MapFS{},
			manifest: "absent.yaml",
			wantMsg:  "read absent.yaml",
		},
		{
			name: "empty manifest",
			fsys: fstest.MapFS{
				"empty.yaml": &fstest.MapFile{Data: []byte("  \n")},
			},
			manifest: "empty.yaml",
			wantMsg:  "is empty",
		},
		{
			name: "unsupported format",
			fsys: fstest.MapFS{
				"notes.txt": &fstest.MapFile{Data: []byte("greeting: hi")},
			},
			manifest: "notes.txt",
			wantMsg:  "unsupported manifest format",
		},
		{
			name: "empty template name",
			fsys: fstest.MapFS{
				"bad.yaml": &fstest.MapFile{Data: []byte(`" ": hi`)},
			},
			manifest: "bad.yaml",
			wantMsg:  "empty template name",
		},
		{
			name: "non-string line",
			fsys: fstest.MapFS{
				"bad.yaml": &fstest.MapFile{Data: []byte("lines:\n  - ok\n  - 42\n")},
			},
			manifest: "bad.yaml",
			wantMsg:  "non-string line",
		},
		{
			name: "missing file reference",
			fsys: fstest.MapFS{
				"bad.yaml": &fstest.MapFile{Data: []byte("footer:\n  file: \"\"\n")},
			},
			manifest: "bad.yaml",
			wantMsg:  "needs a file reference",
		},
		{
			name: "unreadable file reference",
			fsys: fstest.MapFS{
				"bad.yaml": &fstest.MapFile{Data: []byte("footer:\n  file: gone.tmpl\n")},
			},
			manifest: "bad.yaml",
			wantMsg:  "read gone.tmpl",
		},
		{
			name: "unsupported value type",
			fsys: fstest.MapFS{
				"bad.yaml": &fstest.MapFile{Data: []byte("count: 42\n")},
			},
			manifest: "bad.yaml",
			wantMsg:  "unsupported value type",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := catalog.Load(tc.fsys, tc.manifest)
			if err == nil {
				t.Fatalf("load %s: expected error", tc.name)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("load %s: want error containing %q, got %v", tc.name, tc.wantMsg, err)
			}
		})
	}
}

func TestLoadFS_MergesManifests(t *testing.T) {
	fsys := fstest.MapFS{
		"emails/templates.yaml": &fstest.MapFile{Data: []byte("welcome: hi\n")},
		"pages/templates.json":  &fstest.MapFile{Data: []byte(`{"home": "index"}`)},
		"README.md":             &fstest.MapFile{Data: []byte("not a manifest")},
	}

	got, err := catalog.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}

	want := map[string]string{"welcome": "hi", "home": "index"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merged manifests mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFS_DuplicateNames(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": &fstest.MapFile{Data: []byte("welcome: hi\n")},
		"b.yaml": &fstest.MapFile{Data: []byte("welcome: hello\n")},
	}

	_, err := catalog.LoadFS(fsys)
	if err == nil {
		t.Fatal("expected duplicate template error")
	}
	if !strings.Contains(err.Error(), `duplicate template "welcome"`) {
		t.Fatalf("want duplicate template error, got %v", err)
	}
}

func TestLoadFS_NilFS(t *testing.T) {
	got, err := catalog.LoadFS(nil)
	if err != nil {
		t.Fatalf("load nil fs: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("nil fs should load nothing, got %d entries", len(got))
	}
}

func TestRegister_LoadsIntoRegistry(t *testing.T) {
	fsys := fstest.MapFS{
		"templates.yaml": &fstest.MapFile{Data: []byte("greet: \"  hi  \"\n")},
	}

	reg := registry.New(registry.WithEngine(registry.CompileFunc(
		func(source string) (registry.Template, error) {
			return registry.TemplateFunc(func(map[string]any) (string, error) {
				return "[" + source + "]", nil
			}), nil
		},
	)))

	if err := catalog.Register(reg, fsys); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := reg.Render("greet", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "[hi]" {
		t.Fatalf("render: want %q, got %q", "[hi]", got)
	}
	if src, _ := reg.Source("greet"); src != "hi" {
		t.Fatalf("source should be trimmed by registration, got %q", src)
	}
}

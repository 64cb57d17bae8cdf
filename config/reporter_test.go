package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer zr.Close()

	res := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		res[f.Name] = string(data)
	}
	return res
}

func TestReport_Archive(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}

	r, err := cfg.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	stored := filepath.Join(tmpDir, "final.log")
	if err := os.WriteFile(stored, []byte("log line"), 0644); err != nil {
		t.Fatal(err)
	}
	r.Store("final.log", stored)
	r.StoreData("layout/site.txt", []byte("sheet 10x10"))
	r.Store("missing", filepath.Join(tmpDir, "does-not-exist"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readArchive(t, cfg.Destination)
	if files["final.log"] != "log line" {
		t.Errorf("final.log = %q", files["final.log"])
	}
	if files["layout/site.txt"] != "sheet 10x10" {
		t.Errorf("layout/site.txt = %q", files["layout/site.txt"])
	}
	if _, ok := files["missing"]; ok {
		t.Error("absent files should be skipped")
	}
	if !strings.Contains(files["MANIFEST"], "final.log") {
		t.Errorf("MANIFEST does not list stored file:\n%s", files["MANIFEST"])
	}
}

func TestReport_StoreCopy(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}

	r, err := cfg.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	src := filepath.Join(tmpDir, "site.css")
	if err := os.WriteFile(src, []byte("a{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreCopy("site.css", src); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	// later modifications must not end up in the report
	if err := os.WriteFile(src, []byte("b{}"), 0644); err != nil {
		t.Fatal(err)
	}
	// same name again gets versioned
	if err := r.StoreCopy("site.css", src); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}

	dir := filepath.Join(tmpDir, "sheets")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "s.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreCopy("sheets", dir); err != nil {
		t.Fatalf("StoreCopy(dir) error = %v", err)
	}

	temps := append([]string(nil), r.temps...)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	for _, d := range temps {
		if _, err := os.Stat(d); !os.IsNotExist(err) {
			t.Errorf("temporary copy %s was not removed", d)
		}
	}

	files := readArchive(t, cfg.Destination)
	if files["site.css"] != "a{}" {
		t.Errorf("site.css = %q, want original content", files["site.css"])
	}
	versioned := 0
	for name, content := range files {
		if strings.HasPrefix(name, "site.css-") && content == "b{}" {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("expected one versioned copy, got %d", versioned)
	}
	if files["sheets/nested/s.png"] != "png" {
		t.Errorf("directory copy missing, got files %v", files)
	}
}

func TestReport_StoreDataTwicePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("x", []byte("1"))
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate data entry")
		}
	}()
	r.StoreData("x", []byte("2"))
}

func TestReport_Nil(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Error("nil report should have empty name")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

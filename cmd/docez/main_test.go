package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wudi/docez/extensions"
	"github.com/wudi/docez/render"
)

const sample = "# Greetings\n\nHello **docez**, see [the site](https://example.com).\n\n- one\n- two\n"

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func parse(t *testing.T, args ...string) (options, error) {
	t.Helper()
	fs := flag.NewFlagSet("docez", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return parseFlags(fs, args)
}

func TestParseFlags(t *testing.T) {
	opts, err := parse(t, "-o", "out.pdf", "in.md")
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.format != render.FormatPDF || opts.inputKind != "md" {
		t.Errorf("format = %q kind = %q, want pdf md", opts.format, opts.inputKind)
	}

	opts, err = parse(t, "-strict", "page.htm")
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.format != render.FormatText || opts.inputKind != "html" || !opts.validate {
		t.Errorf("opts = %+v", opts)
	}

	for _, args := range [][]string{
		{},
		{"notes.rtf"},
		{"-format", "rtf", "in.md"},
		{"-from", "tex", "in.md"},
	} {
		if _, err := parse(t, args...); err == nil {
			t.Errorf("parseFlags(%q) succeeded", args)
		}
	}
}

func TestRun_MarkdownToText(t *testing.T) {
	in := write(t, t.TempDir(), "hello.md", sample)
	opts, err := parse(t, "-width", "60", in)
	if err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), opts, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"Greetings", "Hello docez, see the site <https://example.com>.", "one", "two"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestRun_MarkupRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "hello.md", sample)
	sheet := write(t, dir, "style.toml", "[info]\ntitle = \"Styled\"\n\n[[style]]\nname = \"Normal\"\nfont = \"Times\"\n")
	xmlPath := filepath.Join(dir, "hello.xml")

	opts, err := parse(t, "-stylesheet", sheet, "-o", xmlPath, in)
	if err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), opts, io.Discard, io.Discard); err != nil {
		t.Fatalf("run md: %v", err)
	}
	data, err := os.ReadFile(xmlPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("Styled")) || !bytes.Contains(data, []byte("Times")) {
		t.Errorf("markup lacks stylesheet values:\n%s", data)
	}

	opts, err = parse(t, "-format", "txt", xmlPath)
	if err != nil {
		t.Fatal(err)
	}
	var stdout bytes.Buffer
	if err := run(context.Background(), opts, &stdout, io.Discard); err != nil {
		t.Fatalf("run xml: %v", err)
	}
	if !strings.Contains(stdout.String(), "Greetings") {
		t.Errorf("decoded markup lost content:\n%s", stdout.String())
	}
}

func TestRun_Validate(t *testing.T) {
	dir := t.TempDir()
	in := write(t, dir, "links.md", "Go [there](javascript:alert(1)) or [up](#nowhere).\n")

	opts, err := parse(t, "-validate", in)
	if err != nil {
		t.Fatal(err)
	}
	var stderr bytes.Buffer
	if err := run(context.Background(), opts, io.Discard, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"sanitized:", "warning: BROKEN_LINK"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("report lacks %q:\n%s", want, stderr.String())
		}
	}

	bad := write(t, dir, "bad.toml", "[[style]]\nname = \"Orphan\"\nbase = \"Nowhere\"\n")
	opts, err = parse(t, "-strict", "-stylesheet", bad, in)
	if err != nil {
		t.Fatal(err)
	}
	stderr.Reset()
	err = run(context.Background(), opts, io.Discard, &stderr)
	if !errors.Is(err, extensions.ErrInvalidDocument) {
		t.Fatalf("run = %v, want ErrInvalidDocument", err)
	}
	if !strings.Contains(stderr.String(), "error: UNRESOLVED_BASE_STYLE") {
		t.Errorf("report lacks the base style error:\n%s", stderr.String())
	}
}

func TestRun_MissingInput(t *testing.T) {
	opts, err := parse(t, filepath.Join(t.TempDir(), "absent.md"))
	if err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), opts, io.Discard, io.Discard); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("run = %v, want not exist", err)
	}
}

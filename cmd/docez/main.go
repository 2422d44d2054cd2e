// Command docez composes a document from Markdown, HTML or docez markup and
// renders it as PDF, DOCX, plain text or markup.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/wudi/docez/builder"
	"github.com/wudi/docez/config"
	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/extensions"
	"github.com/wudi/docez/layout"
	"github.com/wudi/docez/markup"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/render"
	"github.com/wudi/docez/render/docx"
	"github.com/wudi/docez/render/pdf"
	"github.com/wudi/docez/render/text"
)

type options struct {
	input      string
	inputKind  string
	output     string
	format     render.Format
	stylesheet string
	validate   bool
	strict     bool
	width      int
	verbose    bool
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "docez: %v\n", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "docez: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var opts options
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: docez [flags] <input.md|input.html|input.xml>\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.output, "o", "", "Output file; the extension selects the format. Empty or - writes to stdout")
	format := fs.String("format", "", "Output format: pdf, docx, txt or xml (default from -o, else txt)")
	fs.StringVar(&opts.inputKind, "from", "", "Input kind: md, html or xml (default from the input extension)")
	fs.StringVar(&opts.stylesheet, "stylesheet", "", "TOML stylesheet applied before composing")
	fs.BoolVar(&opts.validate, "validate", false, "Inspect, sanitize and validate the document before rendering")
	fs.BoolVar(&opts.strict, "strict", false, "With -validate, fail on validation errors")
	fs.IntVar(&opts.width, "width", 0, "Line width in columns for text output")
	fs.BoolVar(&opts.verbose, "v", false, "Log progress to stderr")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, fmt.Errorf("missing input path")
	}
	opts.input = fs.Arg(0)
	if opts.inputKind == "" {
		opts.inputKind = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.input)), ".")
	}
	switch opts.inputKind {
	case "md", "markdown":
		opts.inputKind = "md"
	case "html", "htm":
		opts.inputKind = "html"
	case "xml":
	default:
		return options{}, fmt.Errorf("cannot tell the input kind of %q, use -from", opts.input)
	}

	f := *format
	if f == "" && opts.output != "" && opts.output != "-" {
		f = filepath.Ext(opts.output)
	}
	if f == "" {
		f = string(render.FormatText)
	}
	var err error
	if opts.format, err = render.ParseFormat(f); err != nil {
		return options{}, err
	}
	if opts.strict {
		opts.validate = true
	}
	return opts, nil
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	var log observability.Logger = observability.NopLogger{}
	if opts.verbose {
		zl, err := observability.NewDevelopment()
		if err != nil {
			return err
		}
		defer zl.Sync()
		log = zl
	}

	src, err := os.ReadFile(opts.input)
	if err != nil {
		return err
	}
	d, err := compose(opts, src, log)
	if err != nil {
		return err
	}

	r := renderer(opts, log)
	var hub *extensions.HubImpl
	if opts.validate {
		hub = extensions.NewHub(extensions.WithLogger(log), extensions.WithStrict(opts.strict))
		for _, ext := range []extensions.Extension{
			&extensions.BasicInspector{},
			&extensions.LinkSanitizer{},
			&extensions.StyleValidator{},
			&extensions.LayoutValidator{},
		} {
			if err := hub.Register(ext); err != nil {
				return err
			}
		}
		r = render.Intercept(r, hub)
	}

	var out bytes.Buffer
	renderErr := d.Render(ctx, r, &out)
	if hub != nil {
		report(stderr, hub.Results())
	}
	if renderErr != nil {
		return renderErr
	}

	if opts.output == "" || opts.output == "-" {
		_, err = stdout.Write(out.Bytes())
		return err
	}
	if err := os.WriteFile(opts.output, out.Bytes(), 0o644); err != nil {
		return err
	}
	log.Info("document written",
		observability.String("path", opts.output),
		observability.String("format", string(opts.format)),
		observability.Int("bytes", out.Len()))
	return nil
}

// compose builds the document: markup input is decoded as a whole, text
// input is composed into a fresh document after the stylesheet is applied.
func compose(opts options, src []byte, log observability.Logger) (*builder.Document, error) {
	var d *builder.Document
	if opts.inputKind == "xml" {
		doc, err := markup.Decode(bytes.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opts.input, err)
		}
		d = builder.Wrap(doc, builder.WithLogger(log))
	} else {
		d = builder.New(builder.WithLogger(log))
	}

	if opts.stylesheet != "" {
		ss, err := config.Load(opts.stylesheet)
		if err != nil {
			return nil, err
		}
		if err := ss.Apply(d); err != nil {
			return nil, fmt.Errorf("%s: %w", opts.stylesheet, err)
		}
	}

	e := layout.NewEngine(d, layout.WithLogger(log), layout.WithBaseDir(filepath.Dir(opts.input)))
	switch opts.inputKind {
	case "md":
		if err := e.ComposeMarkdown(string(src)); err != nil {
			return nil, fmt.Errorf("%s: %w", opts.input, err)
		}
	case "html":
		if err := e.ComposeHTML(string(src)); err != nil {
			return nil, fmt.Errorf("%s: %w", opts.input, err)
		}
	}
	if d.Node().Info.Title == "" {
		d.SetTitle(strings.TrimSuffix(filepath.Base(opts.input), filepath.Ext(opts.input)))
	}
	return d, nil
}

func renderer(opts options, log observability.Logger) render.Renderer {
	switch opts.format {
	case render.FormatPDF:
		return pdf.New(pdf.WithLogger(log), pdf.WithCreator("docez"))
	case render.FormatDOCX:
		return docx.New(docx.WithLogger(log))
	case render.FormatMarkup:
		return render.RendererFunc(func(ctx context.Context, doc *dom.Document, w io.Writer) error {
			return markup.Encode(w, doc)
		})
	default:
		topts := []text.Option{text.WithLogger(log)}
		if opts.width > 0 {
			topts = append(topts, text.WithWidth(opts.width))
		}
		return text.New(topts...)
	}
}

func report(w io.Writer, res extensions.Results) {
	for _, s := range res.Sanitization {
		for _, a := range s.Actions {
			fmt.Fprintf(w, "sanitized: %s: %s\n", a.Location, a.Description)
		}
	}
	for _, v := range res.Validation {
		for _, e := range v.Errors {
			fmt.Fprintf(w, "error: %s: %s: %s\n", e.Code, e.Location, e.Message)
		}
		for _, wr := range v.Warnings {
			fmt.Fprintf(w, "warning: %s: %s: %s\n", wr.Code, wr.Location, wr.Message)
		}
	}
}

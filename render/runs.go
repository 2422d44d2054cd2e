package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/wudi/docez/dom"
)

type RunKind int

const (
	RunText RunKind = iota
	RunTab
	RunBreak
	RunImage
	RunBookmark
)

// Run is a stretch of inline content with one effective font.
type Run struct {
	Kind  RunKind
	Text  string
	Font  dom.Font
	Link  *dom.Hyperlink
	Image *dom.Image
	// Footnote is set on the reference mark of a footnote.
	Footnote *dom.Footnote
}

// Fields supplies the values of dynamic fields. Page numbers are strings so
// backends can pass placeholders they substitute later.
type Fields struct {
	Page         string
	NumPages     string
	Section      string
	SectionPages string
	Info         dom.Info
	Now          time.Time
	// PageOf returns the page of a bookmark, when known.
	PageOf func(name string) (int, bool)
}

// Flattener turns inline element trees into runs. It numbers footnotes
// across calls.
type Flattener struct {
	Fields    Fields
	footnotes []*dom.Footnote
}

// Footnotes returns the footnotes seen so far, in reference order.
func (f *Flattener) Footnotes() []*dom.Footnote { return f.footnotes }

// TakeFootnotes returns and forgets the footnotes seen so far.
func (f *Flattener) TakeFootnotes() []*dom.Footnote {
	out := f.footnotes
	f.footnotes = nil
	return out
}

// Runs flattens elems with base as the inherited font. Adjacent text runs
// with the same font and link are merged.
func (f *Flattener) Runs(elems []dom.Element, base dom.Font) []Run {
	var out []Run
	f.walk(elems, base, nil, &out)
	return mergeRuns(out)
}

func (f *Flattener) walk(elems []dom.Element, fnt dom.Font, link *dom.Hyperlink, out *[]Run) {
	text := func(s string, fn dom.Font) {
		if s != "" {
			*out = append(*out, Run{Kind: RunText, Text: s, Font: fn, Link: link})
		}
	}
	for _, e := range elems {
		switch v := e.(type) {
		case *dom.Text:
			text(v.Content, fnt)
		case *dom.FormattedText:
			inner := fnt
			inner.Apply(v.Font)
			f.walk(v.Elements, inner, link, out)
		case *dom.Hyperlink:
			inner := fnt
			inner.Apply(v.Font)
			f.walk(v.Elements, inner, v, out)
		case *dom.Tab:
			*out = append(*out, Run{Kind: RunTab, Font: fnt, Link: link})
		case *dom.LineBreak:
			*out = append(*out, Run{Kind: RunBreak, Font: fnt})
		case *dom.Character:
			n := v.Count
			if n < 1 {
				n = 1
			}
			text(strings.Repeat(string(v.Symbol.Rune()), n), fnt)
		case *dom.Image:
			*out = append(*out, Run{Kind: RunImage, Font: fnt, Image: v, Link: link})
		case *dom.BookmarkField:
			*out = append(*out, Run{Kind: RunBookmark, Text: v.Name, Font: fnt})
		case *dom.Footnote:
			f.footnotes = append(f.footnotes, v)
			mark := v.Reference
			if mark == "" {
				mark = strconv.Itoa(len(f.footnotes))
			}
			sup := fnt
			sup.Superscript = dom.Bool(true)
			*out = append(*out, Run{Kind: RunText, Text: mark, Font: sup, Footnote: v})
		default:
			text(f.Field(e), fnt)
		}
	}
}

// Field evaluates a field element; non-field elements yield "".
func (f *Flattener) Field(e dom.Element) string {
	fs := f.Fields
	switch v := e.(type) {
	case *dom.PageField:
		return fs.Page
	case *dom.NumPagesField:
		return fs.NumPages
	case *dom.SectionField:
		return fs.Section
	case *dom.SectionPagesField:
		return fs.SectionPages
	case *dom.PageRefField:
		if fs.PageOf != nil {
			if n, ok := fs.PageOf(v.Name); ok {
				return strconv.Itoa(n)
			}
		}
		return "?"
	case *dom.DateField:
		now := fs.Now
		if now.IsZero() {
			now = time.Now()
		}
		return now.Format(DateLayout(v.Format))
	case *dom.InfoField:
		switch v.Name {
		case dom.InfoTitle:
			return fs.Info.Title
		case dom.InfoAuthor:
			return fs.Info.Author
		case dom.InfoSubject:
			return fs.Info.Subject
		case dom.InfoKeywords:
			return fs.Info.Keywords
		}
	}
	return ""
}

func mergeRuns(in []Run) []Run {
	out := in[:0]
	for _, r := range in {
		if n := len(out); n > 0 && r.Kind == RunText && r.Footnote == nil {
			last := &out[n-1]
			if last.Kind == RunText && last.Footnote == nil && last.Link == r.Link && sameFont(last.Font, r.Font) {
				last.Text += r.Text
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func sameFont(a, b dom.Font) bool {
	return a.Name == b.Name && a.Size == b.Size && a.IsBold() == b.IsBold() && a.IsItalic() == b.IsItalic() &&
		a.Underline == b.Underline && a.Color == b.Color &&
		flag(a.Subscript) == flag(b.Subscript) && flag(a.Superscript) == flag(b.Superscript)
}

func flag(b *bool) bool { return b != nil && *b }

// IsSuperscript and IsSubscript report the vertical position of a run.
func IsSuperscript(f dom.Font) bool { return flag(f.Superscript) }
func IsSubscript(f dom.Font) bool   { return flag(f.Subscript) }

var dateTokens = []struct{ net, goLayout string }{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"dd", "02"},
	{"d", "2"},
	{"HH", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"tt", "PM"},
}

// DateLayout converts a day/month date pattern ("dd.MM.yyyy", "d MMMM yyyy
// HH:mm") to a time.Format layout. Text in single quotes is copied as is.
// An empty pattern yields "02.01.2006".
func DateLayout(pattern string) string {
	if pattern == "" {
		return "02.01.2006"
	}
	var sb strings.Builder
	for i := 0; i < len(pattern); {
		if pattern[i] == '\'' {
			end := strings.IndexByte(pattern[i+1:], '\'')
			if end < 0 {
				sb.WriteString(pattern[i+1:])
				break
			}
			sb.WriteString(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		}
		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(pattern[i:], tok.net) {
				sb.WriteString(tok.goLayout)
				i += len(tok.net)
				matched = true
				break
			}
		}
		if !matched {
			sb.WriteByte(pattern[i])
			i++
		}
	}
	return sb.String()
}

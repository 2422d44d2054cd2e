package dom

import (
	"errors"
	"testing"
)

type foreignElement struct{ node }

func (f *foreignElement) Kind() ElementKind { return ElementKind(99) }
func (f *foreignElement) inline() *node     { return &f.node }

func TestTransfer_DeepCopiesEveryKind(t *testing.T) {
	src := NewParagraph()
	src.AddText("Page ")
	src.AddPageField()
	src.AddText(" of ")
	src.AddNumPagesField()
	ft := src.AddFormattedText()
	ft.Font.Bold = Bool(true)
	ft.AddText("bold")
	link := src.AddHyperlink("https://example.com", HyperlinkWeb)
	link.AddText("site")
	src.AddTab()
	src.AddLineBreak()
	src.AddBookmark("top")
	src.AddPageRefField("top")
	src.AddSectionField()
	src.AddSectionPagesField()
	src.AddDateField("dd.MM.yyyy")
	src.AddInfoField(InfoAuthor)
	src.AddCharacter(SymbolBullet, 2)
	src.AddImage("logo.png")
	src.AddFootnote("note")

	dst := NewParagraph()
	if err := Transfer(src.Elements, dst); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if len(dst.Elements) != len(src.Elements) {
		t.Fatalf("expected %d elements, got %d", len(src.Elements), len(dst.Elements))
	}
	for i := range src.Elements {
		if src.Elements[i] == dst.Elements[i] {
			t.Fatalf("element %d aliased", i)
		}
		if src.Elements[i].Kind() != dst.Elements[i].Kind() {
			t.Fatalf("element %d kind %v, want %v", i, dst.Elements[i].Kind(), src.Elements[i].Kind())
		}
		if dst.Elements[i].Parent() != dst {
			t.Fatalf("element %d not owned by destination", i)
		}
		if src.Elements[i].Parent() != src {
			t.Fatalf("source element %d lost its parent", i)
		}
	}

	ft.Elements[0].(*Text).Content = "changed"
	*ft.Font.Bold = false
	copied := dst.Elements[4].(*FormattedText)
	if got := copied.Elements[0].(*Text).Content; got != "bold" {
		t.Fatalf("nested text aliased: %q", got)
	}
	if !copied.Font.IsBold() {
		t.Fatalf("font flag aliased")
	}
	if copied.Elements[0].Parent() != copied {
		t.Fatalf("nested child not owned by the copy")
	}
	note := dst.Elements[len(dst.Elements)-1].(*Footnote)
	if len(note.Blocks) != 1 || note.Blocks[0].(*Paragraph).PlainText() != "note" {
		t.Fatalf("footnote body not copied: %+v", note.Blocks)
	}
}

func TestTransfer_UnsupportedKindKeepsPartialContent(t *testing.T) {
	src := []Element{NewText("a"), NewText("b"), &foreignElement{}, NewText("c")}
	dst := NewParagraph()
	err := Transfer(src, dst)
	if !errors.Is(err, ErrUnsupportedElementKind) {
		t.Fatalf("expected ErrUnsupportedElementKind, got %v", err)
	}
	if got := dst.PlainText(); got != "ab" {
		t.Fatalf("expected partial content %q, got %q", "ab", got)
	}
}

func TestCloneElement_NestedUnsupportedFails(t *testing.T) {
	ft := NewFormattedText()
	ft.AddText("x")
	ft.Elements = append(ft.Elements, &foreignElement{})
	if _, err := CloneElement(ft); !errors.Is(err, ErrUnsupportedElementKind) {
		t.Fatalf("expected ErrUnsupportedElementKind, got %v", err)
	}
	if _, err := CloneElement(nil); !errors.Is(err, ErrNilNode) {
		t.Fatalf("expected ErrNilNode, got %v", err)
	}
}

func TestTransfer_EmptySourceIsNoop(t *testing.T) {
	dst := NewParagraph()
	dst.AddText("keep")
	if err := Transfer(nil, dst); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if len(dst.Elements) != 1 {
		t.Fatalf("destination changed: %d elements", len(dst.Elements))
	}
}

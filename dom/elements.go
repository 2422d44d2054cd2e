package dom

// ElementKind names the closed set of inline element variants.
type ElementKind int

const (
	KindText ElementKind = iota
	KindFormattedText
	KindLineBreak
	KindTab
	KindBookmark
	KindHyperlink
	KindImage
	KindCharacter
	KindPageField
	KindNumPagesField
	KindPageRefField
	KindSectionField
	KindSectionPagesField
	KindDateField
	KindInfoField
	KindFootnote
)

func (k ElementKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindFormattedText:
		return "FormattedText"
	case KindLineBreak:
		return "LineBreak"
	case KindTab:
		return "Tab"
	case KindBookmark:
		return "Bookmark"
	case KindHyperlink:
		return "Hyperlink"
	case KindImage:
		return "Image"
	case KindCharacter:
		return "Character"
	case KindPageField:
		return "PageField"
	case KindNumPagesField:
		return "NumPagesField"
	case KindPageRefField:
		return "PageRefField"
	case KindSectionField:
		return "SectionField"
	case KindSectionPagesField:
		return "SectionPagesField"
	case KindDateField:
		return "DateField"
	case KindInfoField:
		return "InfoField"
	case KindFootnote:
		return "Footnote"
	default:
		return "Unknown"
	}
}

// Element is an inline node of a paragraph, formatted run, hyperlink or
// header/footer paragraph. The set of implementations is closed.
type Element interface {
	Kind() ElementKind
	Parent() any
	inline() *node
}

// Text is a literal run of characters.
type Text struct {
	node
	Content string
}

func NewText(content string) *Text { return &Text{Content: content} }

func (t *Text) Kind() ElementKind { return KindText }
func (t *Text) inline() *node     { return &t.node }

// FormattedText is a styled sub-run holding its own elements.
type FormattedText struct {
	node
	Style    string
	Font     Font
	Elements []Element
}

func NewFormattedText() *FormattedText { return &FormattedText{} }

func (f *FormattedText) Kind() ElementKind { return KindFormattedText }
func (f *FormattedText) inline() *node     { return &f.node }

// Add attaches e as the last child.
func (f *FormattedText) Add(e Element) error {
	if err := attachElement(f, e); err != nil {
		return err
	}
	f.Elements = append(f.Elements, e)
	return nil
}

func (f *FormattedText) AddText(content string) *Text {
	t := &Text{Content: content}
	t.parent = f
	f.Elements = append(f.Elements, t)
	return t
}

func (f *FormattedText) AddFormattedText() *FormattedText {
	ft := &FormattedText{}
	ft.parent = f
	f.Elements = append(f.Elements, ft)
	return ft
}

type LineBreak struct{ node }

func (l *LineBreak) Kind() ElementKind { return KindLineBreak }
func (l *LineBreak) inline() *node     { return &l.node }

type Tab struct{ node }

func (t *Tab) Kind() ElementKind { return KindTab }
func (t *Tab) inline() *node     { return &t.node }

// BookmarkField marks a jump target named Name.
type BookmarkField struct {
	node
	Name string
}

func (b *BookmarkField) Kind() ElementKind { return KindBookmark }
func (b *BookmarkField) inline() *node     { return &b.node }

type HyperlinkType int

const (
	HyperlinkLocal HyperlinkType = iota
	HyperlinkBookmark
	HyperlinkWeb
	HyperlinkURL
	HyperlinkFile
)

func (t HyperlinkType) String() string {
	return [...]string{"local", "bookmark", "web", "url", "file"}[t]
}

// Hyperlink points at Name (a bookmark, URL or file depending on Type) and
// displays its own elements.
type Hyperlink struct {
	node
	Name     string
	Type     HyperlinkType
	Font     Font
	Elements []Element
}

func NewHyperlink(name string, typ HyperlinkType) *Hyperlink {
	return &Hyperlink{Name: name, Type: typ}
}

func (h *Hyperlink) Kind() ElementKind { return KindHyperlink }
func (h *Hyperlink) inline() *node     { return &h.node }

func (h *Hyperlink) Add(e Element) error {
	if err := attachElement(h, e); err != nil {
		return err
	}
	h.Elements = append(h.Elements, e)
	return nil
}

func (h *Hyperlink) AddText(content string) *Text {
	t := &Text{Content: content}
	t.parent = h
	h.Elements = append(h.Elements, t)
	return t
}

type SymbolName int

const (
	SymbolBlank SymbolName = iota
	SymbolEn
	SymbolEm
	SymbolEmQuarter
	SymbolNonBreakableBlank
	SymbolBullet
	SymbolHyphen
	SymbolCopyright
	SymbolTrademark
	SymbolRegisteredTrademark
	SymbolEuro
)

var symbolRunes = [...]rune{' ', '\u2002', '\u2003', '\u2005', '\u00a0', '\u2022', '-', '\u00a9', '\u2122', '\u00ae', '\u20ac'}

// Rune is the glyph the symbol stands for.
func (s SymbolName) Rune() rune { return symbolRunes[s] }

func (s SymbolName) String() string {
	return [...]string{"blank", "en", "em", "emQuarter", "nonBreakableBlank", "bullet", "hyphen",
		"copyright", "trademark", "registeredTrademark", "euro"}[s]
}

// Character is a special glyph repeated Count times.
type Character struct {
	node
	Symbol SymbolName
	Count  int
}

func (c *Character) Kind() ElementKind { return KindCharacter }
func (c *Character) inline() *node     { return &c.node }

// PageField displays the current page number.
type PageField struct {
	node
	Format string
}

func (f *PageField) Kind() ElementKind { return KindPageField }
func (f *PageField) inline() *node     { return &f.node }

type NumPagesField struct {
	node
	Format string
}

func (f *NumPagesField) Kind() ElementKind { return KindNumPagesField }
func (f *NumPagesField) inline() *node     { return &f.node }

// PageRefField displays the page of the bookmark Name.
type PageRefField struct {
	node
	Name   string
	Format string
}

func (f *PageRefField) Kind() ElementKind { return KindPageRefField }
func (f *PageRefField) inline() *node     { return &f.node }

type SectionField struct {
	node
	Format string
}

func (f *SectionField) Kind() ElementKind { return KindSectionField }
func (f *SectionField) inline() *node     { return &f.node }

type SectionPagesField struct {
	node
	Format string
}

func (f *SectionPagesField) Kind() ElementKind { return KindSectionPagesField }
func (f *SectionPagesField) inline() *node     { return &f.node }

// DateField displays the render date. Format uses the day/month/year
// pattern letters of word processors ("dd.MM.yyyy", "yyyy/MM/dd HH:mm:ss").
type DateField struct {
	node
	Format string
}

func (f *DateField) Kind() ElementKind { return KindDateField }
func (f *DateField) inline() *node     { return &f.node }

type InfoFieldName int

const (
	InfoTitle InfoFieldName = iota
	InfoAuthor
	InfoSubject
	InfoKeywords
)

func (n InfoFieldName) String() string {
	return [...]string{"title", "author", "subject", "keywords"}[n]
}

// InfoField displays a document metadata value.
type InfoField struct {
	node
	Name InfoFieldName
}

func (f *InfoField) Kind() ElementKind { return KindInfoField }
func (f *InfoField) inline() *node     { return &f.node }

// Footnote is anchored inline and owns the blocks of the note body.
type Footnote struct {
	node
	Reference string
	Format    ParagraphFormat
	Blocks    []Block
}

func (f *Footnote) Kind() ElementKind { return KindFootnote }
func (f *Footnote) inline() *node     { return &f.node }

func (f *Footnote) AddBlock(b Block) error {
	if err := attachBlock(f, b); err != nil {
		return err
	}
	f.Blocks = append(f.Blocks, b)
	return nil
}

func (f *Footnote) AddParagraph(text string) *Paragraph {
	p := newParagraph(text)
	p.parent = f
	f.Blocks = append(f.Blocks, p)
	return p
}

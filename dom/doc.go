// Package dom is the retained-mode document tree: a Document owns Sections,
// Sections own Blocks (paragraphs, tables, images, text frames, charts, page
// breaks) and paragraphs, hyperlinks and formatted runs own inline Elements.
//
// Every node except the Document has exactly one parent. The Add methods of the
// containers attach a node and refuse one that already belongs somewhere else;
// such a node has to be cloned first (see CloneElement, CloneBlock and
// Transfer).
//
// Formatting is expressed as optional overrides: unset properties (nil
// pointers, empty strings, zero enums, empty colors) inherit from the style
// chain when a format is resolved.
package dom

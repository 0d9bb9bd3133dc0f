package engine

import "strings"

// TabMarker is the literal token the engine uses to delimit script sections.
// It is followed by the tab title and a CRLF, then the section body.
const TabMarker = "///$tab "

// Section is one script tab: its title and body text.
type Section struct {
	Title string
	Body  string
}

// SplitScript breaks a concatenated script blob into sections. Text before
// the first marker becomes a title-less leading section; it is dropped when
// empty, which is the common case for scripts written through the UI.
func SplitScript(script string) []Section {
	var sections []Section
	parts := strings.Split(script, TabMarker)
	for i, part := range parts {
		if i == 0 {
			if strings.TrimSpace(part) == "" {
				continue
			}
			sections = append(sections, Section{Body: part})
			continue
		}
		title, body, found := strings.Cut(part, "\r\n")
		if !found {
			// Tolerate bare-LF scripts produced outside the engine.
			title, body, _ = strings.Cut(part, "\n")
		}
		sections = append(sections, Section{Title: title, Body: body})
	}
	return sections
}

// JoinScript reassembles sections into the engine's blob format. Section
// order is preserved; it is the execution order of the script tabs.
func JoinScript(sections []Section) string {
	var b strings.Builder
	for _, s := range sections {
		if s.Title == "" && b.Len() == 0 {
			b.WriteString(s.Body)
			continue
		}
		b.WriteString(TabMarker)
		b.WriteString(s.Title)
		b.WriteString("\r\n")
		b.WriteString(s.Body)
	}
	return b.String()
}

// AppendSection adds a new tab at the end of the script blob.
func AppendSection(script, title, body string) string {
	var b strings.Builder
	b.WriteString(script)
	if script != "" && !strings.HasSuffix(script, "\n") {
		b.WriteString("\r\n")
	}
	b.WriteString(TabMarker)
	b.WriteString(title)
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

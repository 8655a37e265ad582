// Package citation converts between bibliographic reference records and
// textual citation formats: BibTeX and RIS/RefMan on the way in, BibTeX, APA
// and IEEE on the way out. Every function is pure and total: malformed input
// yields zero values, never an error.
package citation

import (
	"fmt"
	"regexp"
	"strings"

	"writium/models"
)

// Formats recognized by ParseCitationFormat.
const (
	FormatBibTeX = "bibtex"
	FormatRefman = "refman"
)

var (
	bibEntryRe      = regexp.MustCompile(`(?s)@(\w+)\s*\{[^,]*,\s*(.*)\}`)
	bibEntryStartRe = regexp.MustCompile(`@\w+\s*\{`)
	risMarkerRe     = regexp.MustCompile(`(?m)^TY\s*-\s*`)
	risLineRe       = regexp.MustCompile(`^([A-Z0-9]{2})\s+-\s+(.+)$`)
	multiSpaceRe    = regexp.MustCompile(`\s+`)
	authorSepRe     = regexp.MustCompile(`(?i)\s+and\s+`)
	ieeeAuthorSepRe = regexp.MustCompile(`(?i)\s+and\s+|;|,`)
	doiPrefixRe     = regexp.MustCompile(`(?i)^https?://doi\.org/`)
	italicsRe       = regexp.MustCompile(`\*([^*]+)\*`)
)

var bibFieldRe = map[string]*regexp.Regexp{}

func init() {
	for _, field := range []string{
		"author", "title", "year", "journal", "booktitle",
		"volume", "pages", "publisher", "doi", "url",
	} {
		bibFieldRe[field] = regexp.MustCompile(`(?i)` + field + `\s*=\s*[{"]([^}"]*)["}]`)
	}
}

var bibTypeMap = map[string]string{
	"article":       "article",
	"jour":          "article",
	"book":          "book",
	"inproceedings": "inproceedings",
	"conference":    "inproceedings",
	"misc":          "misc",
}

func extractBibTeXValue(body, field string) string {
	m := bibFieldRe[field].FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return multiSpaceRe.ReplaceAllString(strings.TrimSpace(m[1]), " ")
}

// ParseBibTeX parses a single @type{key, field = {value}, ...} entry. Entries
// carrying neither an author nor a title are rejected as garbage.
func ParseBibTeX(text string) *models.Reference {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}
	m := bibEntryRe.FindStringSubmatch(t)
	if m == nil {
		return nil
	}
	typ, ok := bibTypeMap[strings.ToLower(m[1])]
	if !ok {
		typ = "misc"
	}
	body := m[2]
	author := extractBibTeXValue(body, "author")
	title := extractBibTeXValue(body, "title")
	if author == "" && title == "" {
		return nil
	}
	return &models.Reference{
		Type:      typ,
		Author:    authorSepRe.ReplaceAllString(author, ", "),
		Title:     title,
		Year:      extractBibTeXValue(body, "year"),
		Journal:   extractBibTeXValue(body, "journal"),
		Booktitle: extractBibTeXValue(body, "booktitle"),
		Volume:    extractBibTeXValue(body, "volume"),
		Pages:     extractBibTeXValue(body, "pages"),
		Publisher: extractBibTeXValue(body, "publisher"),
		DOI:       extractBibTeXValue(body, "doi"),
		URL:       extractBibTeXValue(body, "url"),
	}
}

// ParsedCitation is a detected format plus the reference it parsed to.
type ParsedCitation struct {
	Format string
	Ref    models.Reference
}

// ParseCitationFormat detects BibTeX or RIS/RefMan input and parses the first
// usable entry. Returns nil when neither format matches or no entry carries
// an author or title.
func ParseCitationFormat(text string) *ParsedCitation {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}
	if bibEntryStartRe.MatchString(t) {
		for _, entry := range splitBibTeXEntries(t) {
			if ref := ParseBibTeX(entry); ref != nil {
				return &ParsedCitation{Format: FormatBibTeX, Ref: *ref}
			}
		}
	}
	if risMarkerRe.MatchString(t) {
		if ref := parseRIS(t); ref != nil {
			return &ParsedCitation{Format: FormatRefman, Ref: *ref}
		}
	}
	return nil
}

// splitBibTeXEntries slices a concatenated multi-entry blob at each @type{
// boundary.
func splitBibTeXEntries(text string) []string {
	starts := bibEntryStartRe.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		return nil
	}
	entries := make([]string, 0, len(starts))
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		if entry := strings.TrimSpace(text[loc[0]:end]); entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

func parseRIS(text string) *models.Reference {
	fields := map[string]string{}
	var authors []string
	for _, line := range strings.Split(text, "\n") {
		m := risLineRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		tag, value := m[1], strings.TrimSpace(m[2])
		if tag == "AU" {
			authors = append(authors, value)
			continue
		}
		fields[tag] = value
	}
	author := strings.Join(authors, ", ")
	title := fields["TI"]
	if author == "" && title == "" {
		return nil
	}
	year := fields["PY"]
	if r := []rune(year); len(r) > 4 {
		year = string(r[:4])
	}
	var pageParts []string
	for _, p := range []string{fields["SP"], fields["EP"]} {
		if p != "" {
			pageParts = append(pageParts, p)
		}
	}
	return &models.Reference{
		Type:      "article",
		Author:    author,
		Title:     title,
		Year:      year,
		Journal:   fields["JO"],
		Volume:    fields["VL"],
		Pages:     strings.Join(pageParts, "-"),
		DOI:       fields["DO"],
		URL:       fields["UR"],
		Booktitle: fields["T3"],
	}
}

var bibEscaper = strings.NewReplacer(`\`, `\\`, `{`, `\{`, `}`, `\}`, `"`, `\"`)

func escapeBibTeX(s string) string {
	return bibEscaper.Replace(s)
}

// ToBibTeX renders references as BibTeX entries joined by blank lines. Entry
// keys are ref<index+1><last two year digits>; only non-empty fields are
// emitted, in a fixed order.
func ToBibTeX(refs []models.Reference) string {
	entries := make([]string, 0, len(refs))
	for i, r := range refs {
		typ := strings.ToLower(r.Type)
		if typ == "" {
			typ = "misc"
		}
		yearSuffix := r.Year
		if yr := []rune(yearSuffix); len(yr) > 2 {
			yearSuffix = string(yr[len(yr)-2:])
		}
		key := fmt.Sprintf("ref%d%s", i+1, yearSuffix)
		var fields []string
		for _, f := range []struct{ name, value string }{
			{"author", r.Author},
			{"title", r.Title},
			{"year", r.Year},
			{"journal", r.Journal},
			{"volume", r.Volume},
			{"pages", r.Pages},
			{"publisher", r.Publisher},
			{"doi", r.DOI},
			{"url", r.URL},
			{"booktitle", r.Booktitle},
		} {
			if f.value != "" {
				fields = append(fields, fmt.Sprintf("  %s = {%s}", f.name, escapeBibTeX(f.value)))
			}
		}
		entries = append(entries, fmt.Sprintf("@%s{%s,\n%s\n}", typ, key, strings.Join(fields, ",\n")))
	}
	return strings.Join(entries, "\n\n")
}

// authorLastName extracts the surname of the first author: the part before
// the first comma, or the final word when no comma is present.
func authorLastName(author string) string {
	s := strings.TrimSpace(author)
	if s == "" {
		return "n.d."
	}
	first := s
	if parts := splitAuthors(s); len(parts) > 0 {
		first = parts[0]
	}
	if idx := strings.Index(first, ","); idx >= 0 {
		if last := strings.TrimSpace(first[:idx]); last != "" {
			return last
		}
		return first
	}
	words := strings.Fields(first)
	if len(words) == 0 {
		return first
	}
	return words[len(words)-1]
}

func splitAuthors(author string) []string {
	var out []string
	for _, p := range authorSepRe.Split(author, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FormatInTextAPA renders a parenthetical in-text citation: "(Last, Year)".
func FormatInTextAPA(ref models.Reference) string {
	return fmt.Sprintf("(%s, %s)", authorLastName(ref.Author), yearOrND(ref.Year))
}

// FormatInTextAPANarrative renders the narrative variant: "Last (Year)".
func FormatInTextAPANarrative(ref models.Reference) string {
	return fmt.Sprintf("%s (%s)", authorLastName(ref.Author), yearOrND(ref.Year))
}

func yearOrND(year string) string {
	if y := strings.TrimSpace(year); y != "" {
		return y
	}
	return "n.d."
}

// formatOneAuthorAPA renders a single author as "Last, F. I.".
func formatOneAuthorAPA(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}
	if idx := strings.Index(s, ","); idx >= 0 {
		last := strings.TrimSpace(s[:idx])
		first := strings.TrimSpace(s[idx+1:])
		var initials []string
		for _, w := range strings.Fields(first) {
			initials = append(initials, string([]rune(w)[0])+".")
		}
		if last == "" {
			return first
		}
		return strings.TrimSpace(last + ", " + strings.Join(initials, " "))
	}
	words := strings.Fields(s)
	if len(words) <= 1 {
		return s
	}
	last := words[len(words)-1]
	var initials []string
	for _, w := range words[:len(words)-1] {
		initials = append(initials, string([]rune(w)[0])+".")
	}
	return last + ", " + strings.Join(initials, " ")
}

func stripDOIPrefix(doi string) string {
	return doiPrefixRe.ReplaceAllString(doi, "")
}

func formatReferenceAPA(ref models.Reference) string {
	var authors []string
	for _, a := range splitAuthors(ref.Author) {
		authors = append(authors, formatOneAuthorAPA(a))
	}
	var authorStr string
	switch {
	case len(authors) == 0:
		authorStr = "N.d."
	case len(authors) == 1:
		authorStr = authors[0]
	case len(authors) <= 7:
		authorStr = strings.Join(authors[:len(authors)-1], ", ") + ", & " + authors[len(authors)-1]
	default:
		authorStr = authors[0] + " et al."
	}
	year := " (n.d.)."
	if y := strings.TrimSpace(ref.Year); y != "" {
		year = fmt.Sprintf(" (%s).", y)
	}
	title := ""
	if t := strings.TrimSpace(ref.Title); t != "" {
		title = " " + t + "."
	}
	tail := ""
	switch strings.ToLower(ref.Type) {
	case "article", "jour":
		if j := strings.TrimSpace(ref.Journal); j != "" {
			tail = " *" + j + "*"
			if v := strings.TrimSpace(ref.Volume); v != "" {
				tail += ", *" + v + "*"
			}
			if p := strings.TrimSpace(ref.Pages); p != "" {
				tail += ", " + p
			}
			tail += "."
		}
		tail += apaLink(ref)
	case "book":
		if p := strings.TrimSpace(ref.Publisher); p != "" {
			tail = " " + p + "."
		}
		tail += apaLink(ref)
	case "inproceedings":
		conf := strings.TrimSpace(ref.Booktitle)
		if conf == "" {
			conf = strings.TrimSpace(ref.Journal)
		}
		if conf != "" {
			tail = " In *" + conf + "*."
		}
		tail += apaLink(ref)
	}
	return strings.TrimSpace(authorStr + year + title + tail)
}

func apaLink(ref models.Reference) string {
	if d := strings.TrimSpace(ref.DOI); d != "" {
		return " https://doi.org/" + stripDOIPrefix(d)
	}
	if u := strings.TrimSpace(ref.URL); u != "" {
		return " " + u
	}
	return ""
}

// ToReferenceListAPA renders full APA entries joined by blank lines.
func ToReferenceListAPA(refs []models.Reference) string {
	entries := make([]string, 0, len(refs))
	for _, r := range refs {
		entries = append(entries, formatReferenceAPA(r))
	}
	return strings.Join(entries, "\n\n")
}

func formatReferenceIEEE(ref models.Reference, index int) string {
	var authors []string
	for _, a := range ieeeAuthorSepRe.Split(ref.Author, -1) {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	authorStr := "N.d."
	if len(authors) > 0 {
		formatted := make([]string, 0, len(authors))
		for _, a := range authors {
			words := strings.Fields(a)
			if len(words) <= 1 {
				formatted = append(formatted, a)
				continue
			}
			last := words[len(words)-1]
			var initials []string
			for _, w := range words[:len(words)-1] {
				initials = append(initials, string([]rune(w)[0]))
			}
			formatted = append(formatted, fmt.Sprintf("%s, %s.", last, strings.Join(initials, ". ")))
		}
		authorStr = strings.Join(formatted, ", ")
	}
	title := ""
	if t := strings.TrimSpace(ref.Title); t != "" {
		title = fmt.Sprintf("%q,", t)
	}
	year := yearOrND(ref.Year)
	ty := strings.ToLower(ref.Type)
	if ty == "article" || ty == "jour" {
		var parts []string
		if j := strings.TrimSpace(ref.Journal); j != "" {
			parts = append(parts, "*"+j+"*")
		}
		if v := strings.TrimSpace(ref.Volume); v != "" {
			parts = append(parts, "vol. "+v)
		}
		if p := strings.TrimSpace(ref.Pages); p != "" {
			parts = append(parts, "pp. "+p)
		}
		parts = append(parts, year)
		rest := strings.Join(parts, ", ") + "."
		if d := strings.TrimSpace(ref.DOI); d != "" {
			rest += " doi: " + stripDOIPrefix(d)
		}
		return strings.TrimSpace(fmt.Sprintf("[%d] %s, %s %s", index+1, authorStr, title, rest))
	}
	return strings.TrimSpace(fmt.Sprintf("[%d] %s, %s %s.", index+1, authorStr, title, year))
}

// ToReferenceListIEEE renders numbered IEEE entries, [1]..[n], joined by
// blank lines.
func ToReferenceListIEEE(refs []models.Reference) string {
	entries := make([]string, 0, len(refs))
	for i, r := range refs {
		entries = append(entries, formatReferenceIEEE(r, i))
	}
	return strings.Join(entries, "\n\n")
}

// MarkdownItalicsToHTML replaces *spans* with <em> markup. Non-nesting.
func MarkdownItalicsToHTML(text string) string {
	return italicsRe.ReplaceAllString(text, "<em>$1</em>")
}

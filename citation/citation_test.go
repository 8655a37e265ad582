package citation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writium/models"
)

const sampleBibTeX = `@article{smith2020,
  author = {Smith, John and Doe, Jane},
  title = {A Study of Things},
  year = {2020},
  journal = {Journal of Examples},
  volume = {12},
  pages = {34-56},
  doi = {10.1000/xyz}
}`

const sampleRIS = `TY  - JOUR
AU  - Smith, John
AU  - Doe, Jane
TI  - A Study of Things
PY  - 2020/01/15
JO  - Journal of Examples
VL  - 12
SP  - 34
EP  - 56
DO  - 10.1000/xyz
ER  - `

func TestParseBibTeX(t *testing.T) {
	ref := ParseBibTeX(sampleBibTeX)
	require.NotNil(t, ref)
	assert.Equal(t, "article", ref.Type)
	assert.Equal(t, "Smith, John, Doe, Jane", ref.Author)
	assert.Equal(t, "A Study of Things", ref.Title)
	assert.Equal(t, "2020", ref.Year)
	assert.Equal(t, "Journal of Examples", ref.Journal)
	assert.Equal(t, "34-56", ref.Pages)
	assert.Equal(t, "10.1000/xyz", ref.DOI)
}

func TestParseBibTeXUnknownType(t *testing.T) {
	ref := ParseBibTeX(`@weird{x, title = {Something}}`)
	require.NotNil(t, ref)
	assert.Equal(t, "misc", ref.Type)
}

func TestParseBibTeXRejectsGarbage(t *testing.T) {
	assert.Nil(t, ParseBibTeX(""))
	assert.Nil(t, ParseBibTeX("not bibtex at all"))
	assert.Nil(t, ParseBibTeX(`@article{empty, year = {2020}}`))
}

func TestParseCitationFormatBibTeX(t *testing.T) {
	parsed := ParseCitationFormat(sampleBibTeX)
	require.NotNil(t, parsed)
	assert.Equal(t, FormatBibTeX, parsed.Format)
	assert.Equal(t, "A Study of Things", parsed.Ref.Title)
}

func TestParseCitationFormatSkipsBadLeadingEntry(t *testing.T) {
	blob := "@article{bad, year = {1999}}\n\n" + sampleBibTeX
	parsed := ParseCitationFormat(blob)
	require.NotNil(t, parsed)
	assert.Equal(t, "A Study of Things", parsed.Ref.Title)
}

func TestParseCitationFormatRIS(t *testing.T) {
	parsed := ParseCitationFormat(sampleRIS)
	require.NotNil(t, parsed)
	assert.Equal(t, FormatRefman, parsed.Format)
	assert.Equal(t, "Smith, John, Doe, Jane", parsed.Ref.Author)
	assert.Equal(t, "2020", parsed.Ref.Year)
	assert.Equal(t, "34-56", parsed.Ref.Pages)
}

func TestParseCitationFormatUnknown(t *testing.T) {
	assert.Nil(t, ParseCitationFormat(""))
	assert.Nil(t, ParseCitationFormat("   "))
	assert.Nil(t, ParseCitationFormat("just some prose"))
}

func TestToBibTeXRoundTrip(t *testing.T) {
	refs := []models.Reference{
		{
			Type:    "article",
			Author:  "Smith, John",
			Title:   "A Study of Things",
			Year:    "2020",
			Journal: "Journal of Examples",
		},
	}
	out := ToBibTeX(refs)
	assert.Contains(t, out, "@article{ref120,")

	back := ParseBibTeX(out)
	require.NotNil(t, back)
	assert.Equal(t, refs[0].Author, back.Author)
	assert.Equal(t, refs[0].Title, back.Title)
	assert.Equal(t, refs[0].Year, back.Year)
}

func TestToBibTeXEscapesSpecials(t *testing.T) {
	out := ToBibTeX([]models.Reference{{Type: "misc", Title: `Braces {and} "quotes"`, Author: "A"}})
	assert.Contains(t, out, `\{and\}`)
	assert.Contains(t, out, `\"quotes\"`)
}

func TestToBibTeXMultipleEntries(t *testing.T) {
	out := ToBibTeX([]models.Reference{
		{Type: "article", Author: "A", Title: "One", Year: "2019"},
		{Type: "book", Author: "B", Title: "Two", Year: "2021"},
	})
	parts := strings.Split(out, "\n\n")
	require.Len(t, parts, 2)
	assert.True(t, strings.HasPrefix(parts[0], "@article{ref119,"))
	assert.True(t, strings.HasPrefix(parts[1], "@book{ref221,"))
}

func TestFormatInTextAPA(t *testing.T) {
	ref := models.Reference{Author: "Smith, John", Year: "2020"}
	assert.Equal(t, "(Smith, 2020)", FormatInTextAPA(ref))
	assert.Equal(t, "Smith (2020)", FormatInTextAPANarrative(ref))

	assert.Equal(t, "(n.d., n.d.)", FormatInTextAPA(models.Reference{}))
	assert.Equal(t, "(Doe, n.d.)", FormatInTextAPA(models.Reference{Author: "Jane Doe"}))
}

func TestFormatReferenceAPAArticle(t *testing.T) {
	out := ToReferenceListAPA([]models.Reference{{
		Type:    "article",
		Author:  "Smith, John and Doe, Jane",
		Title:   "A Study of Things",
		Year:    "2020",
		Journal: "Journal of Examples",
		Volume:  "12",
		Pages:   "34-56",
		DOI:     "https://doi.org/10.1000/xyz",
	}})
	assert.Equal(t, "Smith, J., & Doe, J. (2020). A Study of Things. *Journal of Examples*, *12*, 34-56. https://doi.org/10.1000/xyz", out)
}

func TestFormatReferenceAPAManyAuthors(t *testing.T) {
	names := []string{"Aa, A", "Bb, B", "Cc, C", "Dd, D", "Ee, E", "Ff, F", "Gg, G", "Hh, H"}
	ref := models.Reference{Type: "book", Author: strings.Join(names, " and "), Title: "T", Year: "2001"}
	out := ToReferenceListAPA([]models.Reference{ref})
	assert.True(t, strings.HasPrefix(out, "Aa, A. et al. (2001)."), out)

	ref.Author = strings.Join(names[:3], " and ")
	out = ToReferenceListAPA([]models.Reference{ref})
	assert.True(t, strings.HasPrefix(out, "Aa, A., Bb, B., & Cc, C. (2001)."), out)
}

func TestToReferenceListIEEE(t *testing.T) {
	out := ToReferenceListIEEE([]models.Reference{
		{Type: "article", Author: "John Smith", Title: "A Study", Year: "2020", Journal: "Examples", Volume: "3", Pages: "1-9", DOI: "10.1/x"},
		{Type: "book", Author: "Jane Doe", Title: "Another", Year: "2019"},
	})
	entries := strings.Split(out, "\n\n")
	require.Len(t, entries, 2)
	assert.Equal(t, `[1] Smith, J., "A Study", *Examples*, vol. 3, pp. 1-9, 2020. doi: 10.1/x`, entries[0])
	assert.Equal(t, `[2] Doe, J., "Another", 2019.`, entries[1])
}

func TestMarkdownItalicsToHTML(t *testing.T) {
	assert.Equal(t, "see <em>Journal</em> now", MarkdownItalicsToHTML("see *Journal* now"))
	assert.Equal(t, "no markup", MarkdownItalicsToHTML("no markup"))
}

package locator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const syllabusPanelHTML = `<html><body>
<div role="listbox">
  <div role="option">Mathematics</div>
  <div role="option">  Computer
     Science </div>
</div>
<ul class="course-list">
  <li><button class="course-row primary">MATH 112 Calculus 1</button></li>
  <li><button class="course-row">MATH 113 Calculus 2</button></li>
</ul>
<section id="syllabi">
  <a href="https://syllabus.example.edu/s/1">View Syllabus</a>
  <a href="https://syllabus.example.edu/s/2">view syllabus (Section 2)</a>
  <a href="https://example.edu/help">Help</a>
</section>
</body></html>`

const accordionHTML = `<html><head><title>View Syllabus</title></head><body>
<div class="course">
  <div class="course-title">ART 101</div>
  <div class="panel" style="display: none"><a href="/s/old">View Syllabus</a></div>
</div>
<div class="course">
  <div class="course-title">ART 102</div>
  <div class="panel" hidden><a href="/s/hidden">View Syllabus</a></div>
</div>
<div class="course">
  <div class="course-title">ART 103</div>
  <div class="panel">
    <a href="/s/current">View Syllabus</a>
    <a href="section-2?term=fall">View Syllabus</a>
    <a href="">View Syllabus</a>
  </div>
</div>
<div class="course">
  <div class="course-title">ART 104</div>
  <div class="panel"><a href="https://other.example.edu/s/104">View Syllabus</a></div>
</div>
<input type="hidden" name="token" value="x">
</body></html>`

func parseFixture(t *testing.T) *Snapshot {
	t.Helper()
	snapshot, err := NewSnapshot(syllabusPanelHTML, "")
	require.NoError(t, err)
	return snapshot
}

func parseAccordion(t *testing.T) *Snapshot {
	t.Helper()
	snapshot, err := NewSnapshot(accordionHTML, "https://syllabus.example.edu/lookup/courses")
	require.NoError(t, err)
	return snapshot
}

func hrefs(elements []Element) []string {
	var out []string
	for _, element := range elements {
		href, _ := element.Attribute("href")
		out = append(out, href)
	}
	return out
}

func texts(elements []Element) []string {
	var out []string
	for _, element := range elements {
		out = append(out, element.Text())
	}
	return out
}

func TestSnapshotFindByAttribute(t *testing.T) {
	snapshot := parseFixture(t)

	options := snapshot.Find(WholePage, AttributeEquals("div", "role", "option"))
	require.Equal(t, []string{"Mathematics", "Computer Science"}, texts(options))
}

func TestSnapshotFindAttributeContains(t *testing.T) {
	snapshot := parseFixture(t)

	courses := snapshot.Find(WholePage, AttributeContains("button", "class", "course-row"))
	require.Equal(t, []string{"MATH 112 Calculus 1", "MATH 113 Calculus 2"}, texts(courses))

	primary := snapshot.Find(WholePage, AttributeEquals("button", "class", "course-row"))
	require.Equal(t, []string{"MATH 113 Calculus 2"}, texts(primary))
}

func TestSnapshotFindWithText(t *testing.T) {
	snapshot := parseFixture(t)

	selected := snapshot.Find(WholePage, AttributeEquals("div", "role", "option").WithText("Computer   Science"))
	require.Len(t, selected, 1)
	require.Equal(t, "Computer Science", selected[0].Text())
}

func TestSnapshotFindReadsAttributes(t *testing.T) {
	snapshot := parseFixture(t)

	anchors := snapshot.Find(WholePage, TextContains("a", "View Syllabus"))
	require.Len(t, anchors, 1)
	href, found := anchors[0].Attribute("href")
	require.True(t, found)
	require.Equal(t, "https://syllabus.example.edu/s/1", href)

	_, found = anchors[0].Attribute("target")
	require.False(t, found)

	require.Len(t, snapshot.Find(WholePage, Tag("a")), 3)
}

func TestSnapshotFindSkipsHiddenNodes(t *testing.T) {
	snapshot := parseAccordion(t)

	links := snapshot.Find(WholePage, TextContains("a", "View Syllabus"))
	require.Equal(t, []string{
		"https://syllabus.example.edu/s/current",
		"https://syllabus.example.edu/lookup/section-2?term=fall",
		"",
		"https://other.example.edu/s/104",
	}, hrefs(links))

	require.Empty(t, snapshot.Find(WholePage, Tag("input")))
	require.Empty(t, snapshot.Find(WholePage, Tag("title")))
}

func TestSnapshotFindKeepsHrefWithoutPageURL(t *testing.T) {
	snapshot, err := NewSnapshot(accordionHTML, "")
	require.NoError(t, err)

	require.Equal(t, "/s/current", hrefs(snapshot.Find(WholePage, Tag("a")))[0])
}

func TestSnapshotFindWithinSection(t *testing.T) {
	snapshot := parseAccordion(t)
	courseTitle := AttributeContains("div", "class", "course-title")

	current := snapshot.Find(Between(courseTitle.WithText("ART 103"), courseTitle), Tag("a"))
	require.Equal(t, []string{
		"https://syllabus.example.edu/s/current",
		"https://syllabus.example.edu/lookup/section-2?term=fall",
		"",
	}, hrefs(current))

	last := snapshot.Find(Between(courseTitle.WithText("ART 104"), courseTitle), Tag("a"))
	require.Equal(t, []string{"https://other.example.edu/s/104"}, hrefs(last))

	collapsed := snapshot.Find(Between(courseTitle.WithText("ART 101"), courseTitle), Tag("a"))
	require.Empty(t, collapsed)

	missing := snapshot.Find(Between(courseTitle.WithText("ART 999"), courseTitle), Tag("a"))
	require.Empty(t, missing)
}

func TestNewSnapshotRejectsBadPageURL(t *testing.T) {
	_, err := NewSnapshot("<p></p>", "http://[::1")
	require.Error(t, err)
}

func TestXPath(t *testing.T) {
	cases := []struct {
		name     string
		selector Selector
		want     string
	}{
		{"tag only", Tag("a"), `//a`},
		{"wildcard", Selector{TextContains: "Teaching Area"}, `//*[contains(normalize-space(.),"Teaching Area")]`},
		{"attribute equals", AttributeEquals("div", "role", "option"), `//div[@role="option"]`},
		{"attribute contains", AttributeContains("li", "class", "course"), `//li[contains(@class,"course")]`},
		{"attribute present", Selector{Tag: "a", Attribute: "href"}, `//a[@href]`},
		{"exact text", AttributeEquals("div", "role", "option").WithText("Math"), `//div[@role="option"][normalize-space(.)="Math"]`},
		{"double quote", TextContains("span", `say "hi"`), `//span[contains(normalize-space(.),'say "hi"')]`},
		{"both quotes", TextContains("span", `it's "x"`), `//span[contains(normalize-space(.),concat("it's ",'"',"x",'"'))]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.selector.XPath())
		})
	}
}

func TestSelectorComparable(t *testing.T) {
	option := AttributeEquals("div", "role", "option")
	require.NotEqual(t, option, option.WithText("Math"))
	require.Equal(t, option, option.WithText("Math").WithText(""))
	require.True(t, Selector{}.IsZero())
	require.False(t, option.IsZero())

	require.True(t, WholePage.IsZero())
	require.Equal(t, Between(option.WithText("Math"), option), Between(option.WithText("Math"), option))
	require.False(t, Between(option, option).IsZero())
}

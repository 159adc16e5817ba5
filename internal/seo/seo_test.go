package seo

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("mot ", n))
}

func TestAnalyze_Scenario(t *testing.T) {
	markup := `<h1>Titre</h1><h2>Partie 1</h2><p>` + words(150) + `</p>` +
		`<h2>Partie 2</h2><p>` + words(170) + ` <a href="https://exemple.com">lien</a></p>`
	text := words(320)

	st := Analyze(markup, text)
	assert.Equal(t, Stats{Words: 320, ReadingTime: 2, H1: 1, H2: 2, Links: 1}, st)

	r := Classify(st, DefaultThresholds())
	assert.Equal(t, LevelGood, r.Level("words"))
	assert.Equal(t, LevelGood, r.Level("h1"))
	assert.Equal(t, LevelGood, r.Level("h2"))
	assert.Equal(t, LevelGood, r.Level("links"))
	assert.Equal(t, LevelWarning, r.Level("images"))
	assert.Equal(t, 80, r.Score)
}

func TestAnalyze_CountsMedia(t *testing.T) {
	st := Analyze(`<p><img src="/a.png"><img src="/b.png"></p><video src="/v.mp4"></video><h3>x</h3>`, "x")
	assert.Equal(t, 2, st.Images)
	assert.Equal(t, 1, st.Videos)
	assert.Equal(t, 1, st.H3)
}

func TestAnalyze_WordsZeroIffBlank(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		assert.Equal(t, 0, Analyze("<p></p>", text).Words, "%q", text)
		assert.Equal(t, 0, Analyze("<p></p>", text).ReadingTime, "%q", text)
	}
	assert.Equal(t, 1, Analyze("", "  bonjour ").Words)
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 0, ReadingTime(0))
	assert.Equal(t, 1, ReadingTime(1))
	assert.Equal(t, 1, ReadingTime(199))
	assert.Equal(t, 1, ReadingTime(200))
	assert.Equal(t, 2, ReadingTime(201))

	prev := 0
	for w := 0; w < 1000; w++ {
		rt := ReadingTime(w)
		require.GreaterOrEqual(t, rt, prev)
		prev = rt
	}
}

func TestAnalyze_MalformedMarkupDoesNotFail(t *testing.T) {
	st := Analyze(`<h1><p>unclosed <a href=`, "unclosed")
	assert.Equal(t, 1, st.Words)
	assert.Equal(t, 1, st.H1)
}

func TestPlainText(t *testing.T) {
	got := PlainText(`<h1>Titre</h1><p>Un <strong>texte</strong> simple</p><script>x()</script><ul><li>a</li><li>b</li></ul>`)
	assert.Equal(t, []string{"Titre", "Un", "texte", "simple", "a", "b"}, strings.Fields(got))
	assert.Equal(t, "", PlainText(""))
}

func TestClassify_Thresholds(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, LevelWarning, Classify(Stats{Words: 150}, th).Level("words"))
	assert.Equal(t, LevelBad, Classify(Stats{Words: 149}, th).Level("words"))
	assert.Equal(t, LevelBad, Classify(Stats{H1: 0}, th).Level("h1"))
	assert.Equal(t, LevelBad, Classify(Stats{H1: 2}, th).Level("h1"))
	assert.Equal(t, LevelWarning, Classify(Stats{H2: 1}, th).Level("h2"))
	assert.Equal(t, LevelWarning, Classify(Stats{Links: 0}, th).Level("links"))
	assert.Equal(t, Level(""), Classify(Stats{}, th).Level("nope"))
}

func TestAnalyzer_MemoizesByContent(t *testing.T) {
	var hits, misses int
	a := NewAnalyzer(2, WithObserver(func(cached bool) {
		if cached {
			hits++
		} else {
			misses++
		}
	}))

	first := a.Analyze("<h1>aa</h1>", "aa")
	// Same lengths, different content: must not collide.
	second := a.Analyze("<h2>bb</h2>", "bb")
	assert.Equal(t, 1, first.H1)
	assert.Equal(t, 0, second.H1)
	assert.Equal(t, 1, second.H2)

	assert.Equal(t, first, a.Analyze("<h1>aa</h1>", "aa"))
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)

	a.Analyze("<p>c</p>", "c")
	assert.Equal(t, 2, a.Len())
}

func TestBuildMeta(t *testing.T) {
	site := SiteInfo{Name: "Epropulse", BaseURL: "https://epropulse.com/", DefaultImage: "/og.png", Locale: "fr_FR"}
	published := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := BuildMeta(site, PageInput{
		Title:       "Vendre en ligne",
		Path:        "/blog/vendre-en-ligne",
		Type:        "article",
		Tags:        []string{"ecommerce"},
		PublishedAt: &published,
		BodyText:    strings.Repeat("contenu ", 40),
	})
	assert.Equal(t, "Vendre en ligne | Epropulse", m.Title)
	assert.Equal(t, "https://epropulse.com/blog/vendre-en-ligne", m.Canonical)
	assert.Equal(t, "https://epropulse.com/og.png", m.OGImage)
	assert.Equal(t, "article", m.OGType)
	assert.Equal(t, "2024-05-01T10:00:00Z", m.PublishedTime)
	assert.LessOrEqual(t, len([]rune(m.Description)), DescriptionLength)
	assert.True(t, strings.HasSuffix(m.Description, "…"))

	home := BuildMeta(site, PageInput{NoIndex: true, Description: "Accueil"})
	assert.Equal(t, "Epropulse", home.Title)
	assert.Equal(t, "https://epropulse.com/", home.Canonical)
	assert.Equal(t, "noindex, nofollow", home.Robots)
	assert.Equal(t, "Accueil", home.Description)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "court", Excerpt("  court  ", 10))
	assert.Equal(t, "un deux…", Excerpt("un deux trois quatre", 12))
}

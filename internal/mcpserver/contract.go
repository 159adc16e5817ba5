package mcpserver

import (
	"fmt"

	"github.com/epropulse/epropulse/internal/seo"
)

// SEOGuidelines renders the editorial rules a post is graded against, for
// LLM consumers drafting or reviewing content.
func SEOGuidelines(th seo.Thresholds) string {
	return fmt.Sprintf(`# Epropulse SEO Guidelines

Every blog post is graded by the analyze_seo tool against these targets.

## Targets

| Metric   | Good            | Warning          | Bad             |
|----------|-----------------|------------------|-----------------|
| words    | %d or more      | %d to %d         | fewer than %d   |
| h1       | exactly 1       |                  | none, or more than 1 |
| h2       | %d or more      | fewer            |                 |
| links    | %d or more      | fewer            |                 |
| images   | %d or more      | fewer            |                 |

Reading time assumes %d words per minute, rounded up.

## Markup

Posts are HTML produced by the editor. Allowed blocks: p, h1, h2, h3,
blockquote, pre, ul, ol, img, video. Inline marks: strong, em, u, s, code,
a, and span with a color style.

1. **One h1.** It repeats the post title.
2. **Headings in order.** Never skip from h1 to h3.
3. **Links** use absolute http(s) URLs or site paths starting with /.
   External links open in a new tab with rel="noopener noreferrer".
4. **Images** carry a meaningful alt text. Upload them with upload_image
   and use the returned URL.
5. **Excerpt** stays under 160 characters; it becomes the meta description.

## Example

`+"```"+`html
<h1>Bien choisir son hébergeur</h1>
<p>Un bon hébergeur fait la différence pour un site <strong>rapide</strong>.</p>
<h2>Les critères</h2>
<p>Consultez notre <a href="/blog/performances">guide des performances</a>.</p>
<img src="/media/0b6c5b1e-5f0c-4a38-9f73-2f1b0f4f3f5e.png" alt="Comparatif des offres">
<h2>Notre sélection</h2>
<p>...</p>
`+"```"+`
`,
		th.WordsGood, th.WordsWarning, th.WordsGood-1, th.WordsWarning,
		th.H2Good, th.LinksGood, th.ImagesGood, seo.WordsPerMinute)
}

package seo

import "fmt"

// Level grades one metric.
type Level string

const (
	LevelGood    Level = "good"
	LevelWarning Level = "warning"
	LevelBad     Level = "bad"
)

// Thresholds are the editorial targets a post is graded against.
type Thresholds struct {
	WordsGood    int `yaml:"words_good" json:"words_good"`
	WordsWarning int `yaml:"words_warning" json:"words_warning"`
	H2Good       int `yaml:"h2_good" json:"h2_good"`
	LinksGood    int `yaml:"links_good" json:"links_good"`
	ImagesGood   int `yaml:"images_good" json:"images_good"`
}

// DefaultThresholds returns the thresholds used by the editorial team.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WordsGood:    300,
		WordsWarning: 150,
		H2Good:       2,
		LinksGood:    1,
		ImagesGood:   1,
	}
}

// Check is the grade of a single metric.
type Check struct {
	Metric  string `json:"metric"`
	Value   int    `json:"value"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Report lists the checks for a document. Score is the share of good checks,
// in percent.
type Report struct {
	Checks []Check `json:"checks"`
	Score  int     `json:"score"`
}

// Level returns the grade of metric, or "" when the report has no such check.
func (r Report) Level(metric string) Level {
	for _, c := range r.Checks {
		if c.Metric == metric {
			return c.Level
		}
	}
	return ""
}

// Classify grades st against th.
func Classify(st Stats, th Thresholds) Report {
	checks := []Check{
		classifyWords(st.Words, th),
		classifyH1(st.H1),
		atLeast("h2", st.H2, th.H2Good,
			fmt.Sprintf("%d sous-titres H2", st.H2),
			fmt.Sprintf("Ajoutez des sous-titres H2 (au moins %d)", th.H2Good)),
		atLeast("links", st.Links, th.LinksGood,
			fmt.Sprintf("%d lien(s)", st.Links),
			"Ajoutez au moins un lien"),
		atLeast("images", st.Images, th.ImagesGood,
			fmt.Sprintf("%d image(s)", st.Images),
			"Ajoutez au moins une image"),
	}

	good := 0
	for _, c := range checks {
		if c.Level == LevelGood {
			good++
		}
	}
	return Report{Checks: checks, Score: good * 100 / len(checks)}
}

func classifyWords(words int, th Thresholds) Check {
	c := Check{Metric: "words", Value: words}
	switch {
	case words >= th.WordsGood:
		c.Level = LevelGood
		c.Message = fmt.Sprintf("Longueur suffisante (%d mots)", words)
	case words >= th.WordsWarning:
		c.Level = LevelWarning
		c.Message = fmt.Sprintf("Contenu un peu court (%d mots, visez %d)", words, th.WordsGood)
	default:
		c.Level = LevelBad
		c.Message = fmt.Sprintf("Contenu trop court (%d mots)", words)
	}
	return c
}

func classifyH1(n int) Check {
	c := Check{Metric: "h1", Value: n}
	switch n {
	case 1:
		c.Level = LevelGood
		c.Message = "Un seul titre H1"
	case 0:
		c.Level = LevelBad
		c.Message = "Aucun titre H1"
	default:
		c.Level = LevelBad
		c.Message = fmt.Sprintf("%d titres H1, un seul est recommandé", n)
	}
	return c
}

func atLeast(metric string, value, target int, okMsg, warnMsg string) Check {
	c := Check{Metric: metric, Value: value, Level: LevelWarning, Message: warnMsg}
	if value >= target {
		c.Level = LevelGood
		c.Message = okMsg
	}
	return c
}

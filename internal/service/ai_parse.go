package service

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	talkingPointsMarker = regexp.MustCompile(`(?i)\n?\s*\**talking points:?\**:?\s*\n`)
	listItem            = regexp.MustCompile(`(?m)^\s*(?:\d+[.)]|[-*•])\s+(.+?)\s*$`)
	enhancedLabel       = regexp.MustCompile(`(?i)^\s*(?:enhanced|rewritten|improved)(?:\s+testimonial)?\s*:\s*`)
	wrappingQuotes      = regexp.MustCompile(`^["“”']+|["“”']+$`)
	summarySection      = regexp.MustCompile(`(?is)SUMMARY:\s*(.+?)\s*(?:\n\s*HIGHLIGHTS:|\n\s*SENTIMENT:|\n\s*RATING:|$)`)
	highlightsSection   = regexp.MustCompile(`(?is)HIGHLIGHTS:\s*(.+?)\s*(?:\n\s*SENTIMENT:|\n\s*RATING:|$)`)
	sentimentLine       = regexp.MustCompile(`(?i)SENTIMENT:\s*(positive|neutral|negative)`)
	ratingLine          = regexp.MustCompile(`(?i)RATING:\s*([1-5])`)
)

// ScriptResult is the parsed answer of generate-script.
type ScriptResult struct {
	Script        string   `json:"script"`
	TalkingPoints []string `json:"talkingPoints"`
}

// EnhanceResult is the parsed answer of enhance-text.
type EnhanceResult struct {
	EnhancedText string `json:"enhancedText"`
}

// SummaryResult is the parsed answer of extract-summary.
type SummaryResult struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
	Sentiment  string   `json:"sentiment"`
	Rating     *int     `json:"rating,omitempty"`
}

func parseScript(content string) ScriptResult {
	content = strings.TrimSpace(content)
	res := ScriptResult{Script: content, TalkingPoints: []string{}}
	loc := talkingPointsMarker.FindStringIndex(content)
	if loc == nil {
		return res
	}
	res.Script = strings.TrimSpace(content[:loc[0]])
	res.TalkingPoints = listItems(content[loc[1]:])
	return res
}

func parseEnhanced(content string) EnhanceResult {
	text := enhancedLabel.ReplaceAllString(strings.TrimSpace(content), "")
	text = wrappingQuotes.ReplaceAllString(strings.TrimSpace(text), "")
	return EnhanceResult{EnhancedText: strings.TrimSpace(text)}
}

func parseSummary(content string) SummaryResult {
	content = strings.TrimSpace(content)
	res := SummaryResult{Summary: content, Highlights: []string{}, Sentiment: "neutral"}
	if m := summarySection.FindStringSubmatch(content); m != nil {
		res.Summary = strings.TrimSpace(m[1])
	}
	if m := highlightsSection.FindStringSubmatch(content); m != nil {
		for _, h := range listItems(m[1]) {
			res.Highlights = append(res.Highlights, wrappingQuotes.ReplaceAllString(h, ""))
		}
	}
	if m := sentimentLine.FindStringSubmatch(content); m != nil {
		res.Sentiment = strings.ToLower(m[1])
	}
	if m := ratingLine.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			res.Rating = &n
		}
	}
	return res
}

func listItems(s string) []string {
	items := []string{}
	for _, m := range listItem.FindAllStringSubmatch(s, -1) {
		if item := strings.TrimSpace(m[1]); item != "" {
			items = append(items, item)
		}
	}
	return items
}

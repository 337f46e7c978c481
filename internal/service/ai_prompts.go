package service

import (
	"strings"
)

const (
	ActionGenerateScript = "generate-script"
	ActionEnhanceText    = "enhance-text"
	ActionExtractSummary = "extract-summary"
)

type promptTemplate struct {
	system string
	user   string
}

var promptTemplates = map[string]promptTemplate{
	ActionGenerateScript: {
		system: "You are a copywriter who helps happy customers record short, natural video testimonials.",
		user: `Write a 60-second video testimonial script for a customer of {productName}.
Audience: {audience}
Tone: {tone}
The script should answer these questions:
{questions}

Write the script in the first person. After the script, add a line "TALKING POINTS:" followed by 3 to 5 numbered talking points.`,
	},
	ActionEnhanceText: {
		system: "You polish customer testimonials. Fix grammar and flow without changing the meaning or inventing facts.",
		user: `Rewrite the following testimonial so it reads clearly with a {tone} tone, keeping the customer's voice.
Return only the rewritten testimonial.

Testimonial:
"""
{text}
"""`,
	},
	ActionExtractSummary: {
		system: "You analyze transcripts of customer video testimonials.",
		user: `Analyze this video testimonial transcript.

Transcript:
"""
{transcript}
"""

Respond exactly in this format:
SUMMARY: <one or two sentences>
HIGHLIGHTS:
- <short quote from the transcript>
- <short quote from the transcript>
SENTIMENT: <positive|neutral|negative>
RATING: <1-5>`,
	},
}

// AIRequest carries the inputs of every action; each action reads its own fields.
type AIRequest struct {
	Action      string   `json:"action"`
	ProductName string   `json:"productName,omitempty"`
	Audience    string   `json:"audience,omitempty"`
	Tone        string   `json:"tone,omitempty"`
	Questions   []string `json:"questions,omitempty"`
	Text        string   `json:"text,omitempty"`
	Transcript  string   `json:"transcript,omitempty"`
}

// buildPrompt substitutes the request fields into the action's template.
func buildPrompt(req AIRequest) (system, user string, err error) {
	tmpl, ok := promptTemplates[req.Action]
	if !ok {
		return "", "", ErrUnknownAction
	}

	var vars []string
	switch req.Action {
	case ActionGenerateScript:
		if strings.TrimSpace(req.ProductName) == "" {
			return "", "", missingField("productName")
		}
		questions := "- What problem were you trying to solve?\n- How has it helped you?\n- Who would you recommend it to?"
		if len(req.Questions) > 0 {
			lines := make([]string, 0, len(req.Questions))
			for _, q := range req.Questions {
				if q = strings.TrimSpace(q); q != "" {
					lines = append(lines, "- "+q)
				}
			}
			if len(lines) > 0 {
				questions = strings.Join(lines, "\n")
			}
		}
		vars = []string{
			"{productName}", strings.TrimSpace(req.ProductName),
			"{audience}", orDefault(req.Audience, "prospective customers"),
			"{tone}", orDefault(req.Tone, "friendly"),
			"{questions}", questions,
		}
	case ActionEnhanceText:
		if strings.TrimSpace(req.Text) == "" {
			return "", "", missingField("text")
		}
		vars = []string{
			"{text}", strings.TrimSpace(req.Text),
			"{tone}", orDefault(req.Tone, "professional"),
		}
	case ActionExtractSummary:
		if strings.TrimSpace(req.Transcript) == "" {
			return "", "", missingField("transcript")
		}
		vars = []string{"{transcript}", strings.TrimSpace(req.Transcript)}
	}

	return tmpl.system, strings.NewReplacer(vars...).Replace(tmpl.user), nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

package prompts

import (
	"context"
	"fmt"
	"strings"

	"paperdeck/internal/checkpoint"
	"paperdeck/internal/services"
	"paperdeck/internal/services/llm"
)

// Visual style hints keyed by style name. Custom styles are normalized into a
// ProcessedStyle by the narrative-generation service before export.
var slideStyleHints = map[string]string{
	"academic": "Style: Clean academic conference slide. White background, single accent color, " +
		"sans-serif typography, restrained iconography. No decorative characters.",
	"doraemon": "Style: Playful cartoon slide in a soft blue palette. Rounded sans-serif fonts, " +
		"friendly robot-cat characters reacting to the content with appropriate poses, " +
		"LIMITED COLOR PALETTE (3-4 colors max).",
}

var slideLayoutRules = map[checkpoint.SectionType]string{
	checkpoint.SectionTitle: "Layout: Title slide. Large centered title, author/venue line beneath, " +
		"one hero visual, no body bullets.",
	checkpoint.SectionContent: "Layout: Content slide. Title band at top, one clear diagram or chart " +
		"dominating the body, at most four short supporting labels.",
	checkpoint.SectionCloser: "Layout: Closing slide. Short takeaway statement, contact or reference " +
		"line, calm composition that signals the end.",
}

const commonStyleRules = "English text only. 16:9 aspect ratio. Keep all text large and legible. " +
	"Visualize relationships as diagrams instead of sentences wherever possible."

const consistencyHint = "Maintain exact visual consistency with the established style reference: " +
	"same background color, same accent color, same font style, same chart and icon style."

// ProcessedStyle is a custom style request normalized by the service into the
// structured fields the prompt builder needs.
type ProcessedStyle struct {
	StyleName       string `json:"style_name"`
	ColorTone       string `json:"color_tone"`
	SpecialElements string `json:"special_elements"`
	Decorations     string `json:"decorations"`
	Valid           bool   `json:"valid"`
	Error           string `json:"error,omitempty"`
}

const styleProcessPrompt = `You normalize a user's free-text slide style request into a JSON object
with fields: style_name (a concise style description), color_tone (palette guidance),
special_elements (recurring characters or motifs, may be empty), decorations (background
decoration guidance, may be empty), valid (boolean), error (reason when invalid).
Reject requests that are not visual style descriptions by setting valid=false.
Respond with JSON only.`

// ProcessCustomStyle normalizes a free-text style description through the
// service. Export aborts when the style cannot be processed, since every
// prompt in the run would otherwise carry unusable style guidance.
func ProcessCustomStyle(ctx context.Context, client *llm.Client, description string) (ProcessedStyle, error) {
	var style ProcessedStyle
	description = strings.TrimSpace(description)
	if description == "" {
		return style, services.Wrap(services.ErrValidation, "export", "process style", "custom style description is empty", nil)
	}
	content, err := client.CompleteJSON(ctx, styleProcessPrompt, description)
	if err != nil {
		return style, services.Wrap(services.ErrExternalService, "export", "process style", "", err)
	}
	if err := llm.DecodeJSON(content, &style); err != nil {
		return style, services.Wrap(services.ErrExternalService, "export", "process style", "parse payload", err)
	}
	if !style.Valid {
		reason := style.Error
		if reason == "" {
			reason = "style request rejected"
		}
		return style, services.Wrap(services.ErrValidation, "export", "process style", reason, nil)
	}
	return style, nil
}

func (s ProcessedStyle) hints() string {
	parts := []string{
		"Style: " + s.StyleName + ".",
		fmt.Sprintf("LIMITED COLOR PALETTE (3-4 colors max): %s.", s.ColorTone),
		"Use ROUNDED sans-serif fonts for ALL text.",
	}
	if s.SpecialElements != "" {
		parts = append(parts, s.SpecialElements+".")
	}
	if s.Decorations != "" {
		parts = append(parts, "Decorations: "+s.Decorations+".")
	}
	return strings.Join(parts, " ")
}

func styleHints(styleName string, processed *ProcessedStyle) string {
	if processed != nil {
		return processed.hints()
	}
	if hints, ok := slideStyleHints[styleName]; ok {
		return hints
	}
	return slideStyleHints["academic"]
}

func layoutRule(sectionType checkpoint.SectionType) string {
	if rule, ok := slideLayoutRules[sectionType]; ok {
		return rule
	}
	return slideLayoutRules[checkpoint.SectionContent]
}

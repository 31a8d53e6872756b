package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"paperdeck/internal/services"
)

func writeInstructions(promptsDir, projectKey string, total int) error {
	var b strings.Builder
	fmt.Fprintf(&b, `# Manual Image Generation Workflow

This directory contains %d slide prompts for manual image generation.

## Workflow

Generate slides **in order** (1 -> %d) to maintain visual consistency:

- Slide 1: no reference needed (establishes the base style)
- Slide 2: use slide 1 as reference (becomes THE style reference)
- Slides 3-%d: all use slide 2 as reference

For each slide:

1. Open the prompt file slide_XX_prompt.txt
2. Follow its REFERENCE CHAIN section
3. Paste the RAW PROMPT section into the image generation tool
4. Save the result as slide_XX_images/%s

## After all slides are generated

    paperdeck import-images %s
    paperdeck assemble %s

Import reports which slides are still missing; fill the gaps and re-import at
any time. Assembly proceeds with placeholders for missing slides.
`, total, total, total, ExpectedImageName, projectKey, projectKey)

	path := filepath.Join(promptsDir, InstructionsFilename)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "export", "write instructions", path, err)
	}
	return nil
}

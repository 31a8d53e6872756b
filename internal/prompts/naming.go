package prompts

import (
	"fmt"
	"regexp"
	"strconv"
)

// The exporter establishes the naming convention every downstream artifact
// consumer relies on. The two-digit, 1-based slide index is the sole
// correlation key between a Section and its on-disk artifacts; nothing is
// ever correlated by directory listing order.
const (
	// ExpectedImageName is the filename whose presence marks a slide resolved.
	ExpectedImageName = "generated.png"
	// InstructionsFilename documents the manual generation workflow per run.
	InstructionsFilename = "INSTRUCTIONS.md"
)

// AlternateImageNames are accepted in place of ExpectedImageName when
// importing, in priority order.
var AlternateImageNames = []string{
	"generated.jpg",
	"generated.jpeg",
	"slide.png",
	"slide.jpg",
	"output.png",
}

var slideDirPattern = regexp.MustCompile(`^slide_(\d{2})_images$`)

// SlideDirName returns the image subdirectory name for a 1-based slide index.
func SlideDirName(index int) string {
	return fmt.Sprintf("slide_%02d_images", index)
}

// PromptFilename returns the prompt artifact name for a 1-based slide index.
func PromptFilename(index int) string {
	return fmt.Sprintf("slide_%02d_prompt.txt", index)
}

// ParseSlideDir extracts the slide index from an image subdirectory name.
// Returns false for entries outside the convention so callers can warn about
// them instead of guessing.
func ParseSlideDir(name string) (int, bool) {
	match := slideDirPattern.FindStringSubmatch(name)
	if match == nil {
		return 0, false
	}
	index, err := strconv.Atoi(match[1])
	if err != nil || index < 1 {
		return 0, false
	}
	return index, true
}

package narrative

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"paperdeck/internal/services"
)

// Profile describes one speaker-note voice. The system prompt carries the
// entire persona; slide content arrives in the user message.
type Profile struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	SystemPrompt string `yaml:"system_prompt"`
}

const brunoSystemPrompt = `You are Bruno, a warm and slightly theatrical lecturer who loves his subject.
Rewrite the provided slide notes as spoken narration in Bruno's voice: conversational,
enthusiastic, with the occasional rhetorical question to keep the room engaged.
Speak directly to the audience. Cover every talking point you are given; expand on
each one rather than dropping or compressing any. Define key terms in plain words
the first time they come up. Use the transition hint to hand off to the next slide.
Return only the narration text, no headings or markdown.`

const genericSystemPrompt = `You write clear, professional speaker notes for presentation slides.
Rewrite the provided slide notes as flowing spoken narration. Keep a neutral,
confident tone. Cover every talking point you are given without dropping or
compressing any. Briefly define key terms the first time they appear. Use the
transition hint to lead into the next slide. Return only the narration text,
no headings or markdown.`

var builtinProfiles = map[string]Profile{
	"bruno": {
		Name:         "bruno",
		Description:  "warm, theatrical lecturer voice",
		SystemPrompt: brunoSystemPrompt,
	},
	"generic": {
		Name:         "generic",
		Description:  "neutral professional narration",
		SystemPrompt: genericSystemPrompt,
	},
}

// Catalog resolves style names to profiles, merging user-defined profiles over
// the built-in set. Built-in names cannot be shadowed.
type Catalog struct {
	profiles map[string]Profile
}

// LoadCatalog builds the profile catalog. When stylesFile is empty only the
// built-in profiles are available.
func LoadCatalog(stylesFile string) (*Catalog, error) {
	catalog := &Catalog{profiles: make(map[string]Profile, len(builtinProfiles))}
	for name, profile := range builtinProfiles {
		catalog.profiles[name] = profile
	}
	if strings.TrimSpace(stylesFile) == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(stylesFile)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "narrative", "load styles", stylesFile, err)
	}
	var doc struct {
		Styles []Profile `yaml:"styles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "narrative", "parse styles", stylesFile, err)
	}
	for _, profile := range doc.Styles {
		name := strings.ToLower(strings.TrimSpace(profile.Name))
		if name == "" {
			return nil, services.Wrap(services.ErrConfiguration, "narrative", "parse styles", "style entry missing name", nil)
		}
		if _, builtin := builtinProfiles[name]; builtin {
			return nil, services.Wrap(services.ErrConfiguration, "narrative", "parse styles",
				fmt.Sprintf("style %q shadows a built-in profile", name), nil)
		}
		if strings.TrimSpace(profile.SystemPrompt) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "narrative", "parse styles",
				fmt.Sprintf("style %q has no system_prompt", name), nil)
		}
		profile.Name = name
		catalog.profiles[name] = profile
	}
	return catalog, nil
}

// Lookup resolves a style name. Unknown names list the available profiles in
// the error so a typo is quick to fix.
func (c *Catalog) Lookup(name string) (Profile, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if profile, ok := c.profiles[normalized]; ok {
		return profile, nil
	}
	return Profile{}, services.Wrap(services.ErrValidation, "narrative", "lookup style",
		fmt.Sprintf("unknown style %q (available: %s)", name, strings.Join(c.Names(), ", ")), nil)
}

// Names returns the available profile names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

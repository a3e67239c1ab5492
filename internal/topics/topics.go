// Package topics holds the canonical topic catalog and the
// normalization table that maps inconsistent stored topic spellings to
// canonical slugs. It is lookup data, not business logic.
package topics

import (
	"math/rand"
	"sort"
	"strings"
)

// Info describes a canonical topic for display purposes.
type Info struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var catalog = map[string]Info{
	"indian_history":  {Slug: "indian_history", Name: "Indian History", Description: "Freedom fighters, ancient India, empires and kingdoms", Icon: "🇮🇳"},
	"world_history":   {Slug: "world_history", Name: "World History", Description: "World wars, ancient civilizations, famous leaders", Icon: "🌍"},
	"science_nature":  {Slug: "science_nature", Name: "Science & Nature", Description: "Animals, plants, human body, space", Icon: "🔬"},
	"geography":       {Slug: "geography", Name: "Geography", Description: "Countries, capitals, rivers, mountains", Icon: "🗺️"},
	"space_astronomy": {Slug: "space_astronomy", Name: "Space & Astronomy", Description: "Planets, stars, ISRO missions, astronauts", Icon: "🚀"},
	"sports":          {Slug: "sports", Name: "Sports", Description: "Cricket, Olympics, football, famous players", Icon: "🏏"},
	"technology":      {Slug: "technology", Name: "Technology", Description: "Computers, internet, inventions, gadgets", Icon: "💻"},
	"mathematics":     {Slug: "mathematics", Name: "Mathematics", Description: "Fun math puzzles and number facts", Icon: "🔢"},
	"indian_culture":  {Slug: "indian_culture", Name: "Indian Culture", Description: "Festivals, traditions, classical arts, dance", Icon: "🪔"},
	"environment":     {Slug: "environment", Name: "Environment", Description: "Climate, pollution, conservation, wildlife", Icon: "🌳"},
	"famous_people":   {Slug: "famous_people", Name: "Famous People", Description: "Scientists, leaders, artists, inventors", Icon: "👨‍🔬"},
	"current_affairs": {Slug: "current_affairs", Name: "Current Affairs", Description: "Recent events, news, achievements", Icon: "📰"},
	"cyber_security":  {Slug: "cyber_security", Name: "Cyber Security", Description: "Online safety, passwords, privacy protection", Icon: "🔒"},
	"internet_safety": {Slug: "internet_safety", Name: "Internet Safety", Description: "Safe browsing, social media awareness, online privacy", Icon: "🛡️"},
}

// aliases maps legacy and generator-produced spellings onto catalog
// slugs. Stored questions use a wider vocabulary than the catalog, so
// lookups normalize before matching.
var aliases = map[string]string{
	// space variants
	"space":         "space_astronomy",
	"space_earth":   "space_astronomy",
	"space_india":   "space_astronomy",
	"space_physics": "space_astronomy",
	// science variants
	"human_body":      "science_nature",
	"human_organs":    "science_nature",
	"biology":         "science_nature",
	"chemistry":       "science_nature",
	"physics":         "science_nature",
	"photosynthesis":  "science_nature",
	"science_general": "science_nature",
	"science_history": "science_nature",
	"science_india":   "science_nature",
	// nature and environment variants
	"nature":        "environment",
	"plants":        "environment",
	"plants_india":  "environment",
	"earth_science": "geography",
	// sports variants
	"cricket":    "sports",
	"football":   "sports",
	"kabaddi":    "sports",
	"olympics":   "sports",
	"hockey":     "sports",
	"badminton":  "sports",
	"tennis":     "sports",
	"swimming":   "sports",
	"athletics":  "sports",
	"chess":      "sports",
	"volleyball": "sports",
	"wrestling":  "sports",
	// technology variants
	"computers":           "technology",
	"internet":            "technology",
	"gadgets":             "technology",
	"electricity_magnets": "technology",
	// cyber safety variants
	"cybersecurity":      "cyber_security",
	"online_safety":      "internet_safety",
	"internet_awareness": "internet_safety",
}

// Normalize maps an arbitrary topic spelling to its canonical slug.
// Hyphens and spaces become underscores before the alias table is
// consulted. Unknown slugs pass through unchanged.
func Normalize(slug string) string {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if canonical, ok := aliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// Known reports whether slug (after normalization) is a catalog topic.
func Known(slug string) bool {
	_, ok := catalog[Normalize(slug)]
	return ok
}

// Lookup returns catalog metadata for slug after normalization.
func Lookup(slug string) (Info, bool) {
	info, ok := catalog[Normalize(slug)]
	return info, ok
}

// Slugs returns the canonical topic slugs in stable order.
func Slugs() []string {
	slugs := make([]string, 0, len(catalog))
	for slug := range catalog {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// All returns catalog entries in stable slug order.
func All() []Info {
	slugs := Slugs()
	infos := make([]Info, 0, len(slugs))
	for _, slug := range slugs {
		infos = append(infos, catalog[slug])
	}
	return infos
}

// Random picks a uniformly random canonical slug.
func Random(rnd *rand.Rand) string {
	slugs := Slugs()
	return slugs[rnd.Intn(len(slugs))]
}

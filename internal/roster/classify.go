package roster

import (
	"strings"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

// Only the first occurrence of each spelling is collapsed.
var synonyms = []struct{ from, to string }{
	{"node.js", "nodejs"},
	{"node js", "nodejs"},
	{"reactjs", "react"},
	{"react.js", "react"},
	{"react js", "react"},
}

var mobileMarkers = []string{"react native", "react-native", "flutter", "ios", "android", "native"}

// Trailing spaces keep "java " from matching javascript and "node "/"go "
// from matching longer words.
var backendMarkers = []string{
	"nodejs", "node ", "php", "python", "java ", "flask",
	"fastapi", "fast api", "go ", "golang", "nest", "express",
}

var frontendMarkers = []string{"next", "vue", "angular", "html", "css", "webflow"}

// Classify maps free-text skill tags to a category.
func Classify(skills string) engine.SkillCategory {
	s := normalize(skills)

	hasMobile := containsAny(s, mobileMarkers)
	hasBackend := containsAny(s, backendMarkers)
	hasFrontend := (strings.Contains(s, "react") &&
		!strings.Contains(s, "react native") &&
		!strings.Contains(s, "react-native")) ||
		containsAny(s, frontendMarkers)

	switch {
	case hasBackend && hasFrontend:
		return engine.SkillFullstack
	case hasBackend:
		return engine.SkillBackend
	case hasFrontend:
		return engine.SkillFrontend
	case hasMobile:
		return engine.SkillMobile
	case strings.Contains(s, "typescript") || strings.Contains(s, "javascript"):
		// general-purpose languages count as backend
		return engine.SkillBackend
	default:
		return engine.SkillBackend
	}
}

func normalize(skills string) string {
	s := strings.TrimSpace(strings.ToLower(skills))
	for _, syn := range synonyms {
		s = strings.Replace(s, syn.from, syn.to, 1)
	}
	return s
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

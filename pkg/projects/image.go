package projects

import (
	"slices"
	"strings"
)

const pexels = "https://images.pexels.com/photos/%s/pexels-photo-%s.jpeg?auto=compress&cs=tinysrgb&w=600"

func photo(id string) string {
	return strings.ReplaceAll(pexels, "%s", id)
}

var (
	fallbackImage = photo("574071")

	topicImages = []struct {
		topics []string
		image  string
	}{
		{[]string{"mobile", "react-native", "flutter", "android", "ios"}, photo("607812")},
		{[]string{"web", "frontend", "website"}, photo("11035380")},
		{[]string{"api", "backend", "server"}, photo("1181467")},
		{[]string{"ecommerce", "shopping"}, photo("230544")},
		{[]string{"dashboard", "analytics"}, photo("669615")},
	}

	languageImages = map[string]string{
		"javascript": photo("11035380"),
		"typescript": photo("4164418"),
		"python":     photo("1181467"),
		"react":      photo("11035471"),
		"vue":        photo("11035364"),
		"node.js":    photo("11035540"),
		"java":       photo("4164418"),
		"php":        photo("11035380"),
		"c#":         photo("4164418"),
		"go":         photo("11035540"),
		"rust":       photo("4164418"),
	}
)

// Image picks a cover image. Topic groups are tried in order before the
// primary language.
func Image(language string, topics []string) string {
	lower := make([]string, len(topics))
	for i, t := range topics {
		lower[i] = strings.ToLower(t)
	}
	for _, g := range topicImages {
		for _, t := range lower {
			if slices.Contains(g.topics, t) {
				return g.image
			}
		}
	}
	if img, ok := languageImages[strings.ToLower(language)]; ok {
		return img
	}
	return fallbackImage
}

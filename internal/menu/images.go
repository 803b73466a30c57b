package menu

import (
	"sort"
	"strings"
)

// defaultImages maps dish names to bundled display images.
var defaultImages = map[string]string{
	"margherita pizza":    "/images/dishes/margherita-pizza.jpg",
	"pepperoni pizza":     "/images/dishes/pepperoni-pizza.jpg",
	"pizza":               "/images/dishes/pizza.jpg",
	"cheeseburger":        "/images/dishes/cheeseburger.jpg",
	"burger":              "/images/dishes/burger.jpg",
	"french fries":        "/images/dishes/french-fries.jpg",
	"caesar salad":        "/images/dishes/caesar-salad.jpg",
	"salad":               "/images/dishes/salad.jpg",
	"pad thai":            "/images/dishes/pad-thai.jpg",
	"ramen":               "/images/dishes/ramen.jpg",
	"sushi":               "/images/dishes/sushi.jpg",
	"tacos":               "/images/dishes/tacos.jpg",
	"burrito":             "/images/dishes/burrito.jpg",
	"chicken wings":       "/images/dishes/chicken-wings.jpg",
	"spaghetti carbonara": "/images/dishes/spaghetti-carbonara.jpg",
	"pasta":               "/images/dishes/pasta.jpg",
	"tiramisu":            "/images/dishes/tiramisu.jpg",
	"chocolate cake":      "/images/dishes/chocolate-cake.jpg",
	"ice cream":           "/images/dishes/ice-cream.jpg",
	"lemonade":            "/images/dishes/lemonade.jpg",
	"iced coffee":         "/images/dishes/iced-coffee.jpg",
	"pho":                 "/images/dishes/pho.jpg",
	"butter chicken":      "/images/dishes/butter-chicken.jpg",
	"falafel wrap":        "/images/dishes/falafel-wrap.jpg",
	"grilled cheese":      "/images/dishes/grilled-cheese.jpg",
	"clam chowder":        "/images/dishes/clam-chowder.jpg",
	"fish and chips":      "/images/dishes/fish-and-chips.jpg",
	"pancakes":            "/images/dishes/pancakes.jpg",
	"breakfast burrito":   "/images/dishes/breakfast-burrito.jpg",
	"mango sticky rice":   "/images/dishes/mango-sticky-rice.jpg",
}

const minFuzzyLength = 4

// ImageResolver finds a display image by dish name: case-insensitive exact
// match first, then the longest table entry contained in the name, then an
// entry containing the name.
type ImageResolver struct {
	images map[string]string
	keys   []string
}

// NewImageResolver builds a resolver over table, or the bundled table when nil.
func NewImageResolver(table map[string]string) *ImageResolver {
	if table == nil {
		table = defaultImages
	}
	images := make(map[string]string, len(table))
	keys := make([]string, 0, len(table))
	for name, ref := range table {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || ref == "" {
			continue
		}
		images[key] = ref
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return &ImageResolver{images: images, keys: keys}
}

// Resolve returns the image for name, or false when nothing matches.
func (r *ImageResolver) Resolve(name string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}
	if ref, ok := r.images[needle]; ok {
		return ref, true
	}
	for _, key := range r.keys {
		if strings.Contains(needle, key) || (len(needle) >= minFuzzyLength && strings.Contains(key, needle)) {
			return r.images[key], true
		}
	}
	return "", false
}

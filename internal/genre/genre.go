// Package genre is the fixed registry of recommendation genres.
//
// Values are the stored form (lowercase, stable). Labels and Classes are
// display metadata carried through to clients untouched.
package genre

// Genre is one row of the registry.
type Genre struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Classes string `json:"classes"`
}

// DefaultClasses styles values that are no longer in the registry, e.g.
// records written before a genre was retired.
const DefaultClasses = "bg-zinc-700/50 text-zinc-300 border-zinc-600/30"

var all = []Genre{
	{Value: "action", Label: "Action", Classes: "bg-orange-500/15 text-orange-300 border-orange-500/20"},
	{Value: "animation", Label: "Animation", Classes: "bg-green-500/15 text-green-300 border-green-500/20"},
	{Value: "comedy", Label: "Comedy", Classes: "bg-yellow-500/15 text-yellow-300 border-yellow-500/20"},
	{Value: "documentary", Label: "Documentary", Classes: "bg-teal-500/15 text-teal-300 border-teal-500/20"},
	{Value: "drama", Label: "Drama", Classes: "bg-purple-500/15 text-purple-300 border-purple-500/20"},
	{Value: "fantasy", Label: "Fantasy", Classes: "bg-indigo-500/15 text-indigo-300 border-indigo-500/20"},
	{Value: "horror", Label: "Horror", Classes: "bg-red-500/15 text-red-300 border-red-500/20"},
	{Value: "romance", Label: "Romance", Classes: "bg-pink-500/15 text-pink-300 border-pink-500/20"},
	{Value: "sci-fi", Label: "Sci-Fi", Classes: "bg-cyan-500/15 text-cyan-300 border-cyan-500/20"},
	{Value: "thriller", Label: "Thriller", Classes: "bg-rose-500/15 text-rose-300 border-rose-500/20"},
}

var byValue = func() map[string]Genre {
	m := make(map[string]Genre, len(all))
	for _, g := range all {
		m[g.Value] = g
	}
	return m
}()

// All returns the registry in display order. The slice is a copy.
func All() []Genre {
	out := make([]Genre, len(all))
	copy(out, all)
	return out
}

// Count is the number of registered genres.
func Count() int { return len(all) }

// Lookup finds a genre by its stored value. Matching is exact.
func Lookup(value string) (Genre, bool) {
	g, ok := byValue[value]
	return g, ok
}

// IsValid reports whether value is a registered genre.
func IsValid(value string) bool {
	_, ok := byValue[value]
	return ok
}

// ClassesFor returns the display classes for value, or DefaultClasses.
func ClassesFor(value string) string {
	if g, ok := byValue[value]; ok {
		return g.Classes
	}
	return DefaultClasses
}

package model

// Category is one entry of the fixed output taxonomy. The engine never
// emits a category outside this set.
type Category string

const (
	CategoryMusic     Category = "Music"
	CategoryComedy    Category = "Comedy"
	CategoryNightlife Category = "Nightlife"
	CategoryArts      Category = "Arts"
	CategoryFoodDrink Category = "Food & Drink"
	CategorySports    Category = "Sports"
	CategoryFilm      Category = "Film"
	CategoryTheatre   Category = "Theatre"
	CategoryCommunity Category = "Community"
	CategoryFamily    Category = "Family"
	CategoryOther     Category = "Other"
)

// Taxonomy lists every valid category in stable order. The order doubles
// as the tie-break when two categories score equally during mapping.
var Taxonomy = []Category{
	CategoryMusic,
	CategoryComedy,
	CategoryNightlife,
	CategoryArts,
	CategoryFoodDrink,
	CategorySports,
	CategoryFilm,
	CategoryTheatre,
	CategoryCommunity,
	CategoryFamily,
	CategoryOther,
}

// Valid reports whether c is part of the taxonomy.
func (c Category) Valid() bool {
	for _, t := range Taxonomy {
		if c == t {
			return true
		}
	}
	return false
}

// Package catalog holds the fixed mapping from countries to their valid
// cities. It is pure data: lookups never fail, an unknown country simply has
// no cities.
package catalog

import "gitlab.com/william.mucha/users-service/internal/model"

// countries lists the supported countries in display order.
var countries = []string{"Canada", "USA"}

// citiesByCountry maps each supported country to its valid cities.
var citiesByCountry = map[string][]string{
	"Canada": {"Ottawa", "Toronto"},
	"USA":    {"Las Vegas", "Chicago"},
}

// Countries returns the supported countries in a stable order.
func Countries() []string {
	out := make([]string, len(countries))
	copy(out, countries)
	return out
}

// CitiesFor returns the valid cities for the given country. An unrecognized
// or empty country yields an empty slice, never an error.
func CitiesFor(country string) []string {
	cities := citiesByCountry[country]
	out := make([]string, len(cities))
	copy(out, cities)
	return out
}

// Contains reports whether city is a valid choice for country.
func Contains(country, city string) bool {
	for _, c := range citiesByCountry[country] {
		if c == city {
			return true
		}
	}
	return false
}

// CountryOptions returns the country choices as label-value pairs for the
// select widget.
func CountryOptions() []model.Option {
	return asOptions(Countries())
}

// CityOptions returns the city choices for the given country as label-value
// pairs for the select widget.
func CityOptions(country string) []model.Option {
	return asOptions(CitiesFor(country))
}

func asOptions(values []string) []model.Option {
	options := make([]model.Option, 0, len(values))
	for _, v := range values {
		options = append(options, model.Option{Value: v, Label: v})
	}
	return options
}

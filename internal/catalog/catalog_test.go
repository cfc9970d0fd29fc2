package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/william.mucha/users-service/internal/model"
)

// TestCitiesFor checks that each supported country maps to its fixed city set
// and that no city leaks across the border.
func TestCitiesFor(t *testing.T) {
	assert.Equal(t, []string{"Ottawa", "Toronto"}, CitiesFor("Canada"))
	assert.Equal(t, []string{"Las Vegas", "Chicago"}, CitiesFor("USA"))
	assert.NotContains(t, CitiesFor("Canada"), "Chicago")
	assert.NotContains(t, CitiesFor("USA"), "Ottawa")
}

// TestCitiesForUnknownCountry checks that an unknown or unset country yields
// an empty set rather than an error.
func TestCitiesForUnknownCountry(t *testing.T) {
	assert.Empty(t, CitiesFor(""))
	assert.Empty(t, CitiesFor("France"))
}

// TestContains checks city membership for both countries.
func TestContains(t *testing.T) {
	assert.True(t, Contains("Canada", "Ottawa"))
	assert.True(t, Contains("USA", "Las Vegas"))
	assert.False(t, Contains("Canada", "Las Vegas"))
	assert.False(t, Contains("", "Ottawa"))
}

// TestCountryOptions checks that the select options carry identical value and
// label.
func TestCountryOptions(t *testing.T) {
	assert.Equal(t, []model.Option{
		{Value: "Canada", Label: "Canada"},
		{Value: "USA", Label: "USA"},
	}, CountryOptions())
}

// TestCityOptions checks the dynamic city options for a selected country.
func TestCityOptions(t *testing.T) {
	assert.Equal(t, []model.Option{
		{Value: "Ottawa", Label: "Ottawa"},
		{Value: "Toronto", Label: "Toronto"},
	}, CityOptions("Canada"))
	assert.Empty(t, CityOptions("Germany"))
}

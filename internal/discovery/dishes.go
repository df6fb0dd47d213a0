// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package discovery

import "github.com/tomtom215/dishatlas/internal/models"

// DefaultDishes is the built-in featured catalogue.
var DefaultDishes = []models.FeaturedDish{
	{Name: "Pizza", Country: "Italy", Latitude: 40.85, Longitude: 14.27, Era: "18th century", Blurb: "Neapolitan street flatbread that conquered the world."},
	{Name: "Sushi", Country: "Japan", Latitude: 35.68, Longitude: 139.77, Era: "1820s", Blurb: "Fermented fish preservation turned into Edo fast food."},
	{Name: "Tacos", Country: "Mexico", Latitude: 19.43, Longitude: -99.13, Era: "pre-Columbian", Blurb: "Maize tortillas folded around whatever the day offered."},
	{Name: "Ramen", Country: "Japan", Latitude: 35.44, Longitude: 139.65, Era: "1859", Blurb: "Chinese noodle soup reborn in Japanese port cities."},
	{Name: "Croissant", Country: "France", Latitude: 48.87, Longitude: 2.34, Era: "1839", Blurb: "A Viennese crescent roll laminated with French butter."},
	{Name: "Paella", Country: "Spain", Latitude: 39.47, Longitude: -0.38, Era: "18th century", Blurb: "Valencian field lunch cooked over orange wood."},
	{Name: "Pho", Country: "Vietnam", Latitude: 21.03, Longitude: 105.85, Era: "early 20th century", Blurb: "Rice noodle beef soup from the Red River delta."},
	{Name: "Pad Thai", Country: "Thailand", Latitude: 13.75, Longitude: 100.50, Era: "1930s", Blurb: "Stir-fried noodles promoted as a national dish."},
	{Name: "Biryani", Country: "India", Latitude: 17.39, Longitude: 78.49, Era: "16th century", Blurb: "Layered rice from Mughal kitchens."},
	{Name: "Dumplings", Country: "China", Latitude: 34.26, Longitude: 108.94, Era: "3rd century", Blurb: "Filled dough parcels from the Han heartland."},
	{Name: "Kimchi", Country: "South Korea", Latitude: 37.57, Longitude: 126.98, Era: "7th century", Blurb: "Fermented vegetables that changed with the chili pepper."},
	{Name: "Hummus", Country: "Lebanon", Latitude: 33.89, Longitude: 35.50, Era: "13th century", Blurb: "Chickpeas and tahini from the Levant."},
	{Name: "Falafel", Country: "Egypt", Latitude: 31.20, Longitude: 29.92, Era: "uncertain", Blurb: "Fried bean fritters claimed by half the Eastern Mediterranean."},
	{Name: "Couscous", Country: "Morocco", Latitude: 34.03, Longitude: -5.00, Era: "11th century", Blurb: "Steamed semolina of the Maghreb."},
	{Name: "Jollof Rice", Country: "Senegal", Latitude: 15.80, Longitude: -16.00, Era: "14th century", Blurb: "One-pot tomato rice from the Wolof empire."},
	{Name: "Injera", Country: "Ethiopia", Latitude: 9.03, Longitude: 38.74, Era: "c. 100 BCE", Blurb: "Sour teff flatbread that doubles as cutlery."},
	{Name: "Goulash", Country: "Hungary", Latitude: 47.50, Longitude: 19.04, Era: "9th century", Blurb: "Herdsmen's stew reddened by paprika."},
	{Name: "Pierogi", Country: "Poland", Latitude: 50.06, Longitude: 19.94, Era: "13th century", Blurb: "Half-moon dumplings of Central Europe."},
	{Name: "Fish and Chips", Country: "United Kingdom", Latitude: 51.51, Longitude: -0.06, Era: "1860s", Blurb: "Sephardic fried fish meets the Lancashire chip."},
	{Name: "Hamburger", Country: "United States", Latitude: 41.31, Longitude: -72.92, Era: "1900", Blurb: "A Hamburg steak pressed between bread."},
	{Name: "Poutine", Country: "Canada", Latitude: 45.88, Longitude: -72.48, Era: "1950s", Blurb: "Fries, curds and gravy from rural Quebec."},
	{Name: "Ceviche", Country: "Peru", Latitude: -12.05, Longitude: -77.04, Era: "c. 2000 years ago", Blurb: "Raw fish cured in citrus on the Pacific coast."},
	{Name: "Feijoada", Country: "Brazil", Latitude: -22.91, Longitude: -43.17, Era: "19th century", Blurb: "Black bean and pork stew of Rio."},
	{Name: "Empanadas", Country: "Argentina", Latitude: -34.60, Longitude: -58.38, Era: "16th century", Blurb: "Iberian hand pies adopted across South America."},
	{Name: "Pavlova", Country: "New Zealand", Latitude: -41.29, Longitude: 174.78, Era: "1920s", Blurb: "Meringue named for a touring ballerina."},
}

// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package narrative

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/dishatlas/internal/journey"
	"github.com/tomtom215/dishatlas/internal/models"
)

type staticEntry struct {
	dish    string
	summary string
	steps   []journey.Step
}

func located(year, title, description string, lat, lon float64) journey.Step {
	s := journey.NewLocatedStep(year, title, lat, lon)
	s.Description = description
	return s
}

func worldwide(year, title, description string) journey.Step {
	s := journey.NewGlobalStep(year, title)
	s.Description = description
	return s
}

// staticCatalogue is served when no model is configured or every model failed.
var staticCatalogue = map[string]staticEntry{
	"pizza": {
		dish:    "Pizza",
		summary: "Flatbreads topped with whatever was at hand became a Neapolitan street food, then travelled with Italian emigrants to become one of the most eaten dishes on earth.",
		steps: []journey.Step{
			located("997", "Picea in Gaeta", "A Latin document from Gaeta records a rent payment in 'picea', the first written trace of the word.", 41.21, 13.57),
			located("1738", "Port'Alba opens", "Pizzerias selling to the Neapolitan poor appear around Port'Alba.", 40.85, 14.25),
			located("1889", "Pizza Margherita", "Raffaele Esposito bakes a tomato, mozzarella and basil pizza for Queen Margherita.", 40.84, 14.25),
			located("1905", "Lombardi's, New York", "Gennaro Lombardi receives a licence to sell pizza in Little Italy.", 40.72, -73.99),
			located("1943", "Deep dish in Chicago", "Pizzeria Uno serves a thick, high-rimmed pie.", 41.89, -87.63),
			located("1958", "Pizza Hut, Wichita", "Two brothers open a pizza parlour that grows into a global chain.", 37.69, -97.34),
			worldwide("2017", "UNESCO recognition", "The art of the Neapolitan pizzaiuolo is inscribed as intangible cultural heritage."),
		},
	},
	"sushi": {
		dish:    "Sushi",
		summary: "A method of preserving fish in fermenting rice spread from Southeast Asia to Japan, where vinegar and speed turned it into the hand-pressed nigiri served worldwide today.",
		steps: []journey.Step{
			located("4th century BCE", "Fermented fish in rice", "River communities of the Mekong basin pack fish in rice to preserve it.", 20.0, 100.5),
			located("8th century", "Narezushi in Nara", "Fermented fish and rice is paid as tax at the Nara court.", 34.68, 135.80),
			located("1600s", "Hayazushi", "Cooks in Osaka add vinegar to rice so sushi no longer needs months to ferment.", 34.69, 135.50),
			located("1820s", "Nigiri in Edo", "Hanaya Yohei sells hand-pressed fish on rice from a stall in Edo.", 35.68, 139.77),
			located("1966", "Kawafuku, Los Angeles", "The first sushi bar in the United States opens in Little Tokyo.", 34.05, -118.24),
			located("1974", "The California roll", "Inside-out rolls with avocado take hold on the North American west coast.", 49.28, -123.12),
			worldwide("2000s", "Conveyor belts everywhere", "Kaiten sushi chains carry the dish into malls around the world."),
		},
	},
	"tacos": {
		dish:    "Tacos",
		summary: "Maize tortillas wrapped around fillings fed the Valley of Mexico for millennia; silver miners gave the taco its name and migrants carried it north.",
		steps: []journey.Step{
			located("500 BCE", "Nixtamal tortillas", "Mesoamerican cooks treat maize with lime and press it into tortillas.", 19.43, -99.13),
			located("1520", "A feast in Coyoacán", "Bernal Díaz del Castillo describes a meal of tortillas wrapped around pork.", 19.35, -99.16),
			located("late 19th century", "Miners' tacos", "Silver miners name small paper charges 'tacos', and the word passes to the food.", 21.02, -101.26),
			located("1930s", "Al pastor", "Lebanese immigrants in Puebla roast spit-cooked meat that becomes tacos al pastor.", 19.04, -98.20),
			located("1962", "Taco Bell, Downey", "A hard-shell taco chain opens in Southern California.", 33.94, -118.13),
			located("2008", "Korean tacos", "Food trucks in Los Angeles fold Korean barbecue into tortillas.", 34.05, -118.24),
		},
	},
	"ramen": {
		dish:    "Ramen",
		summary: "Chinese wheat noodles in broth arrived with port-city migrants, became a Tokyo working-class staple and, freeze-dried, one of the most widely eaten foods in the world.",
		steps: []journey.Step{
			located("17th century", "Noodles in Mito", "Tokugawa Mitsukuni is said to be the first Japanese to eat Chinese noodles.", 36.37, 140.47),
			located("1859", "Yokohama Chinatown", "Chinese traders settle in the newly opened port and sell noodle soup.", 35.44, 139.65),
			located("1910", "Rairaiken, Asakusa", "The first shop dedicated to Chinese-style noodles opens in Tokyo.", 35.71, 139.80),
			located("1955", "Sapporo miso ramen", "A Sapporo cook adds miso to the broth.", 43.06, 141.35),
			located("1958", "Instant noodles", "Momofuku Ando sells flash-fried Chicken Ramen from Ikeda.", 34.82, 135.43),
			located("1971", "Cup Noodles", "Nissin packs instant ramen in a foam cup.", 34.69, 135.50),
			located("2004", "Momofuku Noodle Bar", "A ramen bar in the East Village starts a North American ramen boom.", 40.73, -73.98),
		},
	},
	"croissant": {
		dish:    "Croissant",
		summary: "The Viennese kipferl crossed to Paris with an Austrian baker and was reinvented with laminated butter dough into the French croissant.",
		steps: []journey.Step{
			located("1683", "Kipferl in Vienna", "Crescent-shaped rolls are already baked in Vienna.", 48.21, 16.37),
			located("1839", "Boulangerie Viennoise", "August Zang opens a Viennese bakery in Paris.", 48.87, 2.34),
			located("1905", "Laminated dough", "French bakers switch to puff-pastry dough, giving the croissant its layers.", 48.86, 2.35),
			worldwide("1970s", "Frozen dough", "Industrial frozen croissants put the pastry in supermarkets everywhere."),
			located("1981", "The croissant craze", "Croissant shops spread across American cities.", 40.71, -74.00),
			located("2013", "The Cronut", "A croissant-doughnut hybrid draws queues in SoHo.", 40.72, -74.00),
		},
	},
	"paella": {
		dish:    "Paella",
		summary: "Rice brought to Valencia by the Moors met the wood fires of Albufera farmhands and became the wide-pan dish now cooked across Spain.",
		steps: []journey.Step{
			located("10th century", "Rice in al-Andalus", "Moorish irrigation brings rice cultivation to the Valencian coast.", 39.47, -0.38),
			located("18th century", "Albufera field lunches", "Farmhands cook rice with rabbit and snails in a flat pan over orange wood.", 39.28, -0.32),
			located("1840", "The word in print", "A Valencian newspaper uses 'paella' for the dish as well as the pan.", 39.47, -0.38),
			located("1960s", "Paella mixta", "Restaurants on the Costa del Sol mix seafood and meat for tourists.", 36.72, -4.42),
			worldwide("2021", "A global symbol", "Paella is among the most recognised Spanish dishes worldwide."),
		},
	},
}

// StaticHistory returns the curated history for dish, if one exists.
func StaticHistory(dish string) (*models.History, bool) {
	entry, ok := staticCatalogue[models.DishKey(dish)]
	if !ok {
		return nil, false
	}
	steps := make([]journey.Step, len(entry.steps))
	copy(steps, entry.steps)

	return &models.History{
		ID:          uuid.NewString(),
		Dish:        entry.dish,
		Summary:     entry.summary,
		Steps:       journey.NormalizeSteps(steps),
		Source:      models.SourceStatic,
		GeneratedAt: time.Now().UTC(),
	}, true
}

// StaticDishes lists the display names of every curated history.
func StaticDishes() []string {
	names := make([]string, 0, len(staticCatalogue))
	for _, entry := range staticCatalogue {
		names = append(names, entry.dish)
	}
	sort.Strings(names)
	return names
}

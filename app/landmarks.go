package app

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrUnknownCivilization = errors.New("unknown civilization")

// Landmarks lists the age-up choices of one civilization.
type Landmarks struct {
	Feudal []string
	Castle []string
	Empire []string
}

var (
	hreLandmarks = Landmarks{
		Feudal: []string{"Aachen Chapel", "Meinwerk Palace"},
		Castle: []string{"Burgrave Palace", "Regnitz Cathedral"},
		Empire: []string{"Elzbach Palace", "Palace of Swabia"},
	}
	abbasidWings = []string{"Culture", "Military", "Economic", "Trade"}
	ayyubidWings = []string{
		"Advancement (Culture)", "Logistics (Culture)",
		"Growth (Economy)", "Industry (Economy)",
		"Master Smiths (Military)", "Reinforcement (Military)",
		"Advisors (Trade)", "Bazaar (Trade)",
	}
)

var landmarksByCiv = map[string]Landmarks{
	"english": {
		Feudal: []string{"Abbey of Kings", "Council Hall"},
		Castle: []string{"King's Palace", "The White Tower"},
		Empire: []string{"Wynguard Palace", "Berkshire Palace"},
	},
	"french": {
		Feudal: []string{"School of Cavalry", "Chamber of Commerce"},
		Castle: []string{"Royal Institute", "Guild Hall"},
		Empire: []string{"College of Artillery", "Red Palace"},
	},
	"chinese": {
		Feudal: []string{"Imperial Academy", "Barbican of the Sun"},
		Castle: []string{"Astronomical Clocktower", "Imperial Palace"},
		Empire: []string{"Great Wall Gatehouse", "Spirit Way"},
	},
	"holy_roman_empire": hreLandmarks,
	"rus": {
		Feudal: []string{"Golden Gate", "Kremlin"},
		Castle: []string{"High Trade House", "Abbey of the Trinity"},
		Empire: []string{"Spasskaya Tower", "High Armory"},
	},
	"abbasid_dynasty": {Feudal: abbasidWings, Castle: abbasidWings, Empire: abbasidWings},
	"mongols": {
		Feudal: []string{"Deer Stones", "The Silver Tree"},
		Castle: []string{"Kurultai", "Steppe Redoubt"},
		Empire: []string{"White Stupa", "Khaganate Palace"},
	},
	"delhi_sultanate": {
		Feudal: []string{"Tower of Victory", "Dome of the Faith"},
		Castle: []string{"House of Learning", "Compound of the Defender"},
		Empire: []string{"Hisar Academy", "Palace of the Sultan"},
	},
	"ottomans": {
		Feudal: []string{"Twin Minaret Madrasa", "Istanbul Imperial Palace"},
		Castle: []string{"Mehmed Imperial Armory", "Seagate Castle"},
		Empire: []string{"Topkapi Palace", "Kilitbahir Fortress"},
	},
	"malians": {
		Feudal: []string{"Mansa Quarry", "Sahara Trade Network"},
		Castle: []string{"Grand Fulani Corral", "Griot's Hut"},
		Empire: []string{"Fort of Mansa Musa", "University of Sankore"},
	},
	"japanese": {
		Feudal: []string{"Koka Township", "Kura Storehouse"},
		Castle: []string{"Floating Gate", "Temple of Equality"},
		Empire: []string{"Tanegashima Gunsmith", "Castle of the Crow"},
	},
	"order_of_the_dragon": hreLandmarks,
	"zhu_xis_legacy": {
		Feudal: []string{"Meditation Gardens", "Jiangnan Tower"},
		Castle: []string{"Mount Lu Academy", "Shaolin Monastery"},
		Empire: []string{"Zhu Xi's Library", "Temple of the Sun"},
	},
	"ayyubids": {Feudal: ayyubidWings, Castle: ayyubidWings, Empire: ayyubidWings},
	"byzantines": {
		Feudal: []string{"Grand Winery", "Imperial Hippodrome"},
		Castle: []string{"Cistern of the First Hill", "Golden Horn Tower"},
		Empire: []string{"Foreign Engineering Company", "Palatine School"},
	},
	"jeanne_d_arc": {
		Feudal: []string{"School of Cavalry", "Chamber of Commerce"},
		Castle: []string{"Guild Hall", "Royal Institute"},
		Empire: []string{"Red Palace", "College of Artillery"},
	},
}

// LandmarksFor looks up a civilization key as sent by aoe4world.
func LandmarksFor(civ string) (Landmarks, error) {
	l, ok := landmarksByCiv[civ]
	if !ok {
		return Landmarks{}, fmt.Errorf("%w: %q", ErrUnknownCivilization, civ)
	}
	return l, nil
}

// Civilizations returns every known key, sorted.
func Civilizations() []string {
	out := make([]string, 0, len(landmarksByCiv))
	for civ := range landmarksByCiv {
		out = append(out, civ)
	}
	sort.Strings(out)
	return out
}

// CivDisplayName turns "holy_roman_empire" into "Holy Roman Empire".
func CivDisplayName(civ string) string {
	// a Caser keeps state, so one per call
	return cases.Title(language.English).String(strings.ReplaceAll(civ, "_", " "))
}

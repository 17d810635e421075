// Package travel estimates distance, transport mode and CO2 footprint
// between the user's home city and an event city. It is the lookup
// collaborator consumed by the planner when scoring itineraries.
package travel

import (
	"math"
	"strings"
)

// Coords is a latitude/longitude pair.
type Coords struct {
	Lat float64
	Lng float64
}

// Info describes one trip between two known cities.
type Info struct {
	DistanceKm    float64 `json:"distance_km"`
	TransportMode string  `json:"transport_mode"`
	CO2KgPp       float64 `json:"co2_kg_pp"`
}

// cityCoords covers the launch cities; unknown cities resolve to no travel
// info and the planner scores the itinerary without travel penalties.
var cityCoords = map[string]Coords{
	"lisbon":    {Lat: 38.709, Lng: -9.133},
	"berlin":    {Lat: 52.52, Lng: 13.405},
	"paris":     {Lat: 48.8566, Lng: 2.3522},
	"london":    {Lat: 51.5074, Lng: -0.1278},
	"madrid":    {Lat: 40.4168, Lng: -3.7038},
	"rome":      {Lat: 41.9028, Lng: 12.4964},
	"amsterdam": {Lat: 52.3676, Lng: 4.9041},
}

// co2Factors is kg CO2 per km per person by transport mode.
var co2Factors = map[string]float64{
	"air":  0.15,
	"rail": 0.04,
	"car":  0.12,
	"bus":  0.06,
}

const earthRadiusKm = 6371.0

// CityCoords returns the coordinates for a city name, case-insensitive.
func CityCoords(city string) (Coords, bool) {
	c, ok := cityCoords[strings.ToLower(city)]
	return c, ok
}

// Haversine returns the great-circle distance between two points in km,
// rounded to one decimal.
func Haversine(a, b Coords) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusKm*c*10) / 10
}

// EstimateMode guesses the likely transport mode for a distance.
func EstimateMode(distanceKm float64) string {
	switch {
	case distanceKm > 1000:
		return "air"
	case distanceKm > 300:
		return "rail"
	case distanceKm > 100:
		return "car"
	default:
		return "rail"
	}
}

// CO2 returns the emission estimate in kg per person, rounded to two
// decimals. Unknown modes use the air factor.
func CO2(distanceKm float64, mode string) float64 {
	factor, ok := co2Factors[mode]
	if !ok {
		factor = co2Factors["air"]
	}
	return math.Round(distanceKm*factor*100) / 100
}

// Lookup returns the travel info between two cities, or false when either
// city is unknown.
func Lookup(fromCity, toCity string) (Info, bool) {
	from, okFrom := CityCoords(fromCity)
	to, okTo := CityCoords(toCity)
	if !okFrom || !okTo {
		return Info{}, false
	}
	distance := Haversine(from, to)
	mode := EstimateMode(distance)
	return Info{
		DistanceKm:    distance,
		TransportMode: mode,
		CO2KgPp:       CO2(distance, mode),
	}, true
}

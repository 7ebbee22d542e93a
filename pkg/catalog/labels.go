package catalog

import (
	"sort"
	"strings"

	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

// Label is the human-facing description of a category.
type Label struct {
	Name        string
	URL         string
	Description string
}

// labels maps the CelesTrak group names the catalog is usually built from to
// display labels.
var labels = map[string]Label{
	"amateur":     {Name: "Amateur Radio"},
	"argos":       {"ARGOS", "http://www.noaasis.noaa.gov/ARGOS", "ARGOS Data Collection System"},
	"beidou":      {"Beidou", "http://en.beidou.gov.cn", "Beidou navigation system"},
	"cubesat":     {"CubeSat", "http://www.cubesat.org/index.php/about-us", "CubeSat research"},
	"dmc":         {"DMC", "https://en.wikipedia.org/wiki/Disaster_Monitoring_Constellation", "Disaster Monitoring Constellation"},
	"education":   {Name: "Education"},
	"engineering": {Name: "Engineering"},
	"galileo":     {"Galileo", "https://en.wikipedia.org/wiki/Galileo_(satellite_navigation)", "Galileo navigation system"},
	"geo":         {"Geostationary", "https://en.wikipedia.org/wiki/Geostationary_orbit", "Geostationary orbit"},
	"geodetic":    {Name: "Geodetic"},
	"glo-ops":     {"GLONASS", "https://en.wikipedia.org/wiki/GLONASS", "GLONASS navigation system"},
	"globalstar":  {"Globalstar", "https://en.wikipedia.org/wiki/Globalstar", "Globalstar communications"},
	"goes":        {"GOES", "https://en.wikipedia.org/wiki/Geostationary_Operational_Environmental_Satellite", "Geostationary Operational Environmental Satellites"},
	"gorizont":    {"Gorizont", "https://en.wikipedia.org/wiki/Gorizont", "Gorizont communications"},
	"gps-ops":     {"GPS", "https://en.wikipedia.org/wiki/Global_Positioning_System", "Global Positioning System"},
	"intelsat":    {"Intelsat", "https://en.wikipedia.org/wiki/Intelsat", "Intelsat communications"},
	"iridium":     {"Iridium", "https://en.wikipedia.org/wiki/Iridium_satellite_constellation", "Iridium satellite constellation"},
	"military":    {Name: "Miscellaneous Military"},
	"molniya":     {"Molniya", "https://en.wikipedia.org/wiki/Molniya_(satellite)", "Molniya military communications"},
	"musson":      {Name: "Russian LEO Navigation"},
	"noaa":        {"NOAA", "http://www.noaa.gov", "National Oceanic and Atmospheric Administration"},
	"nnss":        {"NNSS", "https://en.wikipedia.org/wiki/Transit_(satellite)", "Navy Navigation Satellite System"},
	"orbcomm":     {"Orbcomm", "https://en.wikipedia.org/wiki/Orbcomm", "Orbcomm communications"},
	"other":       {"Celestis", "https://en.wikipedia.org/wiki/Celestis", "Celestis space burial"},
	"other-comm":  {Name: "Other Communications"},
	"radar":       {Name: "Radar Calibration"},
	"raduga":      {"Raduga", "http://www.russianspaceweb.com/raduga.html", "Raduga communications"},
	"resource":    {Name: "Earth Resources"},
	"sarsat":      {Name: "Search & Rescue"},
	"sbas":        {"SBAS", "https://en.wikipedia.org/wiki/GNSS_augmentation#Satellite-based_augmentation_system", "Satellite-based augmentation system"},
	"science":     {Name: "Space & Earth Science"},
	"stations":    {Name: "Space Stations"},
	"tdrss":       {"TDRSS", "https://en.wikipedia.org/wiki/Tracking_and_Data_Relay_Satellite_System", "Tracking and Data Relay Satellite System"},
	"weather":     {Name: "Weather"},
	"x-comm":      {Name: "Experimental Communications"},
}

// LabelFor returns the label for a category, falling back to the raw name.
func LabelFor(set string) Label {
	if l, ok := labels[set]; ok {
		return l
	}
	return Label{Name: set}
}

// Filter is one entry of a category picker.
type Filter struct {
	Set string
	Label
	Count int
}

// Filters lists every category in f ordered by label, case-insensitively.
func Filters(f *File) []Filter {
	return buildFilters(f.Names(), func(set string) int { return len(f.Sets[set]) })
}

// CatalogFilters is Filters for an already built orbit catalog.
func CatalogFilters(c *orbit.Catalog) []Filter {
	return buildFilters(c.Sets(), c.Count)
}

func buildFilters(sets []string, count func(string) int) []Filter {
	out := make([]Filter, 0, len(sets))
	for _, set := range sets {
		out = append(out, Filter{Set: set, Label: LabelFor(set), Count: count(set)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

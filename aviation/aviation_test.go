// aviation/aviation_test.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/drakula-game/drakula/math"
	"github.com/drakula-game/drakula/rand"
	"github.com/drakula-game/drakula/util"
)

const testCSV = `"id","ident","type","name","latitude_deg","longitude_deg","elevation_ft","continent","iso_country","iso_region","municipality","scheduled_service","gps_code","iata_code","local_code","home_link","wikipedia_link","keywords"
3622,"KJFK","large_airport","John F Kennedy International Airport",40.639447,-73.779317,13,"NA","US","US-NY","New York","yes","KJFK","JFK","JFK","https://www.jfkairport.com/","",""
2434,"EGLL","large_airport","London Heathrow Airport",51.4706,-0.461941,83,"EU","GB","GB-ENG","London","yes","EGLL","LHR","","","",""
2513,"EHAM","large_airport","Amsterdam Airport Schiphol",52.308601,4.76389,-11,"EU","NL","NL-NH","Amsterdam","yes","EHAM","AMS","","","",""
9999,"XCLO","closed","Closed Field",10,10,100,"EU","XX","XX-1","Nowhere","no","","","","","",""
9998,"","small_airport","No Ident",11,11,,"EU","XX","XX-1","Nowhere","no","","","","","",""
4185,"LFPG","large_airport","Charles de Gaulle International Airport",49.012798,2.55,,"EU","FR","FR-IDF","Paris","yes","LFPG","CDG","","","",""
5001,"YSSY","large_airport","Sydney Kingsford Smith International Airport",-33.946098,151.177002,21,"OC","AU","AU-NSW","Sydney","yes","YSSY","SYD","","","",""
6001,"FAOR","medium_airport","O R Tambo International Airport",-26.1392,28.246,5558,"AF","ZA","ZA-GT","Johannesburg","no","FAOR","JNB","","","",""
`

func TestParseAirportsCSV(t *testing.T) {
	airports, err := ParseAirportsCSV(strings.NewReader(testCSV), "airports.csv")
	if err != nil {
		t.Fatal(err)
	}

	idents := util.MapSlice(airports, func(ap Airport) string { return ap.Ident })
	if want := []string{"KJFK", "EGLL", "EHAM", "LFPG", "YSSY", "FAOR"}; !slices.Equal(idents, want) {
		t.Fatalf("idents %v, expected %v", idents, want)
	}

	jfk := airports[0]
	if jfk.ID != 3622 || jfk.Type != "large_airport" || jfk.Elevation != 13 || jfk.Continent != "NA" ||
		jfk.ISOCountry != "US" || jfk.ISORegion != "US-NY" || jfk.Municipality != "New York" ||
		!jfk.ScheduledService || jfk.IATACode != "JFK" || jfk.HomeLink != "https://www.jfkairport.com/" {
		t.Errorf("KJFK parsed incorrectly: %+v", jfk)
	}
	if jfk.Latitude != 40.639447 || jfk.Longitude != -73.779317 {
		t.Errorf("KJFK location %f,%f", jfk.Latitude, jfk.Longitude)
	}

	if airports[2].Elevation != 0 {
		t.Errorf("below sea level elevation should clamp to 0, got %d", airports[2].Elevation)
	}
	if airports[3].Elevation != 0 {
		t.Errorf("missing elevation should be 0, got %d", airports[3].Elevation)
	}
	if airports[5].ScheduledService {
		t.Errorf("FAOR scheduled_service should be false")
	}

	if err := ValidateAirports(airports); err != nil {
		t.Errorf("parsed airports should validate: %v", err)
	}
}

func TestParseAirportsCSVErrors(t *testing.T) {
	_, err := ParseAirportsCSV(strings.NewReader("id,ident,type\n1,KJFK,large_airport\n"), "short.csv")
	if !errors.Is(err, ErrMissingCSVField) {
		t.Errorf("expected ErrMissingCSVField, got %v", err)
	}

	header := strings.Join(airportFields, ",")
	bad := header + "\n1,KJFK,large_airport,JFK,north,-73,13,NA,US,US-NY,New York,yes,KJFK,JFK,JFK,\n"
	_, err = ParseAirportsCSV(strings.NewReader(bad), "bad.csv")
	if !errors.Is(err, ErrInvalidCSVRecord) {
		t.Errorf("expected ErrInvalidCSVRecord, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "bad.csv:2") {
		t.Errorf("error should carry file and line: %v", err)
	}
}

func TestValidateAirports(t *testing.T) {
	good := Airport{ID: 1, Ident: "KJFK", Latitude: 40, Longitude: -73}
	for _, test := range []struct {
		name     string
		airports []Airport
		problems int
	}{
		{name: "valid", airports: []Airport{good}},
		{name: "latitude", airports: []Airport{{ID: 1, Ident: "A", Latitude: 91}}, problems: 1},
		{name: "longitude", airports: []Airport{{ID: 1, Ident: "A", Longitude: -181}}, problems: 1},
		{name: "id and ident", airports: []Airport{{ID: 0, Ident: " "}}, problems: 2},
		{name: "elevation", airports: []Airport{{ID: 1, Ident: "A", Elevation: -5}}, problems: 1},
		{name: "duplicate", airports: []Airport{good, {ID: 2, Ident: "kjfk"}}, problems: 1},
		{name: "accumulates", airports: []Airport{good, {ID: 2, Ident: "KJFK", Latitude: 100}}, problems: 2},
	} {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateAirports(test.airports)
			if test.problems == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidAirports) {
				t.Fatalf("expected ErrInvalidAirports, got %v", err)
			}
			// First line is the sentinel message, then one line per problem.
			if n := len(strings.Split(err.Error(), "\n")) - 1; n != test.problems {
				t.Errorf("got %d problems, expected %d: %v", n, test.problems, err)
			}
		})
	}
}

func TestPosition3D(t *testing.T) {
	ap := Airport{Latitude: 0, Longitude: 0, Elevation: 100}
	p := ap.Position3D(math.DefaultEllipsoid)
	if want := math.DefaultEllipsoid.Radius + 100; math.Abs(p[0]-want) > 1e-6 || math.Abs(p[1]) > 1e-6 {
		t.Errorf("got %v, expected x=%f", p, want)
	}
	if loc := ap.Location(); loc.Longitude() != 0 || loc.Latitude() != 0 {
		t.Errorf("Location = %v", loc)
	}
}

func TestCSVSource(t *testing.T) {
	airports, err := ParseAirportsCSV(strings.NewReader(testCSV), "airports.csv")
	if err != nil {
		t.Fatal(err)
	}

	src := NewCSVSource(airports, []string{"large_airport"})
	if src.Len() != 5 {
		t.Errorf("type filter kept %d airports, expected 5", src.Len())
	}
	if c := src.Continents(); !slices.Equal(c, []string{"EU", "NA", "OC"}) {
		t.Errorf("Continents = %v", c)
	}

	r := rand.MakeSeeded(1)
	eu, err := src.RandomAirports(r, 2, "eu")
	if err != nil {
		t.Fatal(err)
	}
	if len(eu) != 2 || eu[0].Ident == eu[1].Ident || eu[0].Continent != "EU" || eu[1].Continent != "EU" {
		t.Errorf("unexpected EU sample %v", eu)
	}

	if all, _ := src.RandomAirports(r, 10, ""); len(all) != 3 {
		t.Errorf("default continent should return all 3 EU airports, got %d", len(all))
	}
	if one, _ := src.RandomAirports(r, 0, "NA"); len(one) != 1 {
		t.Errorf("count 0 should return one airport, got %d", len(one))
	}

	if _, err := src.RandomAirports(r, 1, "AN"); !errors.Is(err, ErrUnknownContinent) {
		t.Errorf("expected ErrUnknownContinent, got %v", err)
	}

	session, err := SessionAirports(src, r, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(session) != 5 {
		t.Errorf("session has %d airports, expected 5", len(session))
	}
	if err := ValidateAirports(session); err != nil {
		t.Errorf("session airports invalid: %v", err)
	}

	// Same seed, same session.
	a, _ := SessionAirports(src, rand.MakeSeeded(7), 2, []string{"EU", "NA"})
	b, _ := SessionAirports(src, rand.MakeSeeded(7), 2, []string{"EU", "NA"})
	if !slices.Equal(a, b) {
		t.Errorf("sessions differ for the same seed")
	}
}

func TestLoadCSVSource(t *testing.T) {
	dir := t.TempDir()
	saved := util.CacheDir
	util.CacheDir = func() (string, error) { return filepath.Join(dir, "cache"), nil }
	defer func() { util.CacheDir = saved }()

	path := filepath.Join(dir, "airports.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := LoadCSVSource(path, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if src.Len() != 6 {
		t.Errorf("loaded %d airports, expected 6", src.Len())
	}

	// The second load is served from the cache.
	cached, err := LoadCSVSource(path, []string{"medium_airport"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cached.Len() != 1 {
		t.Errorf("cached load kept %d airports, expected 1", cached.Len())
	}

	if _, err := LoadCSVSource(filepath.Join(dir, "missing.csv"), nil, nil); err == nil {
		t.Errorf("expected error for missing file")
	}
}

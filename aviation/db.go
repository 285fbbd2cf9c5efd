// aviation/db.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// airportFields are the ourairports.com airports.csv columns we use, in
// the order the mungeCSV callback receives them.
var airportFields = []string{
	"id", "ident", "type", "name", "latitude_deg", "longitude_deg", "elevation_ft",
	"continent", "iso_country", "iso_region", "municipality", "scheduled_service",
	"gps_code", "iata_code", "local_code", "home_link",
}

// mungeCSV reads the CSV from r, looks up the requested fields in its
// header, and calls callback with just those fields for each record. An
// error from callback stops processing.
func mungeCSV(filename string, r io.Reader, fields []string, callback func([]string) error) error {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	// Find the index of each field the caller requested
	var fieldIndices []int
	if header, err := cr.Read(); err != nil {
		return fmt.Errorf("%s: error parsing CSV file: %w", filename, err)
	} else {
		for fi, f := range fields {
			for hi, h := range header {
				if f == strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
					fieldIndices = append(fieldIndices, hi)
					break
				}
			}
			if len(fieldIndices) != fi+1 {
				return fmt.Errorf("%s: %q: %w", filename, f, ErrMissingCSVField)
			}
		}
	}

	var strs []string
	for {
		if record, err := cr.Read(); err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("%s: error parsing CSV file: %w", filename, err)
		} else {
			for _, i := range fieldIndices {
				strs = append(strs, record[i])
			}
			if err := callback(strs); err != nil {
				line, _ := cr.FieldPos(0)
				return fmt.Errorf("%s:%d: %w", filename, line, err)
			}
			strs = strs[:0]
		}
	}
}

// ParseAirportsCSV parses an ourairports.com airports.csv file. Closed
// airports and rows without an ident are skipped. A missing elevation is
// taken as zero, as are elevations below sea level.
func ParseAirportsCSV(r io.Reader, filename string) ([]Airport, error) {
	var airports []Airport

	err := mungeCSV(filename, r, airportFields, func(s []string) error {
		ident := strings.TrimSpace(s[1])
		if ident == "" || s[2] == "closed" {
			return nil
		}

		id, err := strconv.Atoi(strings.TrimSpace(s[0]))
		if err != nil {
			return fmt.Errorf("%s: id %q: %w", ident, s[0], ErrInvalidCSVRecord)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(s[4]), 64)
		if err != nil {
			return fmt.Errorf("%s: latitude %q: %w", ident, s[4], ErrInvalidCSVRecord)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(s[5]), 64)
		if err != nil {
			return fmt.Errorf("%s: longitude %q: %w", ident, s[5], ErrInvalidCSVRecord)
		}

		elevation := 0
		if e := strings.TrimSpace(s[6]); e != "" && e != "NA" {
			v, err := strconv.ParseFloat(e, 64)
			if err != nil {
				return fmt.Errorf("%s: elevation %q: %w", ident, s[6], ErrInvalidCSVRecord)
			}
			elevation = max(0, int(v))
		}

		airports = append(airports, Airport{
			ID:               id,
			Ident:            ident,
			Type:             s[2],
			Name:             s[3],
			Latitude:         lat,
			Longitude:        lon,
			Elevation:        elevation,
			Continent:        s[7],
			ISOCountry:       s[8],
			ISORegion:        s[9],
			Municipality:     s[10],
			ScheduledService: strings.EqualFold(strings.TrimSpace(s[11]), "yes"),
			GPSCode:          s[12],
			IATACode:         s[13],
			LocalCode:        s[14],
			HomeLink:         s[15],
		})
		return nil
	})

	return airports, err
}

// Command fwicalc computes fire weather indices offline, using the same
// domain code as the sensor node.
//
// Usage:
//
//	go run ./cmd/fwicalc -t 25 -rh 50 -wind 10 -dmc 20 -dc 100
//	go run ./cmd/fwicalc -csv readings.csv -format json
//	go run ./cmd/fwicalc -csv counts.csv -raw
//
// CSV input needs a header with the columns temperature, humidity, wind,
// duff_moisture and drought. With -raw the last three are 12-bit ADC counts.
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/firesense/internal/domain"
)

var columns = []string{"temperature", "humidity", "wind", "duff_moisture", "drought"}

// result is one computed row.
type result struct {
	Sample  domain.SensorSample
	Indices domain.FireIndices
	Band    domain.RiskBand
	Alert   uint8
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fwicalc", flag.ContinueOnError)
	csvPath := fs.String("csv", "", "CSV file of samples (- for stdin)")
	raw := fs.Bool("raw", false, "treat wind, duff_moisture and drought as ADC counts")
	format := fs.String("format", "csv", "output format: csv or json")
	temp := fs.Float64("t", 25, "temperature in °C")
	rh := fs.Float64("rh", 50, "relative humidity in %")
	wind := fs.Float64("wind", 10, "wind speed")
	dmc := fs.Float64("dmc", 20, "duff moisture code")
	dc := fs.Float64("dc", 100, "drought code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var samples []domain.SensorSample
	if *csvPath != "" {
		in := io.Reader(os.Stdin)
		if *csvPath != "-" {
			f, err := os.Open(*csvPath)
			if err != nil {
				return fmt.Errorf("open: %w", err)
			}
			defer f.Close()
			in = f
		}
		var err error
		if samples, err = readSamples(in, *raw); err != nil {
			return fmt.Errorf("reading %s: %w", *csvPath, err)
		}
	} else {
		s := domain.SensorSample{Temperature: *temp, Humidity: *rh, Wind: *wind, DuffMoisture: *dmc, Drought: *dc}
		if *raw {
			if err := rescaleRaw(&s, "-wind", "-dmc", "-dc"); err != nil {
				return err
			}
		}
		samples = []domain.SensorSample{s}
	}

	results := make([]result, 0, len(samples))
	for _, s := range samples {
		results = append(results, compute(s))
	}

	switch *format {
	case "csv":
		return writeCSV(out, results)
	case "json":
		enc := json.NewEncoder(out)
		for _, r := range results {
			if err := enc.Encode(r.jsonRow()); err != nil {
				return fmt.Errorf("encode row: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown -format %q (allowed: csv, json)", *format)
	}
}

func compute(s domain.SensorSample) result {
	idx := domain.ComputeIndices(s)
	return result{
		Sample:  s,
		Indices: idx,
		Band:    domain.ClassifyFWI(idx.FWI),
		Alert:   uint8(domain.EncodeAlert(idx.FWI)),
	}
}

// rescaleRaw converts the wind, duff moisture and drought fields of s from
// ADC counts to their physical ranges. names label the fields in errors.
func rescaleRaw(s *domain.SensorSample, wind, dmc, dc string) error {
	fields := []struct {
		name string
		v    *float64
		max  float64
	}{
		{wind, &s.Wind, domain.WindMax},
		{dmc, &s.DuffMoisture, domain.DuffMoistureMax},
		{dc, &s.Drought, domain.DroughtMax},
	}
	for _, f := range fields {
		n, err := adcCount(*f.v)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.v = domain.Rescale(n, f.max)
	}
	return nil
}

func adcCount(v float64) (uint16, error) {
	if v != math.Trunc(v) || v < 0 || v > float64(domain.ADCFullScale) {
		return 0, fmt.Errorf("%v is not an ADC count between 0 and %v", v, domain.ADCFullScale)
	}
	return uint16(v), nil
}

func readSamples(r io.Reader, raw bool) ([]domain.SensorSample, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range columns {
		if _, ok := colIdx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	samples := make([]domain.SensorSample, 0, len(rows)-1)
	for n, row := range rows[1:] {
		var v [5]float64
		for i, c := range columns {
			f, err := strconv.ParseFloat(strings.TrimSpace(row[colIdx[c]]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", n+2, c, err)
			}
			v[i] = f
		}
		s := domain.SensorSample{Temperature: v[0], Humidity: v[1], Wind: v[2], DuffMoisture: v[3], Drought: v[4]}
		if raw {
			if err := rescaleRaw(&s, columns[2], columns[3], columns[4]); err != nil {
				return nil, fmt.Errorf("row %d %w", n+2, err)
			}
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// number encodes non-finite values as the strings "NaN", "+Inf" and "-Inf".
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return json.Marshal(f)
}

type jsonSample struct {
	Temperature  number `json:"temperature_c"`
	Humidity     number `json:"humidity_pct"`
	Wind         number `json:"wind"`
	DuffMoisture number `json:"duff_moisture"`
	Drought      number `json:"drought"`
}

type jsonIndices struct {
	MoistureContent number `json:"moisture_content"`
	FFMC            number `json:"ffmc"`
	ISI             number `json:"isi"`
	BUI             number `json:"bui"`
	FWI             number `json:"fwi"`
}

type jsonResult struct {
	Sample  jsonSample      `json:"sample"`
	Indices jsonIndices     `json:"indices"`
	Band    domain.RiskBand `json:"band"`
	Alert   uint8           `json:"alert"`
}

func (r result) jsonRow() jsonResult {
	return jsonResult{
		Sample: jsonSample{
			Temperature:  number(r.Sample.Temperature),
			Humidity:     number(r.Sample.Humidity),
			Wind:         number(r.Sample.Wind),
			DuffMoisture: number(r.Sample.DuffMoisture),
			Drought:      number(r.Sample.Drought),
		},
		Indices: jsonIndices{
			MoistureContent: number(r.Indices.MoistureContent),
			FFMC:            number(r.Indices.FFMC),
			ISI:             number(r.Indices.ISI),
			BUI:             number(r.Indices.BUI),
			FWI:             number(r.Indices.FWI),
		},
		Band:  r.Band,
		Alert: r.Alert,
	}
}

func writeCSV(w io.Writer, results []result) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, columns...), "ffmc", "isi", "bui", "fwi", "band", "alert")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		cw.Write([]string{ //nolint:errcheck // flushed and checked below
			ftoa(r.Sample.Temperature), ftoa(r.Sample.Humidity), ftoa(r.Sample.Wind),
			ftoa(r.Sample.DuffMoisture), ftoa(r.Sample.Drought),
			ftoa(r.Indices.FFMC), ftoa(r.Indices.ISI), ftoa(r.Indices.BUI), ftoa(r.Indices.FWI),
			r.Band.String(), strconv.Itoa(int(r.Alert)),
		})
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

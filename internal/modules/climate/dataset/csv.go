package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"climate-api/internal/modules/climate/types"
)

var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
}

// OpenSource opens a CSV table from a local path or an http(s) URL.
func OpenSource(ctx context.Context, client *http.Client, src string) (io.ReadCloser, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("build request %s: %w", src, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src, err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: unexpected status %s", src, resp.Status)
		}
		return resp.Body, nil
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	return f, nil
}

// ReadStations parses a station table with the columns
// station,name,latitude,longitude,elevation in any order. Other columns are ignored.
func ReadStations(r io.Reader) ([]types.Station, error) {
	tbl, err := newTable(r, "station", "name", "latitude", "longitude", "elevation")
	if err != nil {
		return nil, fmt.Errorf("stations: %w", err)
	}

	out := []types.Station{}
	for {
		rec, line, err := tbl.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("stations: %w", err)
		}
		var st types.Station
		st.ID = tbl.get(rec, "station")
		st.Name = tbl.get(rec, "name")
		if st.ID == "" {
			return nil, fmt.Errorf("stations line %d: empty station id", line)
		}
		if st.Latitude, err = parseFloat(tbl.get(rec, "latitude")); err != nil {
			return nil, fmt.Errorf("stations line %d: latitude: %w", line, err)
		}
		if st.Longitude, err = parseFloat(tbl.get(rec, "longitude")); err != nil {
			return nil, fmt.Errorf("stations line %d: longitude: %w", line, err)
		}
		if st.Elevation, err = parseFloat(tbl.get(rec, "elevation")); err != nil {
			return nil, fmt.Errorf("stations line %d: elevation: %w", line, err)
		}
		out = append(out, st)
	}
}

// ReadMeasurements parses a measurement table with the columns
// station,date,prcp,tobs in any order. An empty prcp cell is a null reading.
func ReadMeasurements(r io.Reader) ([]types.Measurement, error) {
	tbl, err := newTable(r, "station", "date", "prcp", "tobs")
	if err != nil {
		return nil, fmt.Errorf("measurements: %w", err)
	}

	out := []types.Measurement{}
	for {
		rec, line, err := tbl.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("measurements: %w", err)
		}
		var m types.Measurement
		m.StationID = tbl.get(rec, "station")
		if m.StationID == "" {
			return nil, fmt.Errorf("measurements line %d: empty station id", line)
		}
		if m.Date, err = NormalizeDate(tbl.get(rec, "date")); err != nil {
			return nil, fmt.Errorf("measurements line %d: %w", line, err)
		}
		if s := tbl.get(rec, "prcp"); s != "" && !strings.EqualFold(s, "nan") {
			p, err := parseFloat(s)
			if err != nil {
				return nil, fmt.Errorf("measurements line %d: prcp: %w", line, err)
			}
			m.Prcp = &p
		}
		if m.Tobs, err = parseFloat(tbl.get(rec, "tobs")); err != nil {
			return nil, fmt.Errorf("measurements line %d: tobs: %w", line, err)
		}
		out = append(out, m)
	}
}

// NormalizeDate converts the date spellings found in exported tables to YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

type table struct {
	r   *csv.Reader
	idx map[string]int
}

func newTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		idx[h] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return &table{r: cr, idx: idx}, nil
}

func (t *table) next() ([]string, int, error) {
	rec, err := t.r.Read()
	if err != nil {
		return nil, 0, err
	}
	line, _ := t.r.FieldPos(0)
	return rec, line, nil
}

func (t *table) get(rec []string, col string) string {
	return strings.TrimSpace(rec[t.idx[col]])
}

// parseFloat accepts finite values only; NaN and Inf would poison the
// aggregates and cannot be encoded as JSON.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return f, nil
}

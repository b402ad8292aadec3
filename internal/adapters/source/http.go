package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/okian/casewatch/internal/domain/model"
)

// Default HTTP source configuration constants.
const (
	defaultTimeout     = 10 * time.Second
	defaultNameField   = "country"
	defaultMetricField = "cases"
	maxErrorBody       = 512
)

// HTTPSource fetches a JSON array of objects from a URL, e.g.
// https://disease.sh/v3/covid-19/countries.
type HTTPSource struct {
	url             string
	client          *http.Client
	timeout         time.Duration
	nameField       string
	metricField     string
	secondaryFields []string
	metaFields      []string
}

// NewHTTPSource creates an HTTP source for url.
func NewHTTPSource(url string, opts ...Option) *HTTPSource {
	s := &HTTPSource{
		url:             url,
		client:          &http.Client{},
		timeout:         defaultTimeout,
		nameField:       defaultNameField,
		metricField:     defaultMetricField,
		secondaryFields: []string{"deaths", "recovered"},
		metaFields:      []string{"countryInfo"},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Fetch downloads and decodes the record array.
func (s *HTTPSource) Fetch(ctx context.Context) ([]model.Record, error) {
	const op = "source.http"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fetchErr(op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fetchErr(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fetchErr(op, fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	var raw []map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fetchErr(op, fmt.Errorf("%w: %w", ErrUnexpectedDoc, err))
	}

	records := make([]model.Record, 0, len(raw))
	for _, obj := range raw {
		records = append(records, s.decode(obj))
	}
	return records, nil
}

// decode maps one raw object to a record. Missing or invalid numeric values
// become model.MissingValue so validation can drop the record later.
func (s *HTTPSource) decode(obj map[string]json.RawMessage) model.Record {
	r := model.Record{Metric: model.MissingValue}

	if v, ok := obj[s.nameField]; ok {
		var name string
		if json.Unmarshal(v, &name) == nil {
			r.Name = name
		}
	}
	if v, ok := obj[s.metricField]; ok {
		r.Metric = parseCount(v)
	}
	if len(s.secondaryFields) > 0 {
		r.Fields = make(map[string]int64, len(s.secondaryFields))
		for _, f := range s.secondaryFields {
			if v, ok := obj[f]; ok {
				r.Fields[f] = parseCount(v)
			}
		}
	}
	for _, f := range s.metaFields {
		v, ok := obj[f]
		if !ok {
			continue
		}
		var meta any
		if json.Unmarshal(v, &meta) != nil {
			continue
		}
		if r.Meta == nil {
			r.Meta = make(map[string]any, len(s.metaFields))
		}
		r.Meta[f] = meta
	}
	return r
}

// parseCount reads a non-negative integer. Integral floats such as 1e6 are
// accepted; anything else yields model.MissingValue.
func parseCount(v json.RawMessage) int64 {
	var n json.Number
	if json.Unmarshal(v, &n) != nil {
		return model.MissingValue
	}
	if i, err := n.Int64(); err == nil {
		if i < 0 {
			return model.MissingValue
		}
		return i
	}
	f, err := n.Float64()
	if err != nil || f < 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return model.MissingValue
	}
	return int64(f)
}

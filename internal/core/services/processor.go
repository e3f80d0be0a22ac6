package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driving"
	"github.com/custodia-labs/heisync/internal/logger"
)

// Ensure Processor implements the interface.
var _ driving.DocumentProcessor = (*Processor)(nil)

// Processor decodes raw JSON:API documents into lookup structures.
// Undecodable input yields empty results.
type Processor struct{}

// NewProcessor creates a document processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Decode parses a raw document. Records are decoded one by one and a
// record that is not an object is skipped, so one bad record does not
// hide the rest.
func (p *Processor) Decode(raw string) (*domain.Document, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidDocument)
	}
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}

	doc := &domain.Document{Data: make([]domain.Record, 0, len(envelope.Data))}
	for i, data := range envelope.Data {
		var rec domain.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			logger.Warn("skipping record %d: %v", i, err)
			continue
		}
		doc.Data = append(doc.Data, rec)
	}
	return doc, nil
}

func (p *Processor) records(raw string) []domain.Record {
	doc, err := p.Decode(raw)
	if err != nil {
		logger.Debug("process document: %v", err)
		return nil
	}
	return doc.Data
}

// IDLabel returns every record's id and label, ordered by label in natural,
// case-insensitive order. Records with equal labels keep document order.
func (p *Processor) IDLabel(raw string) []domain.IDLabel {
	records := p.records(raw)
	out := make([]domain.IDLabel, 0, len(records))
	for i := range records {
		out = append(out, domain.IDLabel{ID: records[i].ID, Label: records[i].Label()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return naturalLess(out[i].Label, out[j].Label)
	})
	return out
}

// IDLinks returns the href of linkKey for every record; "" where absent.
func (p *Processor) IDLinks(raw, linkKey string) map[string]string {
	records := p.records(raw)
	out := make(map[string]string, len(records))
	for i := range records {
		out[records[i].ID] = records[i].Links[linkKey].Href
	}
	return out
}

// ToArray returns the records. With expand, every non-empty attribute value
// is normalised to sequence form.
func (p *Processor) ToArray(raw string, expand bool) []domain.Record {
	records := p.records(raw)
	if !expand {
		return records
	}
	for i := range records {
		records[i].Attributes = records[i].Attributes.Expanded()
	}
	return records
}

// Extract returns the expanded attributes of the record with id targetID,
// or an empty set if no record matches.
func (p *Processor) Extract(raw, targetID string) domain.Attributes {
	for _, rec := range p.ToArray(raw, true) {
		if rec.ID != targetID {
			continue
		}
		if rec.Attributes == nil {
			return domain.Attributes{}
		}
		return rec.Attributes
	}
	return domain.Attributes{}
}

// RecordKeys returns the union of attribute names across records, sorted.
func (p *Processor) RecordKeys(raw string) []string {
	seen := make(map[string]struct{})
	for _, rec := range p.records(raw) {
		for k := range rec.Attributes {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// naturalLess compares case-insensitively, ordering digit runs by value
// ("item2" before "item10").
func naturalLess(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	for a != "" && b != "" {
		if isDigit(a[0]) && isDigit(b[0]) {
			na, restA := digitRun(a)
			nb, restB := digitRun(b)
			na, nb = strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			a, b = restA, restB
			continue
		}
		ra, sizeA := utf8.DecodeRuneInString(a)
		rb, sizeB := utf8.DecodeRuneInString(b)
		if ra != rb {
			return ra < rb
		}
		a, b = a[sizeA:], b[sizeB:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digitRun(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

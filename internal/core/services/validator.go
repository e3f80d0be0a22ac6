package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driving"
	"github.com/custodia-labs/heisync/internal/logger"
)

// Ensure Validator implements the interface.
var _ driving.DocumentValidator = (*Validator)(nil)

// documentSchema is the minimal JSON:API shape: a data array of records
// that each carry a non-null type and id. Any scalar id is accepted.
const documentSchema = `{
	"type": "object",
	"required": ["data"],
	"properties": {
		"data": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["type", "id"],
				"properties": {
					"type": {"not": {"type": "null"}},
					"id": {"not": {"type": "null"}}
				}
			}
		}
	}
}`

// Validator checks fetched payloads against the JSON:API document schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the document schema.
func NewValidator() *Validator {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		// The schema is a constant.
		panic(fmt.Sprintf("compile document schema: %v", err))
	}
	return &Validator{schema: schema}
}

// Validate reports whether raw is a valid document and logs the first violation.
func (v *Validator) Validate(raw []byte) bool {
	if err := v.Check(raw); err != nil {
		logger.Warn("%v", err)
		return false
	}
	return true
}

// Check returns the first violation in document order, or nil.
// Document-level problems come before record-level ones, and records are
// reported lowest index first.
func (v *Validator) Check(raw []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: decode: %w", domain.ErrInvalidDocument, err)
	}
	if result.Valid() {
		return nil
	}

	violations := result.Errors()
	sort.SliceStable(violations, func(i, j int) bool {
		return recordIndex(violations[i].Field()) < recordIndex(violations[j].Field())
	})
	return fmt.Errorf("%w: %s", domain.ErrInvalidDocument, describe(violations[0]))
}

// describe renders a violation as a human-readable reason.
func describe(e gojsonschema.ResultError) string {
	field := e.Field()
	if idx := recordIndex(field); idx >= 0 {
		switch e.Type() {
		case "required":
			return fmt.Sprintf("record %d lacks %v", idx, e.Details()["property"])
		case "number_not":
			return fmt.Sprintf("record %d: %s is null", idx, field[strings.LastIndexByte(field, '.')+1:])
		}
		return fmt.Sprintf("record %d: %s", idx, e.Description())
	}
	if e.Type() == "required" {
		return fmt.Sprintf("document lacks %v", e.Details()["property"])
	}
	return fmt.Sprintf("%s: %s", field, e.Description())
}

// recordIndex extracts N from a "data.N..." field path, or -1.
func recordIndex(field string) int {
	rest, ok := strings.CutPrefix(field, "data.")
	if !ok {
		return -1
	}
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		rest = rest[:i]
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return -1
	}
	return n
}

package domain

import (
	"maps"
	"time"
)

// Field names with a dedicated meaning on Institution.
const (
	// FieldHEIID is the unique remote identifier of an institution.
	FieldHEIID = "hei_id"

	// FieldIndexKey records which index item an institution was imported from.
	FieldIndexKey = "index_key"

	// FieldLabel is the display name.
	FieldLabel = "label"
)

// InstitutionFields lists the local fields a remote attribute can be mapped to.
// FieldHEIID and FieldIndexKey are set on import and are not listed.
var InstitutionFields = []string{
	FieldLabel,
	"name",
	"abbreviation",
	"other_id",
	"country",
	"city",
	"website",
	"logo_url",
	"mobility_factsheet_url",
	"mailing_address",
	"street_address",
	"contact",
}

// EntityData is the payload an Institution is built from, keyed by local field name.
type EntityData map[string]AttrValue

// Institution is a locally persisted higher-education institution.
type Institution struct {
	// ID is the local identifier (UUID).
	ID string

	// HEIID is the unique remote identifier. No two institutions share it.
	HEIID string

	// IndexKey is the index item the institution was imported from.
	// Empty for manually entered institutions.
	IndexKey string

	// Label is the display name.
	Label string

	// Fields holds the remaining mapped values, keyed by local field name.
	Fields map[string]AttrValue

	// CreatedAt is when the institution was first saved.
	CreatedAt time.Time

	// UpdatedAt is when the institution was last saved.
	UpdatedAt time.Time
}

// NewInstitution builds an unsaved institution from entity data.
// The dedicated fields are lifted out of data; everything else lands in Fields.
func NewInstitution(id string, data EntityData) *Institution {
	inst := &Institution{
		ID:     id,
		Fields: make(map[string]AttrValue),
	}
	for name, value := range data {
		switch name {
		case FieldHEIID:
			inst.HEIID = value.Text()
		case FieldIndexKey:
			inst.IndexKey = value.Text()
		case FieldLabel:
			inst.Label = value.Text()
		default:
			inst.Fields[name] = value
		}
	}
	return inst
}

// Property returns the text of a field by name, including the dedicated ones.
func (i *Institution) Property(name string) (string, bool) {
	switch name {
	case "id":
		return i.ID, true
	case FieldHEIID:
		return i.HEIID, true
	case FieldIndexKey:
		return i.IndexKey, true
	case FieldLabel:
		return i.Label, true
	}
	v, ok := i.Fields[name]
	if !ok {
		return "", false
	}
	return v.Text(), true
}

// Matches reports whether every property equals the given value.
func (i *Institution) Matches(props map[string]string) bool {
	for name, want := range props {
		got, ok := i.Property(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Data returns the institution as entity data, dedicated fields included.
func (i *Institution) Data() EntityData {
	data := make(EntityData, len(i.Fields)+3)
	maps.Copy(data, i.Fields)
	if i.HEIID != "" {
		data[FieldHEIID] = Scalar(i.HEIID)
	}
	if i.IndexKey != "" {
		data[FieldIndexKey] = Scalar(i.IndexKey)
	}
	if i.Label != "" {
		data[FieldLabel] = Scalar(i.Label)
	}
	return data
}

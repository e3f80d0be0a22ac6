package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driven"
	"github.com/custodia-labs/heisync/internal/core/ports/driving"
	"github.com/custodia-labs/heisync/internal/logger"
)

// Ensure InstitutionManager implements the interface.
var _ driving.InstitutionManager = (*InstitutionManager)(nil)

// InstitutionManager looks up institutions by HEI ID and creates missing
// ones from the remote index. Lookup always precedes creation.
type InstitutionManager struct {
	store     driven.InstitutionStore
	cache     driving.DocumentCache
	processor driving.DocumentProcessor
	mapping   driving.FieldMappingService
	newID     func() string
}

// NewInstitutionManager creates a new institution manager.
func NewInstitutionManager(
	store driven.InstitutionStore,
	cache driving.DocumentCache,
	processor driving.DocumentProcessor,
	mapping driving.FieldMappingService,
) *InstitutionManager {
	return &InstitutionManager{
		store:     store,
		cache:     cache,
		processor: processor,
		mapping:   mapping,
		newID:     uuid.NewString,
	}
}

// GetInstitution returns the institutions holding heiID. If there are none
// and indexKey is set, the institution is created from that index item.
// Duplicates, should any exist, are all returned.
func (m *InstitutionManager) GetInstitution(
	ctx context.Context, heiID, indexKey string,
) ([]domain.Institution, error) {
	found, err := m.lookup(ctx, heiID)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		logger.Debug("institution %s: found %s", heiID, found[0].ID)
		return found, nil
	}
	if indexKey == "" {
		logger.Debug("institution %s: not found", heiID)
		return nil, nil
	}
	return m.CreateInstitution(ctx, indexKey, heiID)
}

// CreateInstitution imports one institution from the index item indexKey
// and returns it as persisted. Nothing is written if a precondition fails.
func (m *InstitutionManager) CreateInstitution(
	ctx context.Context, indexKey, heiID string,
) ([]domain.Institution, error) {
	item, err := m.check(ctx, indexKey, heiID)
	if err != nil {
		logger.Error("create institution %s: %v", heiID, err)
		return nil, err
	}
	return m.create(ctx, indexKey, heiID, item.attributes(heiID))
}

// CheckErrors runs the creation preconditions in order and returns the
// first failure, or nil. Configuration is checked before the network and
// the network before key lookups.
func (m *InstitutionManager) CheckErrors(ctx context.Context, indexKey, heiID string) error {
	_, err := m.check(ctx, indexKey, heiID)
	return err
}

// PrepareData renames remote attributes to local fields through the field
// map and records indexKey. Attributes without a mapping are dropped.
// When several attributes map to one field, the last in name order wins.
func (m *InstitutionManager) PrepareData(attrs domain.Attributes, indexKey string) domain.EntityData {
	fieldMap := m.mapping.FieldMap()
	data := make(domain.EntityData, len(fieldMap)+1)
	for _, remote := range attrs.Keys() {
		local, ok := fieldMap[remote]
		if !ok {
			continue
		}
		data[local] = attrs[remote]
	}
	data[domain.FieldIndexKey] = domain.Scalar(indexKey)
	return data
}

// ListIndex returns the index items with their list endpoints.
func (m *InstitutionManager) ListIndex(ctx context.Context, refresh bool) ([]driving.IndexEntry, error) {
	index, err := m.loadIndex(ctx, refresh)
	if err != nil {
		return nil, err
	}
	links := m.processor.IDLinks(index, domain.ListLinkKey)
	labels := m.processor.IDLabel(index)
	entries := make([]driving.IndexEntry, 0, len(labels))
	for _, l := range labels {
		entries = append(entries, driving.IndexEntry{ID: l.ID, Label: l.Label, Endpoint: links[l.ID]})
	}
	return entries, nil
}

// ListItems returns the institutions listed by an index item.
func (m *InstitutionManager) ListItems(ctx context.Context, indexKey string) ([]domain.IDLabel, error) {
	item, err := m.loadItem(ctx, indexKey)
	if err != nil {
		return nil, err
	}
	return m.processor.IDLabel(item), nil
}

// Preview returns the expanded remote attributes of one institution.
func (m *InstitutionManager) Preview(ctx context.Context, indexKey, heiID string) (domain.Attributes, error) {
	item, err := m.check(ctx, indexKey, heiID)
	if err != nil {
		return nil, err
	}
	return item.attributes(heiID), nil
}

// AvailableKeys returns the remote keys of an index item offered for mapping.
func (m *InstitutionManager) AvailableKeys(ctx context.Context, indexKey string) ([]string, error) {
	item, err := m.loadItem(ctx, indexKey)
	if err != nil {
		return nil, err
	}
	return m.mapping.RemoteKeys(m.processor.RecordKeys(item)), nil
}

// ImportIndex looks up or creates every institution of an index item.
// A failing institution does not stop the run; failures are collected.
func (m *InstitutionManager) ImportIndex(ctx context.Context, indexKey string) (*driving.ImportResult, error) {
	item, err := m.openItem(ctx, indexKey)
	if err != nil {
		return nil, err
	}
	items := m.processor.IDLabel(item.raw)

	logger.Section("Import " + indexKey)
	result := &driving.ImportResult{IndexKey: indexKey, Failed: make(map[string]error)}
	for _, entry := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		existing, err := m.lookup(ctx, entry.ID)
		if err != nil {
			result.Failed[entry.ID] = err
			continue
		}
		if len(existing) > 0 {
			result.Existing = append(result.Existing, entry.ID)
			continue
		}
		created, err := m.create(ctx, indexKey, entry.ID, item.attributes(entry.ID))
		switch {
		case err != nil:
			result.Failed[entry.ID] = err
		case len(created) == 0:
			result.Failed[entry.ID] = fmt.Errorf("%w: not found after save", domain.ErrNotFound)
		default:
			result.Created = append(result.Created, entry.ID)
		}
	}
	logger.Info("import %s: %d created, %d existing, %d failed",
		indexKey, len(result.Created), len(result.Existing), len(result.Failed))
	return result, nil
}

// ListLocal returns the locally stored institutions.
func (m *InstitutionManager) ListLocal(ctx context.Context) ([]domain.Institution, error) {
	return m.store.List(ctx)
}

func (m *InstitutionManager) lookup(ctx context.Context, heiID string) ([]domain.Institution, error) {
	found, err := m.store.LoadByProperties(ctx, map[string]string{domain.FieldHEIID: heiID})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup institution: %w", err)
	}
	return found, nil
}

func (m *InstitutionManager) loadIndex(ctx context.Context, refresh bool) (string, error) {
	endpoint := m.mapping.IndexEndpoint()
	if endpoint == "" {
		return "", domain.ErrIndexEndpointMissing
	}
	index := m.cache.Load(ctx, domain.IndexKey, endpoint, refresh)
	if index == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrIndexUnavailable, endpoint)
	}
	return index, nil
}

func (m *InstitutionManager) loadItem(ctx context.Context, indexKey string) (string, error) {
	index, err := m.loadIndex(ctx, false)
	if err != nil {
		return "", err
	}
	endpoint, ok := m.processor.IDLinks(index, domain.ListLinkKey)[indexKey]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidIndexKey, indexKey)
	}
	if endpoint == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrItemEndpointMissing, indexKey)
	}
	item := m.cache.GetUpdated(ctx, domain.ItemCacheKey(indexKey), endpoint)
	if item == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrItemUnavailable, indexKey)
	}
	return item, nil
}

// openItem loads and decodes the document listed by an index item.
func (m *InstitutionManager) openItem(ctx context.Context, indexKey string) (*itemDocument, error) {
	raw, err := m.loadItem(ctx, indexKey)
	if err != nil {
		return nil, err
	}
	doc, err := m.processor.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", domain.ErrItemUnavailable, indexKey, err)
	}
	return newItemDocument(raw, doc), nil
}

// check runs the creation preconditions and returns the decoded item.
func (m *InstitutionManager) check(ctx context.Context, indexKey, heiID string) (*itemDocument, error) {
	item, err := m.openItem(ctx, indexKey)
	if err != nil {
		return nil, err
	}
	if !item.has(heiID) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidHEIKey, heiID)
	}
	return item, nil
}

// create saves an institution built from attrs and reads it back.
func (m *InstitutionManager) create(
	ctx context.Context, indexKey, heiID string, attrs domain.Attributes,
) ([]domain.Institution, error) {
	data := m.PrepareData(attrs, indexKey)
	if _, ok := data[domain.FieldHEIID]; !ok {
		data[domain.FieldHEIID] = domain.Scalar(heiID)
	}

	inst := domain.NewInstitution(m.newID(), data)
	if err := m.store.Save(ctx, inst); err != nil {
		logger.Error("create institution %s: %v", heiID, err)
		return nil, fmt.Errorf("save institution: %w", err)
	}

	created, err := m.lookup(ctx, heiID)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		logger.Error("create institution %s: not found after save", heiID)
		return nil, nil
	}
	logger.Info("institution %s: created %s", heiID, created[0].ID)
	return created, nil
}

// itemDocument is a decoded item document, indexed by record id.
type itemDocument struct {
	raw     string
	records map[string]*domain.Record
}

func newItemDocument(raw string, doc *domain.Document) *itemDocument {
	item := &itemDocument{raw: raw, records: make(map[string]*domain.Record, len(doc.Data))}
	for i := range doc.Data {
		rec := &doc.Data[i]
		if _, ok := item.records[rec.ID]; !ok {
			item.records[rec.ID] = rec
		}
	}
	return item
}

func (d *itemDocument) has(heiID string) bool {
	_, ok := d.records[heiID]
	return ok
}

// attributes returns the expanded attributes of the first record with id
// heiID, or an empty set.
func (d *itemDocument) attributes(heiID string) domain.Attributes {
	rec, ok := d.records[heiID]
	if !ok || rec.Attributes == nil {
		return domain.Attributes{}
	}
	return rec.Attributes.Expanded()
}

package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/heisync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driving"
	"github.com/custodia-labs/heisync/internal/core/services"
)

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// withServices swaps the service globals for the duration of a test.
func withServices(t *testing.T, manager driving.InstitutionManager, mapping driving.FieldMappingService, cache driving.DocumentCache) {
	t.Helper()
	oldManager, oldMapping, oldCache := institutionManager, mappingService, documentCache
	SetServices(manager, mapping, cache)
	t.Cleanup(func() {
		SetServices(oldManager, oldMapping, oldCache)
	})
}

func newMapping() *services.MappingService {
	return services.NewMappingService(memory.NewConfigStore())
}

// fakeManager returns canned results and records calls.
type fakeManager struct {
	index     []driving.IndexEntry
	items     []domain.IDLabel
	preview   domain.Attributes
	keys      []string
	local     []domain.Institution
	found     []domain.Institution
	created   []domain.Institution
	imported  *driving.ImportResult
	err       error
	refreshed bool
	gotHEIID  string
	gotIndex  string
}

var _ driving.InstitutionManager = (*fakeManager)(nil)

func (f *fakeManager) GetInstitution(_ context.Context, heiID, indexKey string) ([]domain.Institution, error) {
	f.gotHEIID, f.gotIndex = heiID, indexKey
	return f.found, f.err
}

func (f *fakeManager) CreateInstitution(_ context.Context, indexKey, heiID string) ([]domain.Institution, error) {
	f.gotHEIID, f.gotIndex = heiID, indexKey
	return f.created, f.err
}

func (f *fakeManager) CheckErrors(context.Context, string, string) error {
	return f.err
}

func (f *fakeManager) PrepareData(_ domain.Attributes, indexKey string) domain.EntityData {
	return domain.EntityData{domain.FieldIndexKey: domain.Scalar(indexKey)}
}

func (f *fakeManager) ListIndex(_ context.Context, refresh bool) ([]driving.IndexEntry, error) {
	f.refreshed = refresh
	return f.index, f.err
}

func (f *fakeManager) ListItems(_ context.Context, indexKey string) ([]domain.IDLabel, error) {
	f.gotIndex = indexKey
	return f.items, f.err
}

func (f *fakeManager) Preview(_ context.Context, indexKey, heiID string) (domain.Attributes, error) {
	f.gotHEIID, f.gotIndex = heiID, indexKey
	return f.preview, f.err
}

func (f *fakeManager) AvailableKeys(_ context.Context, indexKey string) ([]string, error) {
	f.gotIndex = indexKey
	return f.keys, f.err
}

func (f *fakeManager) ImportIndex(_ context.Context, indexKey string) (*driving.ImportResult, error) {
	f.gotIndex = indexKey
	return f.imported, f.err
}

func (f *fakeManager) ListLocal(context.Context) ([]domain.Institution, error) {
	return f.local, f.err
}

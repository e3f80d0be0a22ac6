package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driving"
)

func testInstitution() domain.Institution {
	return domain.Institution{
		ID:       "inst-1",
		HEIID:    "hei-ua",
		IndexKey: "idx1",
		Label:    "Uni A",
		Fields:   map[string]domain.AttrValue{"website": domain.Scalar("https://ua.example").Expand()},
	}
}

func TestInstitutionCmd_Alias(t *testing.T) {
	assert.Contains(t, institutionCmd.Aliases, "inst")
}

func TestInstitutionGetCmd_NotFound(t *testing.T) {
	manager := &fakeManager{}
	withServices(t, manager, nil, nil)

	out, err := execute(t, "institution", "get", "hei-ua")

	require.NoError(t, err)
	assert.Equal(t, "", manager.gotIndex)
	assert.Contains(t, out, "No institution with HEI ID hei-ua.")
}

func TestInstitutionGetCmd_CreateFrom(t *testing.T) {
	manager := &fakeManager{found: []domain.Institution{testInstitution()}}
	withServices(t, manager, nil, nil)

	out, err := execute(t, "institution", "get", "hei-ua", "--create-from", "idx1")

	require.NoError(t, err)
	assert.Equal(t, "hei-ua", manager.gotHEIID)
	assert.Equal(t, "idx1", manager.gotIndex)
	assert.Contains(t, out, "id\tinst-1")
	assert.Contains(t, out, "hei_id\thei-ua")
	assert.Contains(t, out, "website\thttps://ua.example")
}

func TestInstitutionGetCmd_WarnsOnDuplicates(t *testing.T) {
	dup := testInstitution()
	dup.ID = "inst-2"
	withServices(t, &fakeManager{found: []domain.Institution{testInstitution(), dup}}, nil, nil)

	out, err := execute(t, "inst", "get", "hei-ua")

	require.NoError(t, err)
	assert.Contains(t, out, "2 institutions share this HEI ID")
}

func TestInstitutionCreateCmd(t *testing.T) {
	manager := &fakeManager{created: []domain.Institution{testInstitution()}}
	withServices(t, manager, nil, nil)

	out, err := execute(t, "institution", "create", "idx1", "hei-ua")

	require.NoError(t, err)
	assert.Equal(t, "idx1", manager.gotIndex)
	assert.Contains(t, out, "Created hei-ua as inst-1.")
}

func TestInstitutionCreateCmd_SurfacesPreconditionErrors(t *testing.T) {
	withServices(t, &fakeManager{err: domain.ErrInvalidIndexKey}, nil, nil)

	_, err := execute(t, "institution", "create", "bad-index-key", "hei-ua")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidIndexKey)
}

func TestInstitutionCreateCmd_NotFoundAfterSave(t *testing.T) {
	withServices(t, &fakeManager{}, nil, nil)

	_, err := execute(t, "institution", "create", "idx1", "hei-ua")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInstitutionListCmd(t *testing.T) {
	withServices(t, &fakeManager{local: []domain.Institution{testInstitution()}}, nil, nil)

	out, err := execute(t, "institution", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "ID\tHEI ID\tLABEL\tINDEX")
	assert.Contains(t, out, "inst-1\thei-ua\tUni A\tidx1")
	assert.Contains(t, out, "Total: 1 institutions")
}

func TestInstitutionListCmd_Empty(t *testing.T) {
	withServices(t, &fakeManager{}, nil, nil)

	out, err := execute(t, "institution", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No institutions stored.")
}

func TestInstitutionImportCmd(t *testing.T) {
	manager := &fakeManager{imported: &driving.ImportResult{
		IndexKey: "idx1",
		Created:  []string{"hei-ua"},
		Existing: []string{"hei-ub"},
		Failed:   map[string]error{},
	}}
	withServices(t, manager, nil, nil)

	out, err := execute(t, "institution", "import", "idx1")

	require.NoError(t, err)
	assert.Contains(t, out, "Imported idx1: 1 created, 1 existing, 0 failed")
}

func TestInstitutionImportCmd_ReportsFailures(t *testing.T) {
	boom := errors.New("boom")
	withServices(t, &fakeManager{imported: &driving.ImportResult{
		IndexKey: "idx1",
		Failed:   map[string]error{"hei-uc": boom},
	}}, nil, nil)

	out, err := execute(t, "institution", "import", "idx1")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "hei-uc: boom")
	assert.Contains(t, out, "0 created, 0 existing, 1 failed")
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heisync/internal/core/domain"
)

func TestValidator_Check(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "valid", raw: `{"data":[{"type":"hei","id":"hei-ua"}]}`},
		{name: "empty data", raw: `{"data":[]}`},
		{name: "extra members", raw: `{"data":[{"type":"hei","id":"1","attributes":{"x":1}}],"meta":{}}`},
		{name: "missing data", raw: `{}`, wantErr: "document lacks data"},
		{name: "data not an array", raw: `{"data":"x"}`, wantErr: "data"},
		{name: "record without id", raw: `{"data":[{"type":"hei"}]}`, wantErr: "record 0 lacks id"},
		{name: "record without type", raw: `{"data":[{"id":"1"}]}`, wantErr: "record 0 lacks type"},
		{name: "empty id", raw: `{"data":[{"type":"hei","id":""}]}`},
		{name: "numeric id", raw: `{"data":[{"type":"hei","id":1}]}`},
		{name: "null id", raw: `{"data":[{"type":"hei","id":null}]}`, wantErr: "record 0: id is null"},
		{name: "null type", raw: `{"data":[{"type":null,"id":"1"}]}`, wantErr: "record 0: type is null"},
		{name: "record not an object", raw: `{"data":["x"]}`, wantErr: "record 0"},
		{name: "not json", raw: `{`, wantErr: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Check([]byte(tt.raw))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidDocument)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidator_Check_ReportsFirstRecordInDocumentOrder(t *testing.T) {
	v := NewValidator()

	err := v.Check([]byte(`{"data":[
		{"type":"hei","id":"ok"},
		{"type":"hei"},
		{"id":"3"}
	]}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1 lacks id")
	assert.NotContains(t, err.Error(), "record 2")
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	assert.True(t, v.Validate([]byte(`{"data":[]}`)))
	assert.False(t, v.Validate([]byte(`{"errors":[]}`)))
}

func TestRecordIndex(t *testing.T) {
	assert.Equal(t, 3, recordIndex("data.3"))
	assert.Equal(t, 12, recordIndex("data.12.id"))
	assert.Equal(t, -1, recordIndex("data"))
	assert.Equal(t, -1, recordIndex("(root)"))
	assert.Equal(t, -1, recordIndex("data.x"))
}

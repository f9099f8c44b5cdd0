package dto

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalIDOmitted(t *testing.T) {
	var req UpdateUnitRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Pune"}`), &req))
	assert.False(t, req.ParentID.Set)
	assert.Nil(t, req.ParentID.Value)
}

func TestOptionalIDExplicitNull(t *testing.T) {
	var req UpdateUnitRequest
	require.NoError(t, json.Unmarshal([]byte(`{"parent_id":null}`), &req))
	assert.True(t, req.ParentID.Set)
	assert.Nil(t, req.ParentID.Value)
}

func TestOptionalIDValue(t *testing.T) {
	id := uuid.New()
	var req UpdateUnitRequest
	require.NoError(t, json.Unmarshal([]byte(`{"parent_id":"`+id.String()+`"}`), &req))
	assert.True(t, req.ParentID.Set)
	require.NotNil(t, req.ParentID.Value)
	assert.Equal(t, id, *req.ParentID.Value)
}

func TestOptionalIDMalformed(t *testing.T) {
	var req UpdateUnitRequest
	assert.Error(t, json.Unmarshal([]byte(`{"parent_id":"not-a-uuid"}`), &req))
}

func TestOptionalIDMarshal(t *testing.T) {
	id := uuid.New()
	b, err := json.Marshal(OptionalID{Set: true, Value: &id})
	require.NoError(t, err)
	assert.Equal(t, `"`+id.String()+`"`, string(b))

	b, err = json.Marshal(OptionalID{Set: true})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobListing_DecodesWireFields(t *testing.T) {
	raw := `{"id":"j1","title":"Engineer","description":"Build things","has_applied":true,"user_id":"u9"}`

	var l JobListing
	require.NoError(t, json.Unmarshal([]byte(raw), &l))

	assert.Equal(t, "j1", l.ID)
	assert.True(t, l.HasApplied)
	require.NotNil(t, l.OwnerUserID)
	assert.Equal(t, "u9", *l.OwnerUserID)
}

func TestJobListing_OwnedBy(t *testing.T) {
	owner := "u1"
	l := JobListing{ID: "j1", OwnerUserID: &owner}

	assert.True(t, l.OwnedBy("u1"))
	assert.False(t, l.OwnedBy("u2"))
	assert.False(t, l.OwnedBy(""))
	assert.False(t, JobListing{ID: "j2"}.OwnedBy("u1"))
}

func TestApplyResult_ToleratesMissingFields(t *testing.T) {
	var r ApplyResult
	require.NoError(t, json.Unmarshal([]byte(`{"message":"Successfully applied to job: Engineer"}`), &r))
	assert.Equal(t, "Successfully applied to job: Engineer", r.Message)
	assert.Empty(t, r.JobID)
}

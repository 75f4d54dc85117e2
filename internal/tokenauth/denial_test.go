package tokenauth

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeDenialPayload(t *testing.T) {
	denial := &ScopeDenial{
		RequiredScope:   "execute:ansible",
		GrantedScopes:   []string{"read:ansible"},
		Description:     "Execute Ansible operations (run jobs, sync inventory sources)",
		UpgradeEndpoint: "http://localhost:8002/api/upgrade-scope",
	}

	payload := denial.Payload()

	t.Run("carries all denial fields", func(t *testing.T) {
		assert.False(t, payload.Success)
		assert.Equal(t, ErrorTypeInsufficientScope, payload.ErrorType)
		assert.Equal(t, "execute:ansible", payload.RequiredScope)
		assert.Equal(t, []string{"read:ansible"}, payload.UserScopes)
		assert.Equal(t, "http://localhost:8002/api/upgrade-scope", payload.ScopeUpgradeEndpoint)
		assert.Contains(t, payload.Error, "execute:ansible")
	})

	t.Run("upgrade example is a replayable request", func(t *testing.T) {
		assert.Equal(t, "POST", payload.UpgradeExample.Method)
		assert.Equal(t, denial.UpgradeEndpoint, payload.UpgradeExample.URL)
		assert.Equal(t, "application/json", payload.UpgradeExample.Headers["Content-Type"])
		assert.Equal(t, []string{"execute:ansible"}, payload.UpgradeExample.Body.Scopes)
	})

	t.Run("wire keys match the denial contract", func(t *testing.T) {
		data, err := json.Marshal(payload)
		require.NoError(t, err)

		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &raw))
		for _, key := range []string{
			"success", "error_type", "error", "required_scope", "user_scopes",
			"scope_upgrade_endpoint", "scope_description",
			"upgrade_instructions", "upgrade_example",
		} {
			assert.Contains(t, raw, key)
		}
	})
}

func TestFailureEnvelope(t *testing.T) {
	t.Run("scope denial keeps structured form", func(t *testing.T) {
		var err error = &ScopeDenial{RequiredScope: "manage:ansible"}
		envelope := FailureEnvelope(err)

		payload, ok := envelope.(DenialPayload)
		require.True(t, ok)
		assert.Equal(t, "manage:ansible", payload.RequiredScope)
	})

	t.Run("wrapped scope denial is still recognized", func(t *testing.T) {
		wrapped := errors.Join(errors.New("tool call failed"), &ScopeDenial{RequiredScope: "read:ansible"})
		envelope := FailureEnvelope(wrapped)

		payload, ok := envelope.(DenialPayload)
		require.True(t, ok)
		assert.Equal(t, "read:ansible", payload.RequiredScope)
	})

	t.Run("other errors degrade to plain failure", func(t *testing.T) {
		envelope := FailureEnvelope(ErrExpiredCredential)

		payload, ok := envelope.(FailurePayload)
		require.True(t, ok)
		assert.False(t, payload.Success)
		assert.Equal(t, "token expired", payload.Error)
	})
}

func TestDescribeScope(t *testing.T) {
	assert.Contains(t, DescribeScope(ScopeRead), "Read access")
	assert.Contains(t, DescribeScope(ScopeExecute), "Execute")
	assert.Contains(t, DescribeScope(ScopeManage), "delete")
	assert.Equal(t, "Access to read:files", DescribeScope("read:files"))
}

func TestToolScopeDescription(t *testing.T) {
	gated := ToolScope{Name: "run_job", RequiredScope: ScopeExecute}
	assert.Equal(t, DescribeScope(ScopeExecute), gated.ScopeDescription())

	ungated := ToolScope{Name: "health_check"}
	assert.Equal(t, "Any valid token (no specific scope required)", ungated.ScopeDescription())
}

package creds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAuthFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "auth.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromMissingFile(t *testing.T) {
	assert.Nil(t, loadFrom(filepath.Join(t.TempDir(), "nope.json")))
}

func TestLoadFromMalformedJSON(t *testing.T) {
	path := writeAuthFile(t, t.TempDir(), "{not json")
	assert.Nil(t, loadFrom(path))
}

func TestLoadFromMissingProviderKey(t *testing.T) {
	path := writeAuthFile(t, t.TempDir(), `{"openai": {"access": "tok"}}`)
	assert.Nil(t, loadFrom(path))
}

func TestLoadFromProviderRecord(t *testing.T) {
	path := writeAuthFile(t, t.TempDir(), `{
		"antigravity": {
			"accessToken": "at-123",
			"refresh": "rt-456",
			"projectId": "proj-1"
		}
	}`)

	cred := loadFrom(path)
	require.NotNil(t, cred)
	assert.Equal(t, "at-123", cred.Token())
	assert.Equal(t, "rt-456", cred.RefreshToken)
	assert.Equal(t, "proj-1", cred.ProjectID)
}

func TestTokenAliasPriority(t *testing.T) {
	tests := []struct {
		name string
		cred Credential
		want string
	}{
		{"access wins", Credential{Access: "a", AccessToken: "b", TokenField: "c"}, "a"},
		{"accessToken next", Credential{AccessToken: "b", TokenField: "c"}, "b"},
		{"token last", Credential{TokenField: "c"}, "c"},
		{"whitespace skipped", Credential{Access: "  ", AccessToken: "b"}, "b"},
		{"none", Credential{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.Token())
		})
	}
}

func TestLoadUsesHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".pi", "agent"), 0o700))
	writeAuthFile(t, filepath.Join(home, ".pi", "agent"),
		`{"antigravity": {"token": "home-tok"}}`)

	cred := Load()
	require.NotNil(t, cred)
	assert.Equal(t, "home-tok", cred.Token())
}

func TestLoadMissingHomeFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assert.Nil(t, Load())
}

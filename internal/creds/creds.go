// Package creds locates and parses the pi agent's locally stored provider
// credentials. Loading is best-effort: any failure reads as "no credentials"
// rather than an error, since the caller can do nothing about a broken file
// beyond telling the user to log in again.
package creds

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// ProviderKey is the entry inside the auth file that holds the Antigravity
// credential record.
const ProviderKey = "antigravity"

// authFileRelPath is the auth file location relative to the home directory.
var authFileRelPath = filepath.Join(".pi", "agent", "auth.json")

// Credential is one provider's record inside the auth file. Token material
// appears under different names depending on which client version wrote the
// file, so all known aliases are kept.
type Credential struct {
	Access       string `json:"access,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	TokenField   string `json:"token,omitempty"`
	RefreshToken string `json:"refresh,omitempty"`
	ProjectID    string `json:"projectId,omitempty"`
}

// Token returns the bearer token, trying the known field aliases in priority
// order. Empty string means no usable token.
func (c *Credential) Token() string {
	for _, tok := range []string{c.Access, c.AccessToken, c.TokenField} {
		if t := strings.TrimSpace(tok); t != "" {
			return t
		}
	}
	return ""
}

// AuthFilePath returns the resolved path of the auth file. When the home
// directory cannot be determined the path degrades to a relative lookup,
// which Load then tolerates as "not found".
func AuthFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return authFileRelPath
	}
	return filepath.Join(home, authFileRelPath)
}

// Load reads the credential record for the Antigravity provider from the
// auth file. The file is read fresh on every call. Returns nil when the file
// is missing, unreadable, malformed, or has no entry for the provider.
func Load() *Credential {
	return loadFrom(AuthFilePath())
}

func loadFrom(path string) *Credential {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var parsed map[string]json.RawMessage
	if json.Unmarshal(data, &parsed) != nil {
		return nil
	}

	raw, ok := parsed[ProviderKey]
	if !ok {
		return nil
	}

	var cred Credential
	if json.Unmarshal(raw, &cred) != nil {
		return nil
	}
	return &cred
}

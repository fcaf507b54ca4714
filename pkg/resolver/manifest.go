package resolver

import (
	"encoding/json"
)

// Manifest is a resolved package's manifest, decorated with the
// provenance fields the resolver adds on top of whatever registry file
// (or synthesized stand-in) it came from.
type Manifest struct {
	Raw map[string]any

	UID    string       `json:"_uid"`
	Remote RemoteRecord `json:"_remote"`
	PURL   string       `json:"_purl,omitempty"`
}

// RemoteRecord records how a Manifest's content was obtained, so a
// lockfile entry replayed later reproduces the identical resolve.
type RemoteRecord struct {
	Resolved  string `json:"resolved"`
	Type      string `json:"type"`
	Reference string `json:"reference"`
	Hash      string `json:"hash"`
	Registry  string `json:"registry"`
}

// decorate merges the provenance fields into raw's top level and
// returns the combined Manifest.
func decorate(raw map[string]any, uid string, remote RemoteRecord, purl string) *Manifest {
	if raw == nil {
		raw = map[string]any{}
	}
	raw["_uid"] = uid
	raw["_remote"] = remote
	if purl != "" {
		raw["_purl"] = purl
	}
	return &Manifest{Raw: raw, UID: uid, Remote: remote, PURL: purl}
}

// synthesize builds the minimal manifest used when no registry file
// was found at the resolved commit: a guessed name and a placeholder
// version, still decorated with full provenance.
func synthesize(name string) map[string]any {
	return map[string]any{
		"name":    name,
		"version": "0.0.0",
	}
}

func parseManifestJSON(content string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

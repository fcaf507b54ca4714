// Package sbom builds a CycloneDX component describing one resolved
// git package, so a caller assembling a bill of materials around the
// resolver's output does not need to duplicate BOM-ref and
// external-reference conventions.
package sbom

import (
	cdx "github.com/CycloneDX/cyclonedx-go"
)

// Identity names one resolved package for BOM-ref generation. A
// package may be re-resolved at different commits over time, so the
// short commit hash — not the ref — provides the BOM ref's uniqueness.
type Identity struct {
	Name       string
	Ref        string
	CommitHash string
}

// ShortHash returns the first 7 characters of CommitHash.
func (id Identity) ShortHash() string {
	if len(id.CommitHash) > 7 {
		return id.CommitHash[:7]
	}
	return id.CommitHash
}

// BOMRef formats a unique CycloneDX BOM reference: "{name}@{short-hash}".
func BOMRef(id Identity) string {
	return id.Name + "@" + id.ShortHash()
}

// BuildComponent assembles a CycloneDX library component for one
// resolved git package: BOM ref, resolved version, package URL, and a
// VCS external reference pointing at the repository.
func BuildComponent(id Identity, repoURL, purlString string) cdx.Component {
	version := id.CommitHash
	if id.Ref != "" {
		version = id.Ref
	}

	component := cdx.Component{
		Type:       cdx.ComponentTypeLibrary,
		BOMRef:     BOMRef(id),
		Name:       id.Name,
		Version:    version,
		PackageURL: purlString,
	}

	if repoURL != "" {
		component.ExternalReferences = &[]cdx.ExternalReference{
			{Type: cdx.ERTypeVCS, URL: repoURL},
		}
	}

	return component
}

// Package main implements the git-resolve CLI: resolve a git package
// specifier to a decorated manifest, optionally emitting a CycloneDX
// component alongside it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/EmundoT/git-resolve/internal/rconfig"
	"github.com/EmundoT/git-resolve/internal/rerrors"
	"github.com/EmundoT/git-resolve/internal/rlog"
	"github.com/EmundoT/git-resolve/internal/sbom"
	"github.com/EmundoT/git-resolve/internal/version"
	"github.com/EmundoT/git-resolve/pkg/resolver"
)

type flags struct {
	configPath  string
	jsonOut     bool
	verbose     bool
	quiet       bool
	sbomOut     bool
	showVersion bool
}

// parseFlags extracts recognized flags from args, returning the
// remaining positional arguments (expected to be the specifier).
func parseFlags(args []string) (flags, []string) {
	var f flags
	var remaining []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--json":
			f.jsonOut = true
		case "--verbose", "-v":
			f.verbose = true
		case "--quiet", "-q":
			f.quiet = true
		case "--sbom":
			f.sbomOut = true
		case "--version":
			f.showVersion = true
		case "--config":
			if i+1 < len(args) {
				f.configPath = args[i+1]
				i++
			}
		default:
			remaining = append(remaining, arg)
		}
	}
	return f, remaining
}

func main() {
	f, rest := parseFlags(os.Args[1:])
	if f.showVersion {
		fmt.Println(version.GetFullVersion())
		return
	}
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "usage: git-resolve [--json] [--sbom] [--verbose] [--config path] <specifier>")
		os.Exit(2)
	}
	specifier := rest[0]

	cfg := rconfig.Default()
	if f.configPath != "" {
		loaded, err := rconfig.Load(f.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := rlog.New(os.Stderr)
	logger.Silent = f.quiet || !f.verbose

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := resolver.New(cfg).WithLogHook(logger.Hook())

	manifest, err := r.Resolve(ctx, specifier)
	if err != nil {
		printResolveError(err)
		os.Exit(1)
	}

	if f.sbomOut {
		printSBOM(manifest, specifier)
		return
	}

	if f.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(manifest.Raw); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("%s@%s\n", manifest.Raw["name"], manifest.Raw["version"])
	fmt.Printf("  resolved: %s\n", manifest.Remote.Resolved)
	fmt.Printf("  hash:     %s\n", manifest.Remote.Hash)
	if manifest.Remote.Reference != "" {
		fmt.Printf("  ref:      %s\n", manifest.Remote.Reference)
	}
	if manifest.PURL != "" {
		fmt.Printf("  purl:     %s\n", manifest.PURL)
	}
}

func printResolveError(err error) {
	switch {
	case rerrors.IsSecurityError(err), rerrors.IsMessageError(err), rerrors.IsNotFoundError(err):
		fmt.Fprintln(os.Stderr, err)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

// printSBOM emits a single-component CycloneDX BOM describing the
// resolved manifest, for callers assembling an SBOM around one or more
// resolve calls.
func printSBOM(manifest *resolver.Manifest, specifier string) {
	name, _ := manifest.Raw["name"].(string)
	if name == "" {
		name = strings.TrimSuffix(specifier, ".git")
	}

	id := sbom.Identity{Name: name, Ref: manifest.Remote.Reference, CommitHash: manifest.Remote.Hash}
	repoURL := strings.SplitN(manifest.Remote.Resolved, "#", 2)[0]
	component := sbom.BuildComponent(id, repoURL, manifest.PURL)

	bom := cdx.NewBOM()
	bom.Components = &[]cdx.Component{component}

	enc := cdx.NewBOMEncoder(os.Stdout, cdx.BOMFileFormatJSON)
	enc.SetPretty(true)
	if err := enc.Encode(bom); err != nil {
		fmt.Fprintf(os.Stderr, "error encoding sbom: %v\n", err)
		os.Exit(1)
	}
}

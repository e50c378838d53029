// Package buildinfo reports the versions of the modules linked into the binary.
package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"
	"sort"
)

// Dependency names a module to report on.
type Dependency struct {
	Name string // label printed in the report
	Path string // module path
}

// Entry is one line of the report. Version is empty when the module is
// absent from the build.
type Entry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Present bool   `json:"present"`
}

// String renders the version the way the report prints it.
func (e Entry) String() string {
	switch {
	case !e.Present:
		return "None"
	case e.Version == "" || e.Version == "(devel)":
		return "installed"
	default:
		return e.Version
	}
}

// DefaultDependencies are the modules doing the catalog work.
var DefaultDependencies = []Dependency{
	{Name: "esmcat", Path: "esmcat"},
	{Name: "duckdb", Path: "github.com/duckdb/duckdb-go/v2"},
	{Name: "aws-s3", Path: "github.com/aws/aws-sdk-go-v2/service/s3"},
	{Name: "gcs", Path: "cloud.google.com/go/storage"},
	{Name: "azblob", Path: "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"},
	{Name: "cobra", Path: "github.com/spf13/cobra"},
	{Name: "yaml", Path: "gopkg.in/yaml.v3"},
	{Name: "rate", Path: "golang.org/x/time"},
}

// Read returns the running binary's build info, or nil when unavailable.
func Read() *debug.BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info
}

// Collect looks up each dependency in info. A nil info reports every
// dependency as absent. Replaced modules report the replacement's version.
func Collect(info *debug.BuildInfo, deps []Dependency) []Entry {
	versions := map[string]string{}
	if info != nil {
		versions[info.Main.Path] = info.Main.Version
		for _, m := range info.Deps {
			if m.Replace != nil {
				versions[m.Path] = m.Replace.Version
				continue
			}
			versions[m.Path] = m.Version
		}
	}

	entries := make([]Entry, 0, len(deps))
	for _, d := range deps {
		v, ok := versions[d.Path]
		entries = append(entries, Entry{Name: d.Name, Version: v, Present: ok})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Report writes entries under an INSTALLED VERSIONS banner.
func Report(w io.Writer, entries []Entry) error {
	if _, err := fmt.Fprint(w, "\nINSTALLED VERSIONS\n------------------\n\n"); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s: %s\n", e.Name, e); err != nil {
			return err
		}
	}
	return nil
}

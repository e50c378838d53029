package architecture_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const modulePath = "esmcat"

type layerRule struct {
	sourcePrefix string
	forbidden    []string
	hint         string
}

var rules = []layerRule{
	{
		sourcePrefix: modulePath + "/internal/domain",
		forbidden: []string{
			modulePath + "/internal/config",
			modulePath + "/internal/locator",
			modulePath + "/internal/objectstore",
			modulePath + "/internal/engine",
			modulePath + "/internal/service",
			modulePath + "/internal/buildinfo",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "domain may only import domain",
	},
	{
		sourcePrefix: modulePath + "/internal/config",
		forbidden: []string{
			modulePath + "/internal/domain",
			modulePath + "/internal/locator",
			modulePath + "/internal/objectstore",
			modulePath + "/internal/engine",
			modulePath + "/internal/service",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "config is a leaf package",
	},
	{
		sourcePrefix: modulePath + "/internal/locator",
		forbidden: []string{
			modulePath + "/internal/config",
			modulePath + "/internal/objectstore",
			modulePath + "/internal/engine",
			modulePath + "/internal/service",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "locator depends on domain ports only",
	},
	{
		sourcePrefix: modulePath + "/internal/service",
		forbidden: []string{
			modulePath + "/internal/config",
			modulePath + "/internal/objectstore",
			modulePath + "/internal/engine",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "service should depend on domain, locator and service-local packages",
	},
	{
		sourcePrefix: modulePath + "/internal/objectstore",
		forbidden: []string{
			modulePath + "/internal/locator",
			modulePath + "/internal/engine",
			modulePath + "/internal/service",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "objectstore should depend on domain and config",
	},
	{
		sourcePrefix: modulePath + "/internal/engine",
		forbidden: []string{
			modulePath + "/internal/config",
			modulePath + "/internal/locator",
			modulePath + "/internal/objectstore",
			modulePath + "/internal/service",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "engine should depend on domain and engine-local packages",
	},
	{
		sourcePrefix: modulePath + "/internal/buildinfo",
		forbidden: []string{
			modulePath + "/internal",
			modulePath + "/cmd",
			modulePath + "/pkg",
		},
		hint: "buildinfo is a leaf package",
	},
}

// driverImporters are the only production packages allowed to register the
// DuckDB driver; everything else receives a *sql.DB.
var driverImporters = map[string]bool{
	modulePath + "/pkg/cli": true,
}

const duckdbDriver = "github.com/duckdb/duckdb-go/v2"

func TestImportBoundaries(t *testing.T) {
	files, err := collectGoFiles(filepath.Join(repoRootDir(), "internal"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	violations := make([]string, 0)
	fset := token.NewFileSet()

	for _, file := range files {
		if shouldSkipFile(file) {
			continue
		}

		sourcePkg := packageImportPath(file)
		rule, ok := findRule(sourcePkg)
		if !ok {
			continue
		}

		parsed, parseErr := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
		require.NoErrorf(t, parseErr, "parse imports for %s", file)

		for _, imp := range parsed.Imports {
			importPath, _ := strconv.Unquote(imp.Path.Value)
			if !strings.HasPrefix(importPath, modulePath+"/") {
				continue
			}
			if violatesRule(importPath, rule.forbidden) {
				violations = append(violations,
					"governance: "+sourcePkg+" imports "+importPath+" via "+relToRepoRoot(file)+"; allowed direction: "+rule.hint,
				)
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("%s", strings.Join(violations, "\n"))
	}
}

func TestDuckDBDriverRegisteredOnlyAtTheEdge(t *testing.T) {
	root := repoRootDir()
	files := make([]string, 0)
	for _, dir := range []string{"internal", "pkg", "cmd"} {
		found, err := collectGoFiles(filepath.Join(root, dir))
		require.NoError(t, err)
		files = append(files, found...)
	}

	violations := make([]string, 0)
	fset := token.NewFileSet()
	for _, file := range files {
		if shouldSkipFile(file) {
			continue
		}
		parsed, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
		require.NoErrorf(t, err, "parse imports for %s", file)

		for _, imp := range parsed.Imports {
			importPath, _ := strconv.Unquote(imp.Path.Value)
			if importPath == duckdbDriver && !driverImporters[packageImportPath(file)] {
				violations = append(violations, relToRepoRoot(file)+" imports the DuckDB driver")
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("%s", strings.Join(violations, "\n"))
	}
}

func collectGoFiles(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".go") {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func repoRootDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func relToRepoRoot(path string) string {
	rel, err := filepath.Rel(repoRootDir(), path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func shouldSkipFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_test.go")
}

func packageImportPath(file string) string {
	return modulePath + "/" + filepath.Dir(relToRepoRoot(file))
}

func findRule(sourcePkg string) (layerRule, bool) {
	for _, rule := range rules {
		if hasPathPrefix(sourcePkg, rule.sourcePrefix) {
			return rule, true
		}
	}
	return layerRule{}, false
}

func violatesRule(importPath string, forbidden []string) bool {
	for _, prefix := range forbidden {
		if hasPathPrefix(importPath, prefix) {
			return true
		}
	}
	return false
}

func hasPathPrefix(value string, prefix string) bool {
	return value == prefix || strings.HasPrefix(value, prefix+"/")
}

package i18n

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/iamwavecut/guardbot/resources"
	"gopkg.in/yaml.v2"
)

func TestTranslationsCoverAllUsedKeys(t *testing.T) {
	t.Parallel()

	used, err := collectUsedI18nKeys()
	if err != nil {
		t.Fatalf("collect used i18n keys: %v", err)
	}

	defined, err := collectDefinedI18nKeys("uk")
	if err != nil {
		t.Fatalf("collect defined i18n keys: %v", err)
	}

	definedSet := make(map[string]struct{}, len(defined))
	for _, key := range defined {
		definedSet[key] = struct{}{}
	}

	missing := make([]string, 0)
	for _, key := range used {
		if _, ok := definedSet[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		t.Fatalf("missing uk translations:\n%s", strings.Join(missing, "\n"))
	}
}

func collectUsedI18nKeys() ([]string, error) {
	root, err := repoRoot()
	if err != nil {
		return nil, err
	}

	internalDir := filepath.Join(root, "internal")
	fileSet := token.NewFileSet()
	keys := make(map[string]struct{})

	err = filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}

		node, err := parser.ParseFile(fileSet, path, nil, parser.SkipObjectResolution)
		if err != nil {
			return err
		}

		ast.Inspect(node, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			selector, ok := call.Fun.(*ast.SelectorExpr)
			if !ok || selector.Sel == nil || selector.Sel.Name != "Get" {
				return true
			}
			pkgIdent, ok := selector.X.(*ast.Ident)
			if !ok || pkgIdent.Name != "i18n" {
				return true
			}
			if len(call.Args) < 1 {
				return true
			}
			value, ok := stringLiteralValue(call.Args[0])
			if !ok || value == "" {
				return true
			}
			keys[value] = struct{}{}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(keys))
	for key := range keys {
		result = append(result, key)
	}
	sort.Strings(result)
	return result, nil
}

func collectDefinedI18nKeys(lang string) ([]string, error) {
	content, err := resources.FS.ReadFile(fmt.Sprintf("i18n/%s.yml", lang))
	if err != nil {
		return nil, err
	}
	dict := map[string]string{}
	if err := yaml.Unmarshal(content, &dict); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(dict))
	for key := range dict {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func stringLiteralValue(expr ast.Expr) (string, bool) {
	basic, ok := expr.(*ast.BasicLit)
	if !ok || basic.Kind != token.STRING {
		return "", false
	}
	value, err := strconv.Unquote(basic.Value)
	if err != nil {
		return "", false
	}
	return value, true
}

func repoRoot() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("runtime caller is unavailable")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(currentFile), "..", "..")), nil
}

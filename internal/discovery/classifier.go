package discovery

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// generatedPattern matches the standard Go generated file comment. Must
// appear before the package declaration per Go convention.
var generatedPattern = regexp.MustCompile(`^// Code generated .* DO NOT EDIT\.$`)

// ClassifyGoFile classifies a Go file by its filename.
func ClassifyGoFile(name string) model.FileClass {
	if strings.HasSuffix(name, "_test.go") {
		return model.ClassTest
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return model.ClassExcluded
	}
	return model.ClassSource
}

// ClassifyPythonFile classifies a Python file by its filename. Test files
// match pytest/unittest naming conventions: test_*.py or *_test.py.
func ClassifyPythonFile(name string) model.FileClass {
	base := strings.TrimSuffix(name, ".py")
	if strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test") || base == "conftest" {
		return model.ClassTest
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return model.ClassExcluded
	}
	return model.ClassSource
}

// IsGeneratedFile checks whether a Go file contains a generated code comment
// before the package declaration. Handles files with copyright headers
// preceding the generated comment (e.g. stringer output).
func IsGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "package ") {
			return false, nil
		}
		if generatedPattern.MatchString(line) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

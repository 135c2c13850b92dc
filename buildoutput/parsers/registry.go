package parsers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dhamidi/saibuild/buildoutput"
)

var registry = map[string]buildoutput.Parser{
	"javac":      Javac{},
	"junit":      JUnit{},
	"stacktrace": StackTrace{},
	"plain":      Plain{},
}

// Names returns the names accepted by ByName, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName returns the parser registered under name.
func ByName(name string) (buildoutput.Parser, error) {
	p, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown parser %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Resolve looks up every name, preserving order.
func Resolve(names []string) ([]buildoutput.Parser, error) {
	result := make([]buildoutput.Parser, 0, len(names))
	for _, name := range names {
		p, err := ByName(name)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

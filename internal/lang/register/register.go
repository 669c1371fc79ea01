// Package register wires the three built-in dialect providers into a
// lang.Registry. It is the one place allowed to import every per-language
// package, keeping internal/lang itself free of any dependency on its own
// sub-packages.
package register

import (
	"github.com/oxhq/stereoscope/internal/lang"
	"github.com/oxhq/stereoscope/internal/lang/cpp"
	"github.com/oxhq/stereoscope/internal/lang/csharp"
	"github.com/oxhq/stereoscope/internal/lang/java"
)

// Default builds a registry with the three shipped dialects.
func Default() (*lang.Registry, error) {
	r := lang.NewRegistry()
	providers := []lang.Provider{cpp.New(), csharp.New(), java.New()}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

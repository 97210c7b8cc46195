package orchestrator

import (
	"encoding/json"

	"github.com/hydro-project/flowviz/pkg/cache"
	"github.com/hydro-project/flowviz/pkg/layout"
)

// inputHash content-hashes a layout.Input so that two calls against
// equivalent visible state produce the same cache key, per the bridge's
// stateless contract (spec.md §4.6).
func inputHash(in layout.Input) string {
	data, _ := json.Marshal(in)
	return cache.Hash(data)
}

// encodeOutput/decodeOutput serialize a layout.Output for storage behind
// the opaque-blob cache.Cache interface.
func encodeOutput(out layout.Output) ([]byte, error) {
	return json.Marshal(out)
}

func decodeOutput(data []byte) (layout.Output, error) {
	var out layout.Output
	err := json.Unmarshal(data, &out)
	return out, err
}

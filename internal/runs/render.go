package runs

import (
	"github.com/veldt-labs/arbiter/pkg/xjson"
)

// Render returns the run as indented JSON for ledger inspection output.
func Render(r *Run) ([]byte, error) {
	return xjson.MarshalIndent(r, "", "  ")
}

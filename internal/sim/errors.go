package sim

import "github.com/san-kum/spinodal/internal/dynamo"

// SimulationError is re-exported so callers of this package need not import
// dynamo for errors.As.
type SimulationError = dynamo.SimulationError

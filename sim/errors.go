package sim

import "fmt"

// barError formats the per-bar error-list entry the driver appends when
// evaluating a DSL condition at a bar returns an error, per spec's
// "Error at bar {i}: {msg}" convention. The simulation continues past
// it; only a precondition failure (bad strategy, no candles) aborts the
// whole run. A panic during a bar's processing is not recovered and
// ends the run.
func barError(bar int, err error) string {
	return fmt.Sprintf("Error at bar %d: %s", bar, err.Error())
}

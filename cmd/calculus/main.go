// Command calculus analyzes single-variable expressions from the command
// line or serves the analysis engine over HTTP.
//
// Usage:
//
//	calculus limit "sin(x)/x" --at 0
//	calculus derivative "x^3 - 2*x" --order 3 --plot d.svg
//	calculus continuity "floor(x)" --at 1
//	calculus local "x^3 - 3*x"
//	calculus global "x^2" --a -2 --b 3 --json
//	calculus serve --config calculus.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

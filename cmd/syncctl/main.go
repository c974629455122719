// Command syncctl runs and inspects synchronizations from the command line,
// against the same database and platform settings as the server.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

// main is the entry point for the mericoreport CLI.
package main

import (
	"fmt"
	"os"

	"github.com/leoyyy3/mericoComment/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// SPDX-License-Identifier: MPL-2.0

// Command queryforge converts query documents into buildable projects.
package main

import cmd "github.com/queryforge/queryforge/cmd/queryforge"

func main() {
	cmd.Execute()
}

// SPDX-License-Identifier: MPL-2.0

package main

import cmd "testplan-cli/cmd/testplan"

func main() {
	cmd.Execute()
}

/*
	Copyright 2023 Markus Papenbrock
*/

package main

import "github.com/mpapenbr/yutrace/cmd"

func main() {
	cmd.Execute()
}

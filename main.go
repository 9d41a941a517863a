package main

import "github.com/sqldrift/sqldrift/cmd"

func main() {
	cmd.Execute()
}

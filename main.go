package main

import "github.com/lukman83/campusfair/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/notargets/gofistr/cmd"

func main() {
	cmd.Execute()
}

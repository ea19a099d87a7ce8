package main

import (
	"bptreedb/cmd/bptreectl/cmd"
)

func main() {
	cmd.Execute()
}

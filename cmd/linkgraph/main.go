package main

import (
	_ "github.com/tliron/commonlog/simple"

	"github.com/kittclouds/linkgraph/cmd/linkgraph/cmd"
)

func main() {
	cmd.Execute()
}

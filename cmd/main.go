package main

import (
	"github.com/readfiles-agent/cmd/agent"
)

func main() {
	agent.Execute()
}

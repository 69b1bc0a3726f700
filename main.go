package main

import "github.com/smartfactory/llmops-console/cmd"

func main() {
	cmd.Execute()
}

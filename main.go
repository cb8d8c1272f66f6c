package main

import "github.com/zrax-x/apt-analysis-mcp/cmd"

func main() {
	cmd.Execute()
}

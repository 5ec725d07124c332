package main

import "github.com/unkn0wn-root/layout/cmd/layoutctl/cmd"

func main() {
	cmd.Execute()
}

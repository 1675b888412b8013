package main

import "github.com/KaramelBytes/unde-cli/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/KaramelBytes/statsheet/cmd"

func main() {
	cmd.Execute()
}

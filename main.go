package main

import "github.com/pders01/notes-seed/cmd"

func main() {
	cmd.Execute()
}

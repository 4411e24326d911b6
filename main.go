package main

import "github.com/ValentinKolb/keep/cmd"

func main() {
	cmd.Execute()
}

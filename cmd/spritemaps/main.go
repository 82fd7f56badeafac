package main

import "github.com/MeKo-Tech/spritemaps/internal/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/michiganelections/ballot-scraper/internal/cli"

func main() {
	cli.Execute()
}

package main

import (
	"github.com/joho/godotenv"

	"github.com/SoarinFerret/CycleWarden/cmd/cwctl/arg"
)

func main() {
	_ = godotenv.Load()
	arg.Execute()
}

package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/GromitDog/GUMS-sub000/internal/commands"
)

func main() {
	// Optional; flags and defaults cover everything a .env can set.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

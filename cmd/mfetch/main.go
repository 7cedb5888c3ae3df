package main

import (
	"os"

	"github.com/guiyumin/mfetch/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env in the working directory (ROD_BROWSER, PATH overrides).
	// Nothing is printed when it is missing: stdout belongs to the JSON result.
	_ = godotenv.Load()

	os.Exit(cli.Execute())
}

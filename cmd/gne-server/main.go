// Command gne-server serves dictionary lookups over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gnecli/internal/app"
	"gnecli/internal/infrastructure"
	"gnecli/pkg/contracts"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()
	fmt.Fprintln(os.Stderr, contracts.GetVersionString())

	if err := application.Run(context.Background()); err != nil {
		application.Logger.Error("Application error", slog.String("error", err.Error()))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
}

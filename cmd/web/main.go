package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/license-atlas/pkg/server"
	"github.com/de-tools/license-atlas/pkg/services/classify"
	"github.com/de-tools/license-atlas/pkg/services/config"
	"github.com/de-tools/license-atlas/pkg/store/graph"
)

var profile string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for License Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&profile, "profile", "p", "",
		"Azure config profile (default is the [default] section of ~/.azure/config)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	tenantProfile, err := config.LoadProfile(profile)
	if err != nil {
		return fmt.Errorf("failed to load tenant profile: %w", err)
	}

	directory, err := graph.NewClient(tenantProfile.Credentials, nil)
	if err != nil {
		return fmt.Errorf("failed to create directory client: %w", err)
	}

	skuIndex, err := classify.BuildSKUIndex(ctx, directory)
	if err != nil {
		return fmt.Errorf("failed to load tenant SKUs: %w", err)
	}

	logger.Info().Msgf("Profile `%s` loaded for tenant `%s`.", tenantProfile.Name, tenantProfile.TenantID)
	logger.Info().Msgf("Tenant carries %d subscribed SKUs.", len(skuIndex))

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:            net.JoinHostPort(host, port),
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Directory: directory,
			SKUIndex:  skuIndex,
			Logger:    logger,
		},
	})

	return api.Start()
}

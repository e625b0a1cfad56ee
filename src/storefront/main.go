package main

import (
	"fmt"
	"os"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "Sandwich Asere cart front end",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "store", Usage: "cart store backend: memory, file or redis (overrides CART_STORE)"},
			&cli.StringFlag{Name: "store-dir", Usage: "directory for the file store (overrides CART_STORE_DIR)"},
			&cli.StringFlag{Name: "slot", Usage: "cart slot key (overrides CART_SLOT_KEY)"},
			&cli.StringFlag{Name: "redis-addr", Usage: "redis address (overrides REDIS_ADDR)"},
			&cli.StringFlag{Name: "api", Usage: "storefront API base URL (overrides API_BASE_URL)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "shell",
				Usage:  "interactive terminal cart",
				Action: runShell,
			},
			{
				Name:  "serve",
				Usage: "kiosk HTTP cart API with a gRPC health endpoint",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Usage: "HTTP port (overrides PORT)"},
					&cli.StringFlag{Name: "health-port", Usage: "gRPC health port (overrides HEALTH_PORT)"},
				},
				Action: runServe,
			},
		},
		DefaultCommand: "shell",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies any flags given on the command line.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}
	overrides := map[string]*string{
		"store":       &cfg.CartStore,
		"store-dir":   &cfg.CartStoreDir,
		"slot":        &cfg.CartSlotKey,
		"redis-addr":  &cfg.RedisAddr,
		"api":         &cfg.APIBaseURL,
		"port":        &cfg.Port,
		"health-port": &cfg.HealthPort,
	}
	for name, dst := range overrides {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

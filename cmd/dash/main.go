package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/relieflab/assessdash/internal/server"
)

// Options defines all CLI flags and env vars for the dashboard server.
// Flags: --host, --port, --data-dir, --web-dir, --analysis-url, --redis-addr
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, ...
type Options struct {
	Host          string `doc:"Host to bind to" default:"0.0.0.0"`
	Port          int    `doc:"Port to listen on" short:"p" default:"8090"`
	DataDir       string `doc:"Directory for assessment data files" default:".data"`
	WebDir        string `doc:"Path to web/ directory" default:"web"`
	AnalysisURL   string `doc:"Base URL of the image-analysis backend"`
	RedisAddr     string `doc:"Redis address for the analysis cache"`
	RedisPassword string `doc:"Redis password"`
}

func newServer(opts *Options) *server.Server {
	return server.New(server.Config{
		Host:          opts.Host,
		Port:          fmt.Sprintf("%d", opts.Port),
		DataDir:       opts.DataDir,
		WebDir:        opts.WebDir,
		AnalysisURL:   opts.AnalysisURL,
		RedisAddr:     opts.RedisAddr,
		RedisPassword: opts.RedisPassword,
	})
}

func main() {
	// Local overrides from .env, missing file is fine
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		srv := newServer(opts)

		hooks.OnStart(func() {
			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("assessdash server starting...\n")
			fmt.Printf("  Server:    %s\n", baseURL)
			fmt.Printf("  Data:      %s\n", opts.DataDir)
			fmt.Println()
			fmt.Printf("  Dashboard: %s/dashboard\n", baseURL)
			fmt.Printf("  Docs:      %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI:   %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatalf("Server error: %v", err)
			}
		})

		hooks.OnStop(func() {
			srv.Close()
		})
	})

	cli.Root().Use = "dash"
	cli.Root().Short = "Disaster assessment dashboard server"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := newServer(opts)
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	cli.Run()
}

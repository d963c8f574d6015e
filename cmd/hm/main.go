package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sithum-sy/hireme-sub001/internal/catalog"
	"github.com/sithum-sy/hireme-sub001/internal/config"
	"github.com/sithum-sy/hireme-sub001/internal/db"
	"github.com/sithum-sy/hireme-sub001/internal/domain"
	"github.com/sithum-sy/hireme-sub001/internal/events"
	"github.com/sithum-sy/hireme-sub001/internal/export"
	"github.com/sithum-sy/hireme-sub001/internal/migrate"
	"github.com/sithum-sy/hireme-sub001/internal/query"
	"github.com/sithum-sy/hireme-sub001/internal/report"
	"github.com/sithum-sy/hireme-sub001/internal/server"
	hiremesdk "github.com/sithum-sy/hireme-sub001/sdk/go"
)

var rootCmd = &cobra.Command{
	Use:   "hm",
	Short: "HireMe staff reports CLI",
	Long: `hm manages the HireMe staff custom-reports backend.
It serves the staff reports API, runs ad-hoc report specifications against
the marketplace data sources, and exports results as CSV or printable HTML.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("HIREME")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-staff", "staff actor identifier")
	rootCmd.PersistentFlags().String("remote", "", "base URL of a running API server (empty runs against the local workspace)")
	rootCmd.PersistentFlags().String("token", "", "bearer token for --remote")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
	_ = viper.BindPFlag("remote", rootCmd.PersistentFlags().Lookup("remote"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(exportsCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(testCmd())
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default hireme.yml into the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the staff reports API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.LoadOptional(workspace)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if basePath != "" {
				cfg.Server.BasePath = basePath
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			secret := cfg.Auth.JWTSecret
			if env := os.Getenv("HIREME_JWT_SECRET"); env != "" {
				secret = env
			}
			handler, err := server.New(server.Config{
				Store:     query.Store{DB: conn},
				Events:    events.Writer{DB: conn},
				Export:    export.Engine{},
				ExportDir: cfg.Exports.Dir,
				BasePath:  cfg.Server.BasePath,
				Auth: server.AuthConfig{
					JWTSecret: secret,
					TokenTTL:  time.Duration(cfg.Auth.TokenTTLMin) * time.Minute,
				},
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving staff reports API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n",
				cfg.Server.Addr, cfg.Server.BasePath, cfg.Server.BasePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (overrides config)")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo marketplace data into the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
				if err := query.Seed(ctx, conn); err != nil {
					return err
				}
				fmt.Println("workspace seeded")
				return nil
			})
		},
	}
}

func sourcesCmd() *cobra.Command {
	src := &cobra.Command{Use: "sources", Short: "Inspect report data sources"}
	src.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List data sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			if viper.GetBool("json") {
				return printJSON(catalog.All())
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Key", "Name", "Fields", "Description"})
			for _, key := range catalog.Keys() {
				d, _ := catalog.Get(key)
				tw.AppendRow(table.Row{d.Key, d.DisplayName, len(d.Fields), d.Description})
			}
			tw.Render()
			return nil
		},
	})
	src.AddCommand(&cobra.Command{
		Use:   "show <key>",
		Short: "Show one data source's fields and operators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := catalog.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown data source %q", args[0])
			}
			if viper.GetBool("json") {
				return printJSON(d)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Field", "Label", "Type", "Operators"})
			for _, key := range orderedFieldKeys(d) {
				f := d.Fields[key]
				ops := make([]string, 0, 6)
				for _, op := range report.OperatorsFor(f.Type) {
					ops = append(ops, op.Value)
				}
				tw.AppendRow(table.Row{key, f.Label, f.Type, strings.Join(ops, ", ")})
			}
			tw.Render()
			return nil
		},
	})
	return src
}

func reportCmd() *cobra.Command {
	rep := &cobra.Command{Use: "report", Short: "Run and export custom reports"}
	rep.AddCommand(reportRunCmd())
	rep.AddCommand(reportExportCmd())
	return rep
}

func specFlags(cmd *cobra.Command, source *string, fields, filters, sorts *[]string) {
	cmd.Flags().StringVar(source, "source", "", "data source key")
	cmd.Flags().StringSliceVar(fields, "field", nil, "field to include (repeatable; default fields when omitted)")
	cmd.Flags().StringArrayVar(filters, "filter", nil, "filter as field:operator[:value] (repeatable)")
	cmd.Flags().StringArrayVar(sorts, "sort", nil, "sort as field[:asc|desc] (repeatable)")
	_ = cmd.MarkFlagRequired("source")
}

func buildSpec(source string, fields, filters, sorts []string) (domain.Spec, error) {
	sess := report.NewSession(catalog.All(), nil)
	sess.SelectDataSource(source)
	if _, ok := sess.Source(); !ok {
		return domain.Spec{}, fmt.Errorf("unknown data source %q", source)
	}
	if len(fields) > 0 {
		sess.Spec.SelectedFields = nil
		for _, f := range fields {
			sess.ToggleField(f)
		}
	}
	for _, raw := range filters {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) < 2 {
			return domain.Spec{}, fmt.Errorf("filter %q must be field:operator[:value]", raw)
		}
		i := sess.AddFilter()
		patch := report.FilterPatch{Field: &parts[0], Operator: &parts[1]}
		if len(parts) == 3 {
			patch.Value = &parts[2]
		}
		if err := sess.UpdateFilter(i, patch); err != nil {
			return domain.Spec{}, err
		}
	}
	for _, raw := range sorts {
		parts := strings.SplitN(raw, ":", 2)
		dir := "asc"
		if len(parts) == 2 {
			dir = parts[1]
		}
		i := sess.AddSort()
		if err := sess.UpdateSort(i, report.SortPatch{Field: &parts[0], Direction: &dir}); err != nil {
			return domain.Spec{}, err
		}
	}
	return sess.BuildRequest()
}

func reportRunCmd() *cobra.Command {
	var source string
	var fields, filters, sorts []string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a report specification and preview the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := buildSpec(source, fields, filters, sorts)
			if err != nil {
				return err
			}
			res, err := executeSpec(cmd.Context(), spec)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(res)
			}
			printResult(spec, res)
			return nil
		},
	}
	specFlags(cmd, &source, &fields, &filters, &sorts)
	return cmd
}

func reportExportCmd() *cobra.Command {
	var source, format, outDir string
	var fields, filters, sorts []string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Execute a report specification and save a CSV or printable HTML export",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "html" {
				return fmt.Errorf("--format must be csv or html")
			}
			spec, err := buildSpec(source, fields, filters, sorts)
			if err != nil {
				return err
			}
			res, err := executeSpec(cmd.Context(), spec)
			if err != nil {
				return err
			}
			src, _ := catalog.Get(spec.DataSource)
			eng := export.Engine{}
			var artifact export.Artifact
			if format == "csv" {
				artifact, err = eng.CSV(&res, spec, src)
			} else {
				artifact, err = eng.Print(&res, spec, src, export.FileViewer{Dir: outDir})
			}
			if err != nil {
				return err
			}
			if format == "csv" {
				if err := (export.FileViewer{Dir: outDir}).View(artifact); err != nil {
					return err
				}
			}
			return recordExport(cmd.Context(), spec, format, artifact, len(res.Results))
		},
	}
	specFlags(cmd, &source, &fields, &filters, &sorts)
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or html")
	cmd.Flags().StringVar(&outDir, "out", "exports", "output directory")
	return cmd
}

func exportsCmd() *cobra.Command {
	exp := &cobra.Command{Use: "exports", Short: "Inspect recorded exports"}
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded export artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
				items, err := query.Store{DB: conn}.ListExports(ctx, limit)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Source", "Format", "Filename", "Rows", "Created"})
				for _, r := range items {
					tw.AppendRow(table.Row{r.ID, r.DataSource, r.Format, r.Filename, r.RowCount, r.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	list.Flags().IntVar(&limit, "n", 50, "number of exports")
	exp.AddCommand(list)
	return exp
}

func authCmd() *cobra.Command {
	auth := &cobra.Command{Use: "auth", Short: "Authentication helpers"}
	var actor string
	token := &cobra.Command{
		Use:   "token",
		Short: "Issue a staff bearer token using the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			secret := cfg.Auth.JWTSecret
			if env := os.Getenv("HIREME_JWT_SECRET"); env != "" {
				secret = env
			}
			tok, err := server.IssueToken(secret, actor, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute, time.Now())
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	token.Flags().StringVar(&actor, "actor", "local-staff", "actor id to embed in the token")
	auth.AddCommand(token)
	return auth
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Probe connectivity (remote API or local workspace database)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote := viper.GetString("remote"); remote != "" {
				out, err := sdkClient(remote).Ping(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(out)
			}
			return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB) error {
				if err := conn.PingContext(ctx); err != nil {
					return err
				}
				v, err := migrate.Version(conn)
				if err != nil {
					return err
				}
				fmt.Printf("workspace database ok; schema v%d, %d data sources\n", v, len(catalog.Keys()))
				return nil
			})
		},
	}
}

// --- helpers ---

func executeSpec(ctx context.Context, spec domain.Spec) (domain.Result, error) {
	if remote := viper.GetString("remote"); remote != "" {
		return sdkClient(remote).Execute(ctx, spec)
	}
	var res domain.Result
	err := withDB(ctx, func(ctx context.Context, conn *sql.DB) error {
		var execErr error
		res, execErr = query.Store{DB: conn}.Execute(ctx, spec)
		if execErr != nil {
			return execErr
		}
		return events.Writer{DB: conn}.Append(ctx, "report.generated", spec.DataSource, viper.GetString("actor-id"), events.EventPayload{
			"fields": len(spec.SelectedFields),
			"total":  res.Pagination.Total,
		})
	})
	return res, err
}

func recordExport(ctx context.Context, spec domain.Spec, format string, artifact export.Artifact, rows int) error {
	if remote := viper.GetString("remote"); remote != "" {
		rec, err := sdkClient(remote).CreateExport(ctx, spec, format)
		if err != nil {
			return err
		}
		fmt.Println("export recorded:", rec.ID)
		return nil
	}
	return withDB(ctx, func(ctx context.Context, conn *sql.DB) error {
		store := query.Store{DB: conn}
		rec := domain.ExportRecord{
			ID:         uuid.NewString(),
			DataSource: spec.DataSource,
			Format:     format,
			Filename:   artifact.Filename,
			RowCount:   rows,
			CreatedBy:  viper.GetString("actor-id"),
			CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if err := store.InsertExport(ctx, rec); err != nil {
			return err
		}
		if err := (events.Writer{DB: conn}).Append(ctx, "export.generated", spec.DataSource, rec.CreatedBy, events.EventPayload{
			"export_id": rec.ID,
			"format":    format,
			"rows":      rows,
		}); err != nil {
			return err
		}
		fmt.Println("wrote", artifact.Filename)
		return nil
	})
}

func sdkClient(remote string) *hiremesdk.Client {
	c := hiremesdk.New(remote)
	c.BearerToken = viper.GetString("token")
	return c
}

func withDB(ctx context.Context, fn func(context.Context, *sql.DB) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, conn)
}

func printResult(spec domain.Spec, res domain.Result) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	src, _ := catalog.Get(spec.DataSource)
	header := table.Row{}
	for _, key := range spec.SelectedFields {
		label := key
		if f, ok := src.Fields[key]; ok && f.Label != "" {
			label = f.Label
		}
		header = append(header, label)
	}
	tw.AppendHeader(header)
	for _, row := range res.Results {
		out := table.Row{}
		for _, key := range spec.SelectedFields {
			out = append(out, domain.CellString(row[key]))
		}
		tw.AppendRow(out)
	}
	tw.Render()
	fmt.Printf("%d-%d of %d records, %d filter(s) applied\n",
		res.Pagination.From, res.Pagination.To, res.Pagination.Total, res.Meta.FiltersApplied)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orderedFieldKeys(d domain.DataSource) []string {
	keys := make([]string, 0, len(d.Fields))
	seen := map[string]bool{}
	for _, k := range d.DefaultFields {
		if d.Has(k) && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range d.Fields {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"farmstore.GO/config"
	"farmstore.GO/cron/jobs"
	catalogRepo "farmstore.GO/model/repository/catalog"
	"farmstore.GO/service/catalog"
	"farmstore.GO/service/remote"
	"farmstore.GO/service/search"
)

var (
	importFile  string
	importIndex bool

	normKind   string
	normID     string
	normPage   int
	normSize   int
	normRemote bool
)

var catalogImportCmd = &cobra.Command{
	Use:   "catalog:import",
	Short: "Import raw catalog records from a JSON array file",
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(importFile)
		if err != nil {
			fmt.Printf("Failed to open file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		db, err := OpenDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		repo, err := catalogRepo.NewCatalogRepository(db)
		if err != nil {
			fmt.Printf("Repository: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		res, err := catalog.Import(ctx, repo, f)
		if err != nil {
			fmt.Printf("Import failed: %v\n", err)
			os.Exit(1)
		}
		for _, w := range res.Warnings {
			fmt.Printf("  [warn] %s\n", w)
		}
		fmt.Printf(`
=== Import Report ===
Rows:       %d
Created:    %d
Updated:    %d
Skipped:    %d
Total time: %s
=====================
`, res.TotalRows, res.Created, res.Updated, res.Skipped, res.TotalTime.Round(time.Millisecond))

		if importIndex {
			n, err := jobs.IndexCatalog(ctx, db, search.NewServiceFromEnv(nil))
			if err != nil {
				fmt.Printf("Indexing failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Indexed %d records\n", n)
		}
	},
}

// catalogSource is the remote server with --remote, the database otherwise.
func catalogSource() (catalog.Source, error) {
	if normRemote {
		return remote.NewCatalogClient(remoteConfig()), nil
	}
	db, err := OpenDB()
	if err != nil {
		return nil, err
	}
	return catalogRepo.NewCatalogRepository(db)
}

var catalogNormalizeCmd = &cobra.Command{
	Use:   "catalog:normalize",
	Short: "Print normalized products as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := catalogSource()
		if err != nil {
			fmt.Printf("Catalog source: %v\n", err)
			os.Exit(1)
		}
		svc := catalog.NewService(src, nil, 0, catalog.NewNormalizer())
		ctx := context.Background()
		page := catalog.Page{Number: normPage, Size: normSize}

		var out interface{}
		switch {
		case normID != "":
			out, err = svc.Product(ctx, normID)
		case normKind != "":
			out, err = svc.List(ctx, catalog.Kind(normKind), page)
		default:
			out, err = svc.FetchAll(ctx, page)
		}
		if err != nil {
			fmt.Printf("Normalize failed: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	},
}

var catalogAuditCmd = &cobra.Command{
	Use:   "catalog:audit",
	Short: "Compare stored stock and price aggregates with normalized values",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := OpenDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		findings, err := jobs.AuditCatalog(context.Background(), db)
		if err != nil {
			fmt.Printf("Audit failed: %v\n", err)
			os.Exit(1)
		}
		for _, f := range findings {
			fmt.Println(f)
		}
		fmt.Printf("%d findings\n", len(findings))
		if len(findings) > 0 {
			os.Exit(2)
		}
	},
}

var catalogIndexCmd = &cobra.Command{
	Use:   "catalog:index",
	Short: "Push all stored records into the Elasticsearch index",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := OpenDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		n, err := jobs.IndexCatalog(context.Background(), db, search.NewServiceFromEnv(nil))
		if err != nil {
			fmt.Printf("Indexing failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d records\n", n)
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Create or update the catalog and cart tables",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := OpenDB(); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migration complete.")
	},
}

func remoteConfig() remote.Config {
	return remote.Config{
		BaseURL: config.GetEnv("FARMSTORE_URL", "http://localhost:8080"),
		APIKey:  os.Getenv("API_KEY"),
		User:    os.Getenv("API_USER"),
		Pass:    os.Getenv("API_PASS"),
	}
}

func init() {
	catalogImportCmd.Flags().StringVarP(&importFile, "file", "f", "", "JSON file with an array of raw records")
	catalogImportCmd.Flags().BoolVar(&importIndex, "index", false, "Reindex Elasticsearch after import")
	_ = catalogImportCmd.MarkFlagRequired("file")

	catalogNormalizeCmd.Flags().StringVarP(&normKind, "kind", "k", "", "unit or weight (both when empty)")
	catalogNormalizeCmd.Flags().StringVar(&normID, "id", "", "Normalize a single product")
	catalogNormalizeCmd.Flags().IntVarP(&normPage, "page", "p", 1, "Page number")
	catalogNormalizeCmd.Flags().IntVarP(&normSize, "size", "s", catalog.DefaultPageSize, "Page size")
	catalogNormalizeCmd.Flags().BoolVar(&normRemote, "remote", false, "Read listings from FARMSTORE_URL instead of the database")

	rootCmd.AddCommand(catalogImportCmd, catalogNormalizeCmd, catalogAuditCmd, catalogIndexCmd, dbMigrateCmd)
}

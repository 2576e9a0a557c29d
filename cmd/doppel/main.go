package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gregcmartin/doppel/internal/catalog"
	"github.com/gregcmartin/doppel/internal/engine"
	"github.com/gregcmartin/doppel/internal/parser"
	"github.com/gregcmartin/doppel/internal/reporter"
	"github.com/gregcmartin/doppel/internal/semantic"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logger *logrus.Logger
	debug  bool

	catalogDir     string
	outputFile     string
	threshold      float64
	semanticMode   bool
	embeddingURL   string
	embeddingModel string
	indexPath      string
	runTimeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "doppel",
	Short: "Doppel - API Duplicate Detection Tool",
	Long: `Doppel detects duplicate or near-duplicate API definitions in a catalog
by combining structural comparison of endpoints and schemas with optional
semantic similarity over vector embeddings.`,
}

var parseCmd = &cobra.Command{
	Use:   "parse [API spec file]",
	Short: "Parse an API specification and show what was extracted",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		specPath := args[0]

		// Ensure the file exists
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			logger.Errorf("Specification file not found: %s", specPath)
			os.Exit(1)
		}

		p := parser.New(logger)
		api, err := p.ParseFile(specPath)
		if err != nil {
			logger.Errorf("Parsing failed: %v", err)
			os.Exit(1)
		}

		logger.WithFields(logrus.Fields{
			"identity":  api.Identity.String(),
			"title":     api.Title,
			"endpoints": len(api.Endpoints),
			"schemas":   len(api.Schemas),
		}).Info("Specification parsed")
		for _, ep := range api.Endpoints {
			logger.Info("  ", ep.Display())
		}
		for _, schema := range api.Schemas {
			logger.Infof("  schema %s (%d properties)", schema.Name, len(schema.Properties))
		}
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect [candidate spec file]",
	Short: "Detect duplicates of a candidate API within a catalog",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if catalogDir == "" {
			logger.Error("Catalog directory is required for detection")
			os.Exit(1)
		}

		specPath := args[0]
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			logger.Errorf("Specification file not found: %s", specPath)
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		p := parser.New(logger)
		candidate, err := p.ParseFile(specPath)
		if err != nil {
			logger.Errorf("Failed to parse candidate spec: %v", err)
			os.Exit(1)
		}

		apis, err := catalog.NewDir(logger, p, catalogDir).GetAllAPIs(ctx)
		if err != nil {
			logger.Errorf("Failed to load catalog: %v", err)
			os.Exit(1)
		}

		var embedder semantic.Embedder
		var index semantic.VectorIndex
		if semanticMode {
			if embeddingURL == "" {
				logger.Error("Semantic mode requires an embedding endpoint (--embedding-url)")
				os.Exit(1)
			}
			embedder = semantic.NewHTTPEmbedder(logger, embeddingURL, embeddingModel,
				os.Getenv("DOPPEL_EMBEDDING_KEY"), 30*time.Second)
			fileIndex, err := semantic.OpenFileIndex(logger, indexPath)
			if err != nil {
				logger.Errorf("Failed to open vector index: %v", err)
				os.Exit(1)
			}
			index = fileIndex
		}

		eng := engine.New(logger, embedder, index)
		report, err := eng.Detect(ctx, candidate, apis, threshold, semanticMode)
		if err != nil {
			logger.Errorf("Detection failed: %v", err)
			os.Exit(1)
		}

		if outputFile == "" {
			outputFile = fmt.Sprintf("doppel-report-%s.json", candidate.Identity.Name)
		}
		if err := reporter.New(logger).WriteReport(report, outputFile); err != nil {
			logger.Errorf("Failed to write report: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	// Setup logging
	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Add global flags
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false,
		"Enable debug logging")

	// Add command flags
	detectCmd.Flags().StringVarP(&catalogDir, "catalog", "c", "",
		"Directory of existing API specifications to compare against (required)")
	detectCmd.Flags().StringVarP(&outputFile, "output", "o", "",
		"Output file for the duplicate report (default: doppel-report-<api>.json)")
	detectCmd.Flags().Float64VarP(&threshold, "threshold", "t", engine.DefaultThreshold,
		"Combined similarity score above which an API counts as a duplicate candidate")
	detectCmd.Flags().BoolVar(&semanticMode, "semantic", false,
		"Enable semantic similarity via vector embeddings")
	detectCmd.Flags().StringVar(&embeddingURL, "embedding-url", "",
		"Base URL of an OpenAI-style embeddings endpoint")
	detectCmd.Flags().StringVar(&embeddingModel, "embedding-model", "text-embedding-3-small",
		"Embedding model identifier")
	detectCmd.Flags().StringVar(&indexPath, "index", "doppel-index.json",
		"Path of the vector index file")
	detectCmd.Flags().DurationVar(&runTimeout, "timeout", 60*time.Second,
		"Overall timeout for one detection run")

	// Add commands
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(detectCmd)

	// Set log level based on debug flag
	cobra.OnInitialize(func() {
		if debug {
			logger.SetLevel(logrus.DebugLevel)
		}
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

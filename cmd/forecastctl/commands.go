package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/features"
	"StockCast/internal/services/forecast"
	"StockCast/internal/services/inference"
)

type runtimeFlags struct {
	scaler    string
	entities  string
	modelURL  string
	modelName string
	timeout   time.Duration
}

func (f *runtimeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scaler, "scaler", os.Getenv("SCALER_PATH"), "scaler artifact JSON")
	cmd.Flags().StringVar(&f.entities, "entities", os.Getenv("ENTITY_MAP_PATH"), "entity map JSON")
	cmd.Flags().StringVar(&f.modelURL, "model-url", os.Getenv("MODEL_URL"), "model server base URL")
	cmd.Flags().StringVar(&f.modelName, "model-name", "stockcast", "served model name")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 10*time.Second, "model request timeout")
}

func (f *runtimeFlags) service() (*forecast.Service, error) {
	if f.scaler == "" || f.entities == "" {
		return nil, fmt.Errorf("--scaler and --entities are required")
	}
	scaler, err := features.LoadScaler(f.scaler)
	if err != nil {
		return nil, err
	}
	entities, err := features.LoadSymbolMap(f.entities)
	if err != nil {
		return nil, err
	}
	model, err := inference.NewHTTPModel(inference.Config{URL: f.modelURL, Name: f.modelName, Timeout: f.timeout})
	if err != nil {
		return nil, err
	}
	rt, err := forecast.NewRuntime(model, scaler, entities)
	if err != nil {
		return nil, err
	}
	return forecast.NewService(rt), nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "forecastctl",
		Short:         "Run stock price forecasts against a served model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPredictCmd(), newSymbolsCmd())
	return root
}

func newPredictCmd() *cobra.Command {
	var (
		rf      runtimeFlags
		history string
		symbol  string
		nhead   int
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast closing prices from a history JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := readHistory(history)
			if err != nil {
				return err
			}
			svc, err := rf.service()
			if err != nil {
				return err
			}
			f, err := svc.Predict(cmd.Context(), records, symbol, nhead)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), f)
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&history, "history", "", "history JSON file, - for stdin")
	cmd.Flags().StringVar(&symbol, "symbol", "", "trading code")
	cmd.Flags().IntVar(&nhead, "nhead", models.DefaultNHead, "days to forecast (1, 3 or 7)")
	_ = cmd.MarkFlagRequired("history")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func newSymbolsCmd() *cobra.Command {
	var (
		rf    runtimeFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "List the trading codes the model knows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entities, err := features.LoadSymbolMap(rf.entities)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"symbols": entities.Sample(limit),
				"total":   entities.Len(),
			})
		},
	}
	cmd.Flags().StringVar(&rf.entities, "entities", os.Getenv("ENTITY_MAP_PATH"), "entity map JSON")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum symbols to print")
	return cmd
}

// readHistory accepts either a bare array of records or a predict request body.
func readHistory(path string) ([]models.HistoricalRecord, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var recs []models.HistoryRecordRequest
	if err := json.Unmarshal(b, &recs); err != nil {
		var req models.PredictRequest
		if err2 := json.Unmarshal(b, &req); err2 != nil {
			return nil, fmt.Errorf("parse history: %w", err)
		}
		recs = req.History
	}
	return models.ParseHistory(recs)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

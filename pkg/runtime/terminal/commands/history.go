package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/revenuecast/pkg/services/export"
	"github.com/de-tools/revenuecast/pkg/services/history"
	"github.com/de-tools/revenuecast/pkg/store/duckdb"
	duckpredictions "github.com/de-tools/revenuecast/pkg/store/duckdb/predictions"
	"github.com/de-tools/revenuecast/pkg/store/s3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type HistoryExportCmd struct {
	owner      string
	dbPath     string
	bucket     string
	prefix     string
	awsProfile string
	awsRegion  string
}

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Work with saved predictions",
	}
	cmd.AddCommand(newHistoryExportCmd())
	return cmd
}

func newHistoryExportCmd() *cobra.Command {
	hc := &HistoryExportCmd{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an owner's saved predictions as CSV",
		Long: "Writes the CSV to stdout, or uploads it to S3 under " +
			"<prefix>/<owner>/<timestamp>.csv when --bucket is set.",
		RunE: hc.run,
	}

	cmd.Flags().StringVar(&hc.owner, "owner", "", "User id whose predictions are exported")
	cmd.Flags().StringVar(&hc.dbPath, "db", "revenuecast.db", "Path to the DuckDB database")
	cmd.Flags().StringVar(&hc.bucket, "bucket", "", "S3 bucket to upload to")
	cmd.Flags().StringVar(&hc.prefix, "prefix", "exports", "Key prefix inside the bucket")
	cmd.Flags().StringVar(&hc.awsProfile, "aws-profile", "", "Shared AWS config profile")
	cmd.Flags().StringVar(&hc.awsRegion, "aws-region", "", "AWS region override")

	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func (hc *HistoryExportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: hc.dbPath})
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", hc.dbPath, err)
	}
	defer db.Close()

	store, err := duckpredictions.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create prediction store: %w", err)
	}
	svc := history.NewService(store)

	if hc.bucket == "" {
		if _, err := export.NewExporter(svc, nil, "").WriteTo(ctx, hc.owner, cmd.OutOrStdout()); err != nil {
			return err
		}
		return nil
	}

	writer, err := s3.NewObjectWriter(ctx, s3.Settings{
		Profile: hc.awsProfile,
		Region:  hc.awsRegion,
		Bucket:  hc.bucket,
	})
	if err != nil {
		return fmt.Errorf("failed to create S3 writer: %w", err)
	}

	location, n, err := export.NewExporter(svc, writer, hc.prefix).Export(ctx, hc.owner)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("location", location).Msg("upload finished")
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d predictions to %s\n", n, location)
	return nil
}

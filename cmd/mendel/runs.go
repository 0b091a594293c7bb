package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/ternarybob/mendel/internal/models"
)

var (
	runsLimit     int
	runsOffset    int
	recordsRunID  int64
	recordsID     int64
	recordsLimit  int
	recordsOffset int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted extraction runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List extraction runs, newest first",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show one run and its Golden Records",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List stored Golden Records",
	RunE:  runRecords,
}

func init() {
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list")
	runsListCmd.Flags().IntVar(&runsOffset, "offset", 0, "Runs to skip")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	recordsCmd.Flags().Int64Var(&recordsRunID, "run", 0, "List records for one run")
	recordsCmd.Flags().Int64Var(&recordsID, "id", 0, "Print one record as JSON")
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 50, "Maximum records to list")
	recordsCmd.Flags().IntVar(&recordsOffset, "offset", 0, "Records to skip")
}

func runRunsList(cmd *cobra.Command, args []string) error {
	service, manager, err := newHistoryService(cmd)
	if err != nil {
		return err
	}
	defer manager.Close()

	runs, err := service.ListRuns(cmd.Context(), runsLimit, runsOffset)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No extraction runs stored")
		return nil
	}

	for _, run := range runs {
		finished := "-"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("run %-4d  %s  %-9s  pdfs %-3d  golden %-3d  $%.4f  finished %s\n",
			run.ID, run.StartedAt.Format("2006-01-02 15:04"), run.Status,
			run.PDFCount, run.GoldenRecordsCount, run.TotalCost, finished)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	service, manager, err := newHistoryService(cmd)
	if err != nil {
		return err
	}
	defer manager.Close()

	detail, err := service.GetRunDetail(cmd.Context(), runID)
	if err != nil {
		return err
	}

	run := detail.Run
	fmt.Printf("Run %d  status %s  started %s\n", run.ID, run.Status, run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  pdfs %d  golden records %d  cost $%.4f\n", run.PDFCount, run.GoldenRecordsCount, run.TotalCost)
	if run.ErrorMessage != nil && *run.ErrorMessage != "" {
		fmt.Printf("  error: %s\n", *run.ErrorMessage)
	}

	if len(detail.GoldenRecords) == 0 {
		fmt.Println("  no golden records")
		return nil
	}
	fmt.Println()
	for _, record := range detail.GoldenRecords {
		printRecordLine(record)
	}
	return nil
}

func runRecords(cmd *cobra.Command, args []string) error {
	service, manager, err := newHistoryService(cmd)
	if err != nil {
		return err
	}
	defer manager.Close()

	if recordsID > 0 {
		record, err := service.GetGoldenRecord(cmd.Context(), recordsID)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	records, err := service.ListGoldenRecords(cmd.Context(), recordsRunID, recordsLimit, recordsOffset)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No golden records stored")
		return nil
	}
	for _, record := range records {
		printRecordLine(record)
	}
	return nil
}

func printRecordLine(record models.GoldenRecord) {
	brand := "-"
	if record.Brand != nil && *record.Brand != "" {
		brand = *record.Brand
	}
	fmt.Printf("  #%-5d %-40s  %-10s  %-6s  v%-3d  sources %d  completeness %.1f%%\n",
		record.ID, record.ProductName, brand, record.Region,
		record.Version, record.SourceCount, record.Completeness)
}

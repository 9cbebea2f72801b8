/*
main.go - One-shot batch operations over the same stores as the server

OPERATIONS:
  -op=allocate  -month=9월 -mlb=60 -dx=80 -dv=70 -st=90
      Gate-checked assignment run; prints per-brand fulfillment.
  -op=reset     [-month=9월]
      Month-scoped cascaded reset, or full reset when no month is given.
  -op=convert   -in=fnfcrew.xlsx [-sheet=fnfcrew]
      Raw contract workbook -> roster CSV conversion.
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fnfcrew/assignment-engine/config"
	"github.com/fnfcrew/assignment-engine/crew"
	"github.com/fnfcrew/assignment-engine/engine"
	"github.com/fnfcrew/assignment-engine/logger"
	"github.com/fnfcrew/assignment-engine/store/csvfile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	op := flag.String("op", "", "operation: allocate, reset, convert")
	dataDir := flag.String("data", cfg.DataDir, "data directory")
	seasonFlag := flag.String("season", cfg.Season, "season (25FW, 26SS, 26FW, 27SS)")
	month := flag.String("month", "", "target month label, e.g. 9월")
	mlb := flag.Int("mlb", 0, "MLB requested quantity")
	dx := flag.Int("dx", 0, "DX requested quantity")
	dv := flag.Int("dv", 0, "DV requested quantity")
	st := flag.Int("st", 0, "ST requested quantity")
	in := flag.String("in", "", "input workbook for -op=convert")
	sheet := flag.String("sheet", "", "workbook sheet name (default: first sheet)")
	flag.Parse()

	logger.Init(cfg)
	log := logger.Log

	season, ok := crew.ParseSeason(*seasonFlag)
	if !ok {
		log.Fatalf("unknown season %q", *seasonFlag)
	}

	rosterStore := csvfile.NewRosterStore(*dataDir)
	ledgerStore := csvfile.NewLedgerStore(*dataDir)

	switch *op {
	case "allocate":
		err = runAllocate(rosterStore, ledgerStore, season, crew.Month(*month), engine.AllocationRequest{
			crew.BrandMLB: *mlb,
			crew.BrandDX:  *dx,
			crew.BrandDV:  *dv,
			crew.BrandST:  *st,
		})
	case "reset":
		err = runReset(ledgerStore, season, crew.Month(*month))
	case "convert":
		err = runConvert(rosterStore, *in, *sheet)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runAllocate(rosterStore *csvfile.RosterStore, ledgerStore *csvfile.LedgerStore, season crew.Season, month crew.Month, requests engine.AllocationRequest) error {
	roster, err := rosterStore.Load()
	if err != nil {
		return err
	}
	assignments, err := ledgerStore.LoadAssignments()
	if err != nil {
		return err
	}
	executions, err := ledgerStore.LoadExecutions()
	if err != nil {
		return err
	}

	decision, err := engine.CheckMonthGate(season, month, assignments, executions)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		printGateBlock(decision)
		return errors.New("assignment blocked")
	}

	result := engine.Allocate(month, requests, roster, assignments, executions)
	if len(result.Records) == 0 {
		fmt.Println("no new assignments")
		return nil
	}
	if err := ledgerStore.SaveAssignments(append(assignments, result.Records...)); err != nil {
		return err
	}

	fmt.Printf("%s: %d assignment(s) saved\n", month, len(result.Records))
	for _, b := range crew.Brands() {
		fmt.Printf("  %s: requested %d, assigned %d\n", b, requests[b], result.Assigned[b])
	}
	return nil
}

func runReset(ledgerStore *csvfile.LedgerStore, season crew.Season, month crew.Month) error {
	assignments, err := ledgerStore.LoadAssignments()
	if err != nil {
		return err
	}
	executions, err := ledgerStore.LoadExecutions()
	if err != nil {
		return err
	}

	var result engine.ResetResult
	if month == "" {
		result = engine.ResetAll(assignments, executions)
		if err := ledgerStore.RemoveAssignmentLedger(); err != nil {
			return err
		}
	} else {
		result, err = engine.ResetFromMonth(season, month, assignments, executions)
		if err != nil {
			return err
		}
		if err := ledgerStore.SaveAssignments(result.Assignments); err != nil {
			return err
		}
	}
	if err := ledgerStore.SaveExecutions(result.Executions); err != nil {
		return err
	}
	fmt.Printf("removed %d assignment(s), %d execution(s)\n",
		result.RemovedAssignments, result.RemovedExecutions)
	return nil
}

func runConvert(rosterStore *csvfile.RosterStore, in, sheet string) error {
	if in == "" {
		return errors.New("-op=convert requires -in=<workbook.xlsx>")
	}
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := rosterStore.ConvertRosterWorkbook(f, sheet)
	if err != nil {
		return err
	}
	fmt.Printf("converted %d influencer(s) to %s\n", n, rosterStore.Path)
	return nil
}

func printGateBlock(d engine.GateDecision) {
	switch d.Reason {
	case engine.BlockedExecutionExists:
		fmt.Printf("blocked: %s already has reported executions:\n", d.Month)
		for _, exec := range d.Executions {
			fmt.Printf("  %s - %s (%s)\n", exec.Brand, exec.InfluencerName, exec.InfluencerID)
		}
		fmt.Println("reset the month before re-running assignment")
	case engine.BlockedMissingExecution:
		fmt.Printf("blocked: %s has assignments without execution reports:\n", d.Month)
		for _, rec := range d.Assignments {
			fmt.Printf("  %s - %s (%s)\n", rec.Brand, rec.InfluencerName, rec.InfluencerID)
		}
		fmt.Println("upload the month's execution results before proceeding")
	}
}

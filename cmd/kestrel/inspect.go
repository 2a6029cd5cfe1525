package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openfsw/kestrel/command"
	"github.com/openfsw/kestrel/datarecording"
	"github.com/openfsw/kestrel/deployment"
	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/telemetry"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print the events of a recording.",
	Run: func(cmd *cobra.Command, _ []string) {
		reader, params := openRecording(cmd)
		defer reader.Close()

		reader.MapTable("events", events.Entry{})

		rows, total, err := reader.Query(
			context.Background(), "events", params)
		if err != nil {
			log.Fatalf("cannot query events: %v", err)
		}

		w := newTabWriter()
		fmt.Fprintln(w, "TIME\tSEVERITY\tCOMPONENT\tNAME\tMESSAGE")
		for _, r := range rows {
			e := r.(*events.Entry)
			fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\t%s\n",
				e.Time, e.Severity, e.Component, e.Name, e.Message)
		}
		w.Flush()

		reportRemainder(len(rows), total)
	},
}

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Print the telemetry samples of a recording.",
	Run: func(cmd *cobra.Command, _ []string) {
		reader, params := openRecording(cmd)
		defer reader.Close()

		reader.MapTable("telemetry", telemetry.Sample{})

		rows, total, err := reader.Query(
			context.Background(), "telemetry", params)
		if err != nil {
			log.Fatalf("cannot query telemetry: %v", err)
		}

		w := newTabWriter()
		fmt.Fprintln(w, "TIME\tCHANNEL\tVALUE\tTEXT")
		for _, r := range rows {
			s := r.(*telemetry.Sample)
			fmt.Fprintf(w, "%.3f\t%s\t%v\t%s\n",
				s.Time, s.Channel, s.Value, s.Text)
		}
		w.Flush()

		reportRemainder(len(rows), total)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the run properties of a recording.",
	Run: func(cmd *cobra.Command, _ []string) {
		reader, params := openRecording(cmd)
		defer reader.Close()

		// Run properties carry no timestamps; insertion order is the
		// natural order here.
		params.OrderBy = ""

		reader.MapTable("run", deployment.RunInfo{})

		rows, _, err := reader.Query(context.Background(), "run", params)
		if err != nil {
			log.Fatalf("cannot query run info: %v", err)
		}

		w := newTabWriter()
		for _, r := range rows {
			p := r.(*deployment.RunInfo)
			fmt.Fprintf(w, "%s\t%s\n", p.Property, p.Value)
		}
		w.Flush()
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Print the command completions of a recording.",
	Run: func(cmd *cobra.Command, _ []string) {
		reader, params := openRecording(cmd)
		defer reader.Close()

		reader.MapTable("commands", command.Completion{})

		rows, total, err := reader.Query(
			context.Background(), "commands", params)
		if err != nil {
			log.Fatalf("cannot query commands: %v", err)
		}

		w := newTabWriter()
		fmt.Fprintln(w, "TIME\tOPCODE\tSEQ\tSTATUS")
		for _, r := range rows {
			c := r.(*command.Completion)
			fmt.Fprintf(w, "%.3f\t0x%X\t%d\t%s\n",
				c.Time, c.Opcode, c.Seq, c.Status)
		}
		w.Flush()

		reportRemainder(len(rows), total)
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(telemetryCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(infoCmd)

	addRecordingFlags(eventsCmd)
	addRecordingFlags(telemetryCmd)
	addRecordingFlags(commandsCmd)
	addRecordingFlags(infoCmd)
}

func addRecordingFlags(c *cobra.Command) {
	c.Flags().String("db", "",
		"recording database file to read (defaults to KESTREL_DB)")
	c.Flags().Int("limit", 50,
		"maximum number of records to print (0 prints all)")
	c.Flags().Int("offset", 0,
		"number of records to skip")
	c.Flags().String("where", "",
		"SQL filter, e.g. \"Severity = 'WARNING_HI'\"")
}

func openRecording(
	cmd *cobra.Command,
) (datarecording.DataReader, datarecording.QueryParams) {
	db, _ := cmd.Flags().GetString("db")
	if db == "" {
		db = envString("KESTREL_DB", "")
	}

	if db == "" {
		log.Fatal("must name a database file with --db or KESTREL_DB")
	}

	if _, err := os.Stat(db); err != nil {
		log.Fatalf("cannot open database file %s", db)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	where, _ := cmd.Flags().GetString("where")

	return datarecording.NewReader(db), datarecording.QueryParams{
		Where:   where,
		Limit:   limit,
		Offset:  offset,
		OrderBy: "Time",
	}
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
}

func reportRemainder(shown, total int) {
	if total > shown {
		fmt.Printf("showing %d of %d records\n", shown, total)
	}
}

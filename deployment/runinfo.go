package deployment

import (
	"os"
	"strings"
	"time"

	"github.com/openfsw/kestrel/datarecording"
)

// RunInfo is one property of the run that produced a recording, stored as a
// row of the run table so a recording stays self-describing.
type RunInfo struct {
	Property string
	Value    string
}

const runTimeFormat = "2006-01-02 15:04:05.000000000"

func recordRunStart(rec datarecording.DataRecorder, id string) {
	rec.CreateTable(runTable, RunInfo{})

	rec.InsertData(runTable, RunInfo{"Run ID", id})
	rec.InsertData(runTable,
		RunInfo{"Start Time", time.Now().Format(runTimeFormat)})
	rec.InsertData(runTable, RunInfo{"Command", strings.Join(os.Args, " ")})

	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	rec.InsertData(runTable, RunInfo{"Working Directory", wd})
}

func recordRunEnd(rec datarecording.DataRecorder) {
	rec.InsertData(runTable,
		RunInfo{"End Time", time.Now().Format(runTimeFormat)})
}

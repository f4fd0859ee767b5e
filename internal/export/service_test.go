package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docsketch/constants"
	"github.com/joseph-ayodele/docsketch/internal/repository"
)

func seededRepo(t *testing.T) (*repository.RunRepository, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	db, cleanup, err := repository.Open(ctx, repository.Config{
		DSN: filepath.Join(t.TempDir(), "runs.db"),
	}, nil)
	if err != nil {
		t.Fatalf("open run store: %v", err)
	}
	t.Cleanup(cleanup)
	runs := repository.NewRunRepository(db, nil)
	if err := runs.Init(ctx); err != nil {
		t.Fatalf("init run store: %v", err)
	}

	id := uuid.New()
	if err := runs.Start(ctx, id, "/tmp/doc.pdf"); err != nil {
		t.Fatal(err)
	}
	if err := runs.AddAttempts(ctx, []repository.AttemptRow{
		{RunID: id, Stage: constants.StageExtract, Position: 0, Name: "pdfcpu", Status: constants.AttemptStatusSuccess, DurationMS: 12},
		{RunID: id, Stage: constants.StageGenerate, Position: 0, Name: "openai", Status: constants.AttemptStatusFailure, Detail: "http 500", DurationMS: 900},
		{RunID: id, Stage: constants.StageGenerate, Position: 1, Name: "local-fallback", Status: constants.AttemptStatusSuccess, DurationMS: 4},
	}); err != nil {
		t.Fatal(err)
	}
	if err := runs.Finish(ctx, id, constants.RunStatusSucceeded, "a pump", "local-fallback", "/out/img.png", false); err != nil {
		t.Fatal(err)
	}
	return runs, id
}

func TestExportRunsXLSX(t *testing.T) {
	runs, id := seededRepo(t)
	svc := NewService(runs, nil)

	data, err := svc.ExportRunsXLSX(context.Background(), 10)
	if err != nil {
		t.Fatalf("ExportRunsXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := map[string]bool{"Runs": true, "Attempts": true}
	for _, s := range sheets {
		delete(want, s)
	}
	if len(want) != 0 {
		t.Fatalf("missing sheets %v in %v", want, sheets)
	}

	runRows, err := f.GetRows("Runs")
	if err != nil {
		t.Fatal(err)
	}
	if len(runRows) != 2 {
		t.Fatalf("run rows = %d, want header + 1", len(runRows))
	}
	if runRows[1][0] != id.String() {
		t.Errorf("run id cell = %q", runRows[1][0])
	}
	if runRows[1][4] != string(constants.RunStatusSucceeded) {
		t.Errorf("status cell = %q", runRows[1][4])
	}

	attemptRows, err := f.GetRows("Attempts")
	if err != nil {
		t.Fatal(err)
	}
	if len(attemptRows) != 4 {
		t.Fatalf("attempt rows = %d, want header + 3", len(attemptRows))
	}
	if attemptRows[2][5] != "http 500" {
		t.Errorf("detail cell = %q", attemptRows[2][5])
	}
}

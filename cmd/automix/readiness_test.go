package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadinessReportAlignsAndCountsMissing(t *testing.T) {
	var report readinessReport
	tools := report.section("Dependencies")
	tools.add("FFmpeg", verdictReady, "/usr/bin/ffmpeg")
	tools.add("rubberband", verdictDegraded, "not compiled into ffmpeg")
	dirs := report.section("Filesystem")
	dirs.add("Work directory", verdictMissing, "permission denied")

	var buf bytes.Buffer
	report.write(&buf, false)
	out := buf.String()

	want := "Dependencies\n" +
		"  FFmpeg:         [OK] /usr/bin/ffmpeg\n" +
		"  rubberband:     [LIMITED] not compiled into ffmpeg\n" +
		"\n" +
		"Filesystem\n" +
		"  Work directory: [MISSING] permission denied\n"
	if out != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", out, want)
	}
	if got := report.missing(); got != 1 {
		t.Fatalf("missing() = %d, want 1", got)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatal("expected no color codes when colorize is false")
	}
}

func TestPlanTableMergesPartColumn(t *testing.T) {
	tbl := newPlanTable(
		planColumn{title: "Part"},
		planColumn{title: "Bars", numeric: true},
		planColumn{title: "Clip"},
	).mergeColumns(0)
	tbl.append("intro", "6", "drums")
	tbl.append("intro", "", "bass")
	tbl.append("body", "4", "(silence)")

	out := tbl.render()
	if got := strings.Count(out, "intro"); got != 1 {
		t.Fatalf("expected merged part name once, got %d:\n%s", got, out)
	}
	for _, want := range []string{"drums", "bass", "body", "(silence)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
	if newPlanTable().render() != "" {
		t.Fatal("expected empty table without columns")
	}
}

package main

// ops.go — operaciones de consulta y administración sobre el estado
// persistido. Cada una ejecuta contra el store y termina el proceso.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/arbot/internal/adapters/notify"
	"github.com/alejandrodnm/arbot/internal/execmode"
	"github.com/alejandrodnm/arbot/internal/metrics"
	"github.com/alejandrodnm/arbot/internal/ports"
	"github.com/alejandrodnm/arbot/internal/review"
)

const historyLimit = 20

type opsFlags struct {
	status     bool
	queue      bool
	approve    int64
	reject     int64
	setMode    string
	dryRun     *bool
	setTrigger string
	history    bool
}

func (f opsFlags) any() bool {
	return f.status || f.queue || f.approve > 0 || f.reject > 0 ||
		f.setMode != "" || f.setTrigger != "" || f.history
}

type opsDeps struct {
	mode    *execmode.Controller
	queue   *review.Queue
	metrics *metrics.Aggregator
	runs    ports.RunStore
	console *notify.Console
}

// runOps ejecuta las operaciones pedidas y devuelve el exit code.
func runOps(ctx context.Context, f opsFlags, d opsDeps) int {
	switch {
	case f.status:
		d.console.PrintStatus(d.metrics.Current(ctx), d.mode.Get(ctx))

	case f.queue:
		items, err := d.queue.List(ctx)
		if err != nil {
			slog.Error("queue read failed", "err", err)
			return 1
		}
		d.console.PrintQueue(items)

	case f.approve > 0:
		applied, err := d.queue.Approve(ctx, f.approve)
		if err != nil {
			slog.Error("approve failed", "id", f.approve, "err", err)
			return 1
		}
		if !applied {
			fmt.Printf("item %d not pending (unknown id or already resolved)\n", f.approve)
			return 1
		}
		fmt.Printf("item %d approved\n", f.approve)

	case f.reject > 0:
		applied, err := d.queue.Reject(ctx, f.reject)
		if err != nil {
			slog.Error("reject failed", "id", f.reject, "err", err)
			return 1
		}
		if !applied {
			fmt.Printf("item %d not pending (unknown id or already resolved)\n", f.reject)
			return 1
		}
		fmt.Printf("item %d rejected\n", f.reject)

	case f.setMode != "":
		state, err := d.mode.Set(ctx, f.setMode, f.dryRun)
		if err != nil {
			slog.Error("set-mode failed", "err", err)
			return 1
		}
		fmt.Printf("mode=%s dry_run=%t\n", state.Mode, state.DryRun)

	case f.setTrigger != "":
		state, err := d.mode.SetTrigger(ctx, f.setTrigger)
		if err != nil {
			slog.Error("set-trigger failed", "err", err)
			return 1
		}
		fmt.Printf("trigger=%s\n", state.Trigger)

	case f.history:
		runs, err := d.runs.Runs(ctx, historyLimit)
		if err != nil {
			slog.Error("history read failed", "err", err)
			return 1
		}
		d.console.PrintRuns(runs)
	}
	return 0
}

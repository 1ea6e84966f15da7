package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/recipeshift/internal/formatter"
	"github.com/desertthunder/recipeshift/internal/services"
	"github.com/desertthunder/recipeshift/internal/shared"
	"github.com/desertthunder/recipeshift/internal/verify"
)

type verificationOp func(admin services.Admin, ctx context.Context) (*verify.Result, error)

var (
	verifyRecipes   verificationOp = services.Admin.VerifyRecipes
	verifyRatings   verificationOp = services.Admin.VerifyRatings
	verifyIntegrity verificationOp = services.Admin.VerifyIntegrity
	verifyOrphans   verificationOp = services.Admin.CheckOrphans
)

// VerifyAll runs every check and prints the report.
func (r *Runner) VerifyAll(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}
	defer r.close()

	report, err := r.admin.RunAllVerifications(ctx)
	if err != nil {
		return err
	}
	return r.writeReport(cmd, report)
}

// Verify returns the action running a single check. Its result is printed as a one-check report.
func (r *Runner) Verify(op verificationOp) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := r.prepare(cmd); err != nil {
			return err
		}
		defer r.close()

		start := time.Now()
		res, err := op(r.admin, ctx)
		if err != nil {
			return err
		}
		return r.writeReport(cmd, verify.NewReport([]*verify.Result{res}, start.UTC(), time.Since(start)))
	}
}

// writeReport renders report in the requested format, then fails with
// [shared.ErrVerificationFailed] when any check did not pass.
func (r *Runner) writeReport(cmd *cli.Command, report *verify.Report) error {
	data, err := formatter.FormatReport(report, cmd.String("format"))
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		r.logger.Info("report written", "path", path)
	} else if err := r.write(data); err != nil {
		return err
	}

	if !report.AllPassed {
		return fmt.Errorf("%w: %d of %d checks failed", shared.ErrVerificationFailed,
			report.Summary.FailedChecks, report.Summary.TotalChecks)
	}
	return nil
}

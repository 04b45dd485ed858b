package payroll

import (
	"context"
	"errors"
	"time"

	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/rateconfig"
	"go-payroll/internal/tax"

	"golang.org/x/sync/errgroup"
)

// batchConcurrency bounds the calculator fan-out so a large worker list
// does not hammer the rate cache with hundreds of parallel lookups.
const batchConcurrency = 8

// BreakdownCalculator is the slice of the tax engine payroll needs.
type BreakdownCalculator interface {
	ComputeBreakdown(ctx context.Context, grossSalary float64, date time.Time) (tax.Breakdown, error)
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	CalculateBatch(ctx context.Context, entries []SalaryEntry, date time.Time) (BatchPayrollResponse, error)
	CalculateWorkers(ctx context.Context, userID string, date time.Time) (BatchPayrollResponse, error)
	CalculateWorker(ctx context.Context, userID, workerID string, date time.Time) (PayrollLine, error)
}

type service struct {
	engine  BreakdownCalculator
	workers WorkerRepository
}

func NewService(engine BreakdownCalculator, workers WorkerRepository) Service {
	return &service{engine: engine, workers: workers}
}

func (s *service) CalculateBatch(
	ctx context.Context,
	entries []SalaryEntry,
	date time.Time,
) (BatchPayrollResponse, error) {
	if len(entries) == 0 {
		return BatchPayrollResponse{}, payrollerrors.ErrEmptyBatch
	}

	lines := make([]PayrollLine, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			breakdown, err := s.engine.ComputeBreakdown(gctx, entry.GrossSalary, date)
			if err != nil {
				return err
			}
			lines[i] = PayrollLine{
				WorkerName:   entry.Label,
				GrossSalary:  entry.GrossSalary,
				TaxBreakdown: breakdown,
				NetPay:       tax.Round2(entry.GrossSalary - breakdown.TotalDeductions),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchPayrollResponse{}, err
	}

	return BatchPayrollResponse{
		Date:    rateconfig.Day(date).Format("2006-01-02"),
		Lines:   lines,
		Summary: summarize(lines),
	}, nil
}

func (s *service) CalculateWorkers(
	ctx context.Context,
	userID string,
	date time.Time,
) (BatchPayrollResponse, error) {
	workers, err := s.workers.FindActiveByUser(ctx, userID)
	if err != nil {
		return BatchPayrollResponse{}, err
	}

	lines := make([]PayrollLine, len(workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, worker := range workers {
		i, worker := i, worker
		g.Go(func() error {
			line, err := s.lineFor(gctx, worker, date)
			if err != nil {
				return err
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchPayrollResponse{}, err
	}

	return BatchPayrollResponse{
		Date:    rateconfig.Day(date).Format("2006-01-02"),
		Lines:   lines,
		Summary: summarize(lines),
	}, nil
}

func (s *service) CalculateWorker(
	ctx context.Context,
	userID, workerID string,
	date time.Time,
) (PayrollLine, error) {
	worker, err := s.workers.FindByIDAndUser(ctx, userID, workerID)
	if err != nil {
		return PayrollLine{}, err
	}
	if worker == nil {
		return PayrollLine{}, payrollerrors.ErrWorkerNotFound
	}

	return s.lineFor(ctx, *worker, date)
}

func (s *service) lineFor(ctx context.Context, worker Worker, date time.Time) (PayrollLine, error) {
	breakdown, err := s.engine.ComputeBreakdown(ctx, worker.SalaryGross, date)
	if err != nil {
		return PayrollLine{}, err
	}

	return PayrollLine{
		WorkerID:     worker.ID.String(),
		WorkerName:   worker.Name,
		PhoneNumber:  worker.PhoneNumber,
		GrossSalary:  worker.SalaryGross,
		TaxBreakdown: breakdown,
		NetPay:       tax.Round2(worker.SalaryGross - breakdown.TotalDeductions),
	}, nil
}

func summarize(lines []PayrollLine) BatchSummary {
	var gross, deductions, net float64
	for _, line := range lines {
		gross += line.GrossSalary
		deductions += line.TaxBreakdown.TotalDeductions
		net += line.NetPay
	}
	return BatchSummary{
		TotalGross:      tax.Round2(gross),
		TotalDeductions: tax.Round2(deductions),
		TotalNetPay:     tax.Round2(net),
		WorkerCount:     len(lines),
	}
}

// ParseDate parses the optional YYYY-MM-DD payroll date, defaulting to today.
func ParseDate(raw *string) (time.Time, error) {
	if raw == nil || *raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return time.Time{}, errors.New("invalid date format, expected YYYY-MM-DD")
	}
	return t, nil
}

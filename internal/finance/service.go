package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

const reportCacheTTL = 5 * time.Minute

// Service wraps the append-only ledger rules.
type Service struct {
	repo    Repository
	cache   *redis.Client
	auditor *audit.Recorder
	logger  *slog.Logger
	printer *message.Printer
}

// NewService constructs a new Service.
func NewService(repo Repository, cache *redis.Client, auditor *audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		auditor: auditor,
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

// RecordIncoming appends a credit entry.
func (s *Service) RecordIncoming(ctx context.Context, req RecordIncomingRequest, actor *shared.Identity) (*Incoming, error) {
	if !ValidSource(req.Source) {
		return nil, fmt.Errorf("%w: unknown source %q", httpx.ErrValidation, req.Source)
	}
	if !ValidMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", httpx.ErrValidation, req.PaymentMethod)
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", httpx.ErrValidation)
	}

	entry := Incoming{
		Source:        req.Source,
		Amount:        req.Amount,
		EntryDate:     req.EntryDate,
		PaymentMethod: req.PaymentMethod,
		CounterpartID: req.CounterpartID,
		Description:   req.Description,
		RecordedBy:    actor.UserID,
	}
	id, err := s.repo.InsertIncoming(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("record incoming: %w", err)
	}
	entry.ID = id
	s.invalidateReports(ctx)

	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionCreate,
		Entity:   "FinanceIncoming",
		EntityID: strconv.FormatInt(id, 10),
		Details:  fmt.Sprintf("source=%s amount=%.2f", req.Source, req.Amount),
	})
	return &entry, nil
}

// RecordOutgoing appends a debit entry.
func (s *Service) RecordOutgoing(ctx context.Context, req RecordOutgoingRequest, actor *shared.Identity) (*Outgoing, error) {
	if !ValidCategory(req.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", httpx.ErrValidation, req.Category)
	}
	if !ValidMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", httpx.ErrValidation, req.PaymentMethod)
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", httpx.ErrValidation)
	}

	entry := Outgoing{
		Category:      req.Category,
		Amount:        req.Amount,
		EntryDate:     req.EntryDate,
		PaymentMethod: req.PaymentMethod,
		CounterpartID: req.CounterpartID,
		Description:   req.Description,
		RecordedBy:    actor.UserID,
	}
	id, err := s.repo.InsertOutgoing(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("record outgoing: %w", err)
	}
	entry.ID = id
	s.invalidateReports(ctx)

	s.auditor.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionCreate,
		Entity:   "FinanceOutgoing",
		EntityID: strconv.FormatInt(id, 10),
		Details:  fmt.Sprintf("category=%s amount=%.2f", req.Category, req.Amount),
	})
	return &entry, nil
}

// ListIncoming returns credit entries with paging.
func (s *Service) ListIncoming(ctx context.Context, f ListFilters) ([]Incoming, shared.Pagination, error) {
	f = clampPage(f)
	list, total, err := s.repo.ListIncoming(ctx, f)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(f.Page, f.PageSize, total), nil
}

// ListOutgoing returns debit entries with paging.
func (s *Service) ListOutgoing(ctx context.Context, f ListFilters) ([]Outgoing, shared.Pagination, error) {
	f = clampPage(f)
	list, total, err := s.repo.ListOutgoing(ctx, f)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(f.Page, f.PageSize, total), nil
}

// ReportView is the report plus display-formatted totals.
type ReportView struct {
	Report
	Display struct {
		TotalIncoming string `json:"total_incoming"`
		TotalOutgoing string `json:"total_outgoing"`
		NetProfit     string `json:"net_profit"`
	} `json:"display"`
}

// Report summarizes the ledger over [from, to]. Results are cached briefly;
// ledger writes invalidate the cache best-effort.
func (s *Service) Report(ctx context.Context, from, to time.Time) (*ReportView, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: report range is inverted", httpx.ErrValidation)
	}

	key := reportCacheKey(from, to)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cached ReportView
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	report, err := s.repo.Summarize(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize ledger: %w", err)
	}

	view := &ReportView{Report: *report}
	view.Display.TotalIncoming = s.printer.Sprintf("%.2f", report.TotalIncoming)
	view.Display.TotalOutgoing = s.printer.Sprintf("%.2f", report.TotalOutgoing)
	view.Display.NetProfit = s.printer.Sprintf("%.2f", report.NetProfit)

	if s.cache != nil {
		if raw, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, key, raw, reportCacheTTL).Err(); err != nil {
				s.logger.Warn("cache finance report", slog.Any("error", err))
			}
		}
	}
	return view, nil
}

// Warm computes and caches the report for a range. Background jobs use it to
// keep the common ranges hot.
func (s *Service) Warm(ctx context.Context, from, to time.Time) error {
	_, err := s.Report(ctx, from, to)
	return err
}

// invalidateReports drops all cached report ranges. Failures are logged only;
// the cache TTL bounds staleness either way.
func (s *Service) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, "finance:report:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("scan finance report cache", slog.Any("error", err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("invalidate finance report cache", slog.Any("error", err))
	}
}

func reportCacheKey(from, to time.Time) string {
	return fmt.Sprintf("finance:report:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func clampPage(f ListFilters) ListFilters {
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return f
}

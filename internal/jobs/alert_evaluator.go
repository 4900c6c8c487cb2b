package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"stockroom/internal/caching"
	"stockroom/internal/classify"
	"stockroom/internal/events"
	"stockroom/internal/models"
	"stockroom/internal/repositories"

	"github.com/google/uuid"
)

// ChangeNotifier is told which collections an evaluation changed
type ChangeNotifier interface {
	Changed(ctx context.Context, tenantID uuid.UUID, action string, collections ...string)
}

// AlertEvaluator raises and resolves alerts from the enabled alert rules
type AlertEvaluator struct {
	stockRepo  repositories.StockLevelRepository
	ruleRepo   repositories.AlertRuleRepository
	alertRepo  repositories.AlertRepository
	notifier   ChangeNotifier
	thresholds classify.Thresholds
	now        func() time.Time
}

// EvaluationResult counts what one evaluation did
type EvaluationResult struct {
	TenantID uuid.UUID
	Rules    int
	Opened   int
	Resolved int
}

func NewAlertEvaluator(stockRepo repositories.StockLevelRepository, ruleRepo repositories.AlertRuleRepository,
	alertRepo repositories.AlertRepository, notifier ChangeNotifier, thresholds classify.Thresholds) *AlertEvaluator {
	return &AlertEvaluator{
		stockRepo:  stockRepo,
		ruleRepo:   ruleRepo,
		alertRepo:  alertRepo,
		notifier:   notifier,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// EvaluateTenant checks every enabled rule against the tenant's stock levels.
// A breached stock level gets one open alert per rule; open alerts whose
// condition cleared are resolved.
func (a *AlertEvaluator) EvaluateTenant(ctx context.Context, tenantID uuid.UUID) (EvaluationResult, error) {
	result := EvaluationResult{TenantID: tenantID}

	rules, err := a.ruleRepo.ListEnabled(ctx, tenantID)
	if err != nil {
		return result, fmt.Errorf("failed to list alert rules: %w", err)
	}
	result.Rules = len(rules)
	if len(rules) == 0 {
		return result, nil
	}

	levels, err := a.stockRepo.ListAll(ctx, tenantID)
	if err != nil {
		return result, fmt.Errorf("failed to list stock levels: %w", err)
	}
	rows := make([]models.StockLevelRow, len(levels))
	for i, level := range levels {
		rows[i] = models.NewStockLevelRow(level, a.thresholds)
	}

	var errs []error
	for _, rule := range rules {
		opened, resolved, err := a.evaluateRule(ctx, tenantID, rule, rows)
		result.Opened += opened
		result.Resolved += resolved
		if err != nil {
			log.Printf("Failed to evaluate alert rule %s for tenant %s: %v", rule.ID, tenantID, err)
			errs = append(errs, err)
		}
	}

	if result.Opened > 0 || result.Resolved > 0 {
		a.notifier.Changed(ctx, tenantID, events.ActionEvaluated, caching.KeyAlerts)
	}
	return result, errors.Join(errs...)
}

func (a *AlertEvaluator) evaluateRule(ctx context.Context, tenantID uuid.UUID, rule models.AlertRule, rows []models.StockLevelRow) (opened, resolved int, err error) {
	active, err := a.alertRepo.ListActiveByRule(ctx, tenantID, rule.ID)
	if err != nil {
		return 0, 0, err
	}
	open := make(map[uuid.UUID]models.Alert, len(active))
	for _, alert := range active {
		open[alert.StockLevelID] = alert
	}

	breached := make(map[uuid.UUID]bool)
	for _, row := range rows {
		if !rule.Covers(row.StockLevel) || !rule.Breached(row) {
			continue
		}
		breached[row.ID] = true
		if _, exists := open[row.ID]; exists {
			continue
		}
		alert := &models.Alert{
			ID:           uuid.New(),
			TenantID:     tenantID,
			RuleID:       rule.ID,
			StockLevelID: row.ID,
			Severity:     rule.Severity,
			Status:       models.AlertActive,
			Message:      alertMessage(rule, row),
			CreatedAt:    a.now().UTC(),
		}
		if err := a.alertRepo.Create(ctx, alert); err != nil {
			return opened, resolved, fmt.Errorf("failed to open alert for stock level %s: %w", row.ID, err)
		}
		opened++
	}

	// anything still open that no longer breaches, including rows that left the rule's scope
	for stockLevelID, alert := range open {
		if breached[stockLevelID] {
			continue
		}
		if err := a.alertRepo.UpdateStatus(ctx, tenantID, alert.ID, models.AlertResolved); err != nil {
			return opened, resolved, fmt.Errorf("failed to resolve alert %s: %w", alert.ID, err)
		}
		resolved++
	}
	return opened, resolved, nil
}

func alertMessage(rule models.AlertRule, row models.StockLevelRow) string {
	switch rule.Condition {
	case models.ConditionOverMax:
		return fmt.Sprintf("%s (%s) at %s is over max: %d on hand, reorder point %d",
			row.ProductName, row.SKU, row.LocationCode, row.Quantity, row.ReorderPoint)
	case models.ConditionOutOfStock:
		return fmt.Sprintf("%s (%s) at %s is out of stock", row.ProductName, row.SKU, row.LocationCode)
	}
	return fmt.Sprintf("%s (%s) at %s is low on stock: %d on hand, reorder point %d",
		row.ProductName, row.SKU, row.LocationCode, row.Quantity, row.ReorderPoint)
}

// EvaluateAll evaluates every tenant holding stock, a few at a time
func (a *AlertEvaluator) EvaluateAll(ctx context.Context) error {
	log.Printf("Starting alert rule evaluation")

	tenantIDs, err := a.stockRepo.ListTenantIDs(ctx)
	if err != nil {
		log.Printf("Failed to get tenants for alert evaluation: %v", err)
		return err
	}

	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var opened, resolved, failed int

	for _, tenantID := range tenantIDs {
		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			result, err := a.EvaluateTenant(ctx, tenantID)
			mu.Lock()
			defer mu.Unlock()
			opened += result.Opened
			resolved += result.Resolved
			if err != nil {
				failed++
				log.Printf("Failed to evaluate alerts for tenant %s: %v", tenantID, err)
			}
		}(tenantID)
	}

	wg.Wait()
	log.Printf("Completed alert evaluation for %d tenants: %d opened, %d resolved, %d failed",
		len(tenantIDs), opened, resolved, failed)
	return nil
}

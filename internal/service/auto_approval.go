package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/utils"
)

type predicateKind int

const (
	predicateRoleIs predicateKind = iota
	predicateDurationAtMost
	predicateCategoryIs
)

// predicate is one recognized clause of a rule condition.
type predicate struct {
	kind     predicateKind
	role     domain.UserRole
	maxDays  int
	category string
}

// Each family is searched for anywhere in the condition, so surrounding
// prose ("approve when duration <= 3 days for members") still matches.
var (
	roleClause      = regexp.MustCompile(`(?i)\brole\s*(?:is|==|=|:)\s*([a-z_]+)`)
	adminOnlyClause = regexp.MustCompile(`(?i)\badmins?\s+only\b`)
	durationClause  = regexp.MustCompile(`(?i)\bduration\s*(<=|<|==|=)\s*(\d+)`)
	maxDaysClause   = regexp.MustCompile(`(?i)\bmax(?:imum)?\s+(\d+)\s*days?\b`)
	categoryClause  = regexp.MustCompile(`(?i)\bcategory\s*(?:is|==|=|:)\s*["']?([^\s"',;]+)`)
)

// compileCondition collects every recognized predicate in the condition.
// ok is false when none is found; such a rule never matches.
func compileCondition(condition string) (preds []predicate, ok bool) {
	for _, m := range roleClause.FindAllStringSubmatch(condition, -1) {
		preds = append(preds, predicate{kind: predicateRoleIs, role: domain.UserRole(strings.ToUpper(m[1]))})
	}
	if adminOnlyClause.MatchString(condition) {
		preds = append(preds, predicate{kind: predicateRoleIs, role: domain.UserRoleAdmin})
	}
	for _, m := range durationClause.FindAllStringSubmatch(condition, -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if m[1] == "<" {
			n--
		}
		preds = append(preds, predicate{kind: predicateDurationAtMost, maxDays: n})
	}
	for _, m := range maxDaysClause.FindAllStringSubmatch(condition, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		preds = append(preds, predicate{kind: predicateDurationAtMost, maxDays: n})
	}
	for _, m := range categoryClause.FindAllStringSubmatch(condition, -1) {
		preds = append(preds, predicate{kind: predicateCategoryIs, category: strings.ToLower(m[1])})
	}
	return preds, len(preds) > 0
}

type autoApprovalEvaluator struct {
	ruleRepo repository.RuleRepository
	toolRepo repository.ToolRepository
}

func NewAutoApprovalEvaluator(ruleRepo repository.RuleRepository, toolRepo repository.ToolRepository) AutoApprovalEvaluator {
	return &autoApprovalEvaluator{ruleRepo: ruleRepo, toolRepo: toolRepo}
}

// PassesAnyRule reports whether any enabled rule has a predicate that holds.
func (e *autoApprovalEvaluator) PassesAnyRule(ctx context.Context, user *domain.User, bc domain.BorrowContext) (bool, error) {
	rules, err := e.ruleRepo.ListEnabled(ctx)
	if err != nil {
		return false, err
	}
	if len(rules) == 0 {
		return false, nil
	}

	days := utils.InclusiveDays(bc.BorrowDate, bc.ExpectedReturnDate)
	var category *string

	for _, rule := range rules {
		preds, ok := compileCondition(rule.Condition)
		if !ok {
			logger.Warn("Auto-approval rule condition not recognized", "ruleID", rule.ID, "rule", rule.Name, "condition", rule.Condition)
			continue
		}

		matched := false
		for _, p := range preds {
			switch p.kind {
			case predicateRoleIs:
				matched = user != nil && user.Role == p.role
			case predicateDurationAtMost:
				matched = days > 0 && days <= p.maxDays
			case predicateCategoryIs:
				if category == nil {
					tool, err := e.toolRepo.GetByID(ctx, bc.ToolID)
					if err != nil {
						return false, err
					}
					c := strings.ToLower(tool.Category)
					category = &c
				}
				matched = strings.Contains(*category, p.category)
			}
			if matched {
				break
			}
		}

		if matched {
			logger.Info("Auto-approval rule matched", "ruleID", rule.ID, "rule", rule.Name, "userID", bc.UserID, "toolID", bc.ToolID)
			return true, nil
		}
	}
	return false, nil
}

package service_test

import (
	"context"
	"testing"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoApprovalEvaluator_PassesAnyRule(t *testing.T) {
	ctx := context.Background()
	member := &domain.User{ID: 7, Role: domain.UserRoleMember}
	admin := &domain.User{ID: 2, Role: domain.UserRoleAdmin}
	monToWed := domain.BorrowContext{UserID: 7, ToolID: 1, BorrowDate: day("2025-01-06"), ExpectedReturnDate: day("2025-01-08")}
	week := domain.BorrowContext{UserID: 7, ToolID: 1, BorrowDate: day("2025-01-06"), ExpectedReturnDate: day("2025-01-12")}

	tests := []struct {
		name      string
		condition string
		user      *domain.User
		bc        domain.BorrowContext
		want      bool
	}{
		{"Three day rental inside limit", "duration <= 3", member, monToWed, true},
		{"Week exceeds limit", "duration <= 3", member, week, false},
		{"Strict less than", "duration < 3 days", member, monToWed, false},
		{"Max days phrasing", "max 7 days", member, week, true},
		{"Role match", "role is admin", admin, week, true},
		{"Role mismatch", "role = admin", member, week, false},
		{"Admins only", "Admins only", admin, monToWed, true},
		{"Phrase inside a sentence", "Auto-approve short loans when duration <= 3", member, monToWed, true},
		{"Trailing prose", "duration <= 3 days for members", member, monToWed, true},
		{"Leading prose with comma", "If role is admin, approve", admin, week, true},
		{"Either family, admin", "role is admin or duration <= 3", admin, week, true},
		{"Either family, short member loan", "role is admin or duration <= 3", member, monToWed, true},
		{"Either family, neither holds", "role is admin or duration <= 3", member, week, false},
		{"Unrelated words ignored", "duration <= 3 and weather is sunny", member, monToWed, true},
		{"Case insensitive", "DURATION <= 3", member, monToWed, true},
		{"No known phrase never matches", "weather is sunny", member, monToWed, false},
		{"Empty condition never matches", "   ", member, monToWed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ruleRepo := new(MockRuleRepo)
			svc := service.NewAutoApprovalEvaluator(ruleRepo, nil)
			ruleRepo.On("ListEnabled", ctx).Return([]domain.AutoApprovalRule{{ID: 1, Name: tt.name, Condition: tt.condition, Enabled: true}}, nil)

			got, err := svc.PassesAnyRule(ctx, tt.user, tt.bc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Category loaded once across rules", func(t *testing.T) {
		ruleRepo := new(MockRuleRepo)
		toolRepo := new(MockToolRepo)
		svc := service.NewAutoApprovalEvaluator(ruleRepo, toolRepo)
		ruleRepo.On("ListEnabled", ctx).Return([]domain.AutoApprovalRule{
			{ID: 1, Name: "garden", Condition: `category is "Garden"`, Enabled: true},
			{ID: 2, Name: "power", Condition: "category: power tools", Enabled: true},
		}, nil)
		toolRepo.On("GetByID", ctx, int32(1)).Return(&domain.Tool{ID: 1, Category: "Power Tools"}, nil).Once()

		got, err := svc.PassesAnyRule(ctx, member, monToWed)
		require.NoError(t, err)
		assert.True(t, got)
		toolRepo.AssertExpectations(t)
	})

	t.Run("Any rule suffices", func(t *testing.T) {
		ruleRepo := new(MockRuleRepo)
		svc := service.NewAutoApprovalEvaluator(ruleRepo, nil)
		ruleRepo.On("ListEnabled", ctx).Return([]domain.AutoApprovalRule{
			{ID: 1, Condition: "role is admin", Enabled: true},
			{ID: 2, Condition: "duration <= 7", Enabled: true},
		}, nil)

		got, err := svc.PassesAnyRule(ctx, member, week)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("No rules", func(t *testing.T) {
		ruleRepo := new(MockRuleRepo)
		svc := service.NewAutoApprovalEvaluator(ruleRepo, nil)
		ruleRepo.On("ListEnabled", ctx).Return([]domain.AutoApprovalRule{}, nil)

		got, err := svc.PassesAnyRule(ctx, member, monToWed)
		require.NoError(t, err)
		assert.False(t, got)
	})
}

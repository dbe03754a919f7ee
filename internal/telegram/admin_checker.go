package telegram

import (
	"slices"
)

// AdminChecker tells whether a Telegram user may manage cut-off rules.
type AdminChecker struct {
	adminIDs []int64
}

func NewAdminChecker(adminIDs []int64) *AdminChecker {
	return &AdminChecker{
		adminIDs: adminIDs,
	}
}

func (a *AdminChecker) IsAdmin(telegramID int64) bool {
	return slices.Contains(a.adminIDs, telegramID)
}

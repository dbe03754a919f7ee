package cmds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gym-cutoff/internal/stories/audit"
	"gym-cutoff/internal/stories/cutoffs"
)

type CutoffsCommand struct {
	sender    sender
	service   cutoffService
	resolver  splitResolver
	localizer localizer
	lang      string
	logger    *slog.Logger
}

type sender interface {
	SendMessage(chatID int64, text string) error
}

type cutoffService interface {
	ListTierRules(ctx context.Context) ([]*cutoffs.TierRule, error)
	ListFeeRules(ctx context.Context) ([]*cutoffs.FeeRule, error)
	UpdateTierRule(ctx context.Context, actor audit.Actor, edit cutoffs.TierEdit) (*cutoffs.TierRule, error)
	UpdateFeeRule(ctx context.Context, actor audit.Actor, edit cutoffs.FeeEdit) (*cutoffs.FeeRule, error)
	CreateFeeRule(ctx context.Context, actor audit.Actor, edit cutoffs.FeeEdit) (*cutoffs.FeeRule, error)
}

type splitResolver interface {
	ResolveByTier(ctx context.Context, tier cutoffs.Tier, duration cutoffs.Duration) (cutoffs.SplitPercentages, error)
	ResolveByPrice(ctx context.Context, price float64) (cutoffs.SplitPercentages, error)
}

type localizer interface {
	Get(lang, key string, params map[string]interface{}) string
}

func NewCutoffsCommand(
	sender sender,
	service cutoffService,
	resolver splitResolver,
	localizer localizer,
	lang string,
	logger *slog.Logger,
) *CutoffsCommand {
	return &CutoffsCommand{
		sender:    sender,
		service:   service,
		resolver:  resolver,
		localizer: localizer,
		lang:      lang,
		logger:    logger,
	}
}

const (
	usageTierSet   = "/tier_set <tier> <duration> <admin%> <owner%>"
	usageFeeSet    = "/fee_set <id> <start> <end> <admin%> <gym%>"
	usageFeeAdd    = "/fee_add <start> <end> <admin%> <gym%>"
	usageSplit     = "/split <price>"
	usageSplitTier = "/split_tier <tier> <duration>"
)

func (c *CutoffsCommand) Help(chatID int64) error {
	return c.sender.SendMessage(chatID, c.t("cutoffs.help", nil))
}

// List sends both rule tables.
func (c *CutoffsCommand) List(ctx context.Context, chatID int64) error {
	tierRules, err := c.service.ListTierRules(ctx)
	if err != nil {
		c.logger.Error("Failed to list tier cut-offs", "error", err)
		return c.sendError(chatID, err)
	}

	feeRules, err := c.service.ListFeeRules(ctx)
	if err != nil {
		c.logger.Error("Failed to list fee cut-offs", "error", err)
		return c.sendError(chatID, err)
	}

	var b strings.Builder
	b.WriteString(c.t("cutoffs.list.tier_header", nil))
	for _, r := range tierRules {
		b.WriteString("\n")
		b.WriteString(c.t("cutoffs.list.tier_row", map[string]interface{}{
			"tier":     r.Tier,
			"duration": r.Duration,
			"admin":    num(r.AdminCutPercent),
			"owner":    num(r.OwnerCutPercent),
		}))
	}

	b.WriteString("\n\n")
	b.WriteString(c.t("cutoffs.list.fee_header", nil))
	if len(feeRules) == 0 {
		b.WriteString("\n")
		b.WriteString(c.t("cutoffs.list.fee_empty", nil))
	}
	for _, r := range feeRules {
		b.WriteString("\n")
		b.WriteString(c.t("cutoffs.list.fee_row", feeParams(r)))
	}

	return c.sender.SendMessage(chatID, b.String())
}

// SetTier handles "/tier_set Tier_1 Monthly 80 20". "Tier 1" written with a
// space is accepted as two tokens.
func (c *CutoffsCommand) SetTier(ctx context.Context, actor audit.Actor, chatID int64, args string) error {
	tier, rest, ok := splitTier(strings.Fields(args))
	if !ok || len(rest) != 3 {
		return c.sendUsage(chatID, usageTierSet)
	}

	nums, bad := parseNumbers(rest[1:])
	if bad != "" {
		return c.sendInvalidNumber(chatID, bad)
	}

	rule, err := c.service.UpdateTierRule(ctx, actor, cutoffs.TierEdit{
		Tier:            tier,
		Duration:        cutoffs.ParseDuration(rest[0]),
		AdminCutPercent: nums[0],
		OwnerCutPercent: nums[1],
	})
	if rule == nil {
		return c.sendError(chatID, err)
	}

	text := c.t("cutoffs.tier_updated", map[string]interface{}{
		"tier":     rule.Tier,
		"duration": rule.Duration,
		"admin":    num(rule.AdminCutPercent),
		"owner":    num(rule.OwnerCutPercent),
	})
	return c.sender.SendMessage(chatID, c.withAuditNotice(text, err))
}

// SetFee handles "/fee_set 5 501 1000 70 30".
func (c *CutoffsCommand) SetFee(ctx context.Context, actor audit.Actor, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 5 {
		return c.sendUsage(chatID, usageFeeSet)
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(fields[0], "#"), 10, 64)
	if err != nil {
		return c.sendInvalidNumber(chatID, fields[0])
	}

	nums, bad := parseNumbers(fields[1:])
	if bad != "" {
		return c.sendInvalidNumber(chatID, bad)
	}

	rule, err := c.service.UpdateFeeRule(ctx, actor, cutoffs.FeeEdit{
		ID:              id,
		PriceRangeStart: nums[0],
		PriceRangeEnd:   nums[1],
		AdminCutPercent: nums[2],
		GymCutPercent:   nums[3],
	})
	if rule == nil {
		return c.sendError(chatID, err)
	}

	return c.sender.SendMessage(chatID, c.withAuditNotice(c.t("cutoffs.fee_updated", feeParams(rule)), err))
}

// AddFee handles "/fee_add 0 500 70 30".
func (c *CutoffsCommand) AddFee(ctx context.Context, actor audit.Actor, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 4 {
		return c.sendUsage(chatID, usageFeeAdd)
	}

	nums, bad := parseNumbers(fields)
	if bad != "" {
		return c.sendInvalidNumber(chatID, bad)
	}

	rule, err := c.service.CreateFeeRule(ctx, actor, cutoffs.FeeEdit{
		PriceRangeStart: nums[0],
		PriceRangeEnd:   nums[1],
		AdminCutPercent: nums[2],
		GymCutPercent:   nums[3],
	})
	if rule == nil {
		return c.sendError(chatID, err)
	}

	return c.sender.SendMessage(chatID, c.withAuditNotice(c.t("cutoffs.fee_created", feeParams(rule)), err))
}

// Split shows which fee rule would apply to a membership price.
func (c *CutoffsCommand) Split(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return c.sendUsage(chatID, usageSplit)
	}

	nums, bad := parseNumbers(fields)
	if bad != "" {
		return c.sendInvalidNumber(chatID, bad)
	}

	split, err := c.resolver.ResolveByPrice(ctx, nums[0])
	if err != nil {
		return c.sendError(chatID, err)
	}
	return c.sendSplit(chatID, split)
}

// SplitTier shows the split for a tier membership.
func (c *CutoffsCommand) SplitTier(ctx context.Context, chatID int64, args string) error {
	tier, rest, ok := splitTier(strings.Fields(args))
	if !ok || len(rest) != 1 {
		return c.sendUsage(chatID, usageSplitTier)
	}

	split, err := c.resolver.ResolveByTier(ctx, tier, cutoffs.ParseDuration(rest[0]))
	if err != nil {
		return c.sendError(chatID, err)
	}
	return c.sendSplit(chatID, split)
}

func (c *CutoffsCommand) sendSplit(chatID int64, split cutoffs.SplitPercentages) error {
	return c.sender.SendMessage(chatID, c.t("cutoffs.split", map[string]interface{}{
		"platform":     num(split.PlatformPercent),
		"counterparty": num(split.CounterpartyPercent),
	}))
}

func (c *CutoffsCommand) withAuditNotice(text string, err error) string {
	var auditErr *cutoffs.AuditError
	if errors.As(err, &auditErr) {
		return text + "\n\n" + c.t("cutoffs.audit_missing", nil)
	}
	return text
}

func (c *CutoffsCommand) sendUsage(chatID int64, usage string) error {
	return c.sender.SendMessage(chatID, c.t("common.usage", map[string]interface{}{"usage": usage}))
}

func (c *CutoffsCommand) sendInvalidNumber(chatID int64, value string) error {
	return c.sender.SendMessage(chatID, c.t("common.invalid_number", map[string]interface{}{"value": value}))
}

func (c *CutoffsCommand) sendError(chatID int64, err error) error {
	return c.sender.SendMessage(chatID, c.describeError(err))
}

// describeError names the violated invariant and the values involved.
func (c *CutoffsCommand) describeError(err error) string {
	var verr *cutoffs.ValidationError
	switch {
	case errors.As(err, &verr):
		switch verr.Kind {
		case cutoffs.KindPercentageSumInvalid:
			return c.t("cutoffs.errors.percentage_sum_invalid", map[string]interface{}{
				"admin":        num(verr.AdminPercent),
				"counterparty": num(verr.CounterpartyPercent),
				"sum":          num(verr.AdminPercent + verr.CounterpartyPercent),
			})
		case cutoffs.KindInvalidRange:
			return c.t("cutoffs.errors.invalid_range", map[string]interface{}{
				"start": num(verr.PriceRangeStart),
				"end":   num(verr.PriceRangeEnd),
			})
		case cutoffs.KindOverlappingRange:
			conflicts := make([]string, 0, len(verr.Conflicts))
			for _, r := range verr.Conflicts {
				conflicts = append(conflicts, fmt.Sprintf("#%d [%s – %s]", r.ID, num(r.PriceRangeStart), num(r.PriceRangeEnd)))
			}
			return c.t("cutoffs.errors.overlapping_range", map[string]interface{}{
				"start":     num(verr.PriceRangeStart),
				"end":       num(verr.PriceRangeEnd),
				"conflicts": strings.Join(conflicts, ", "),
			})
		}
	case errors.Is(err, cutoffs.ErrRuleNotFound):
		detail := strings.TrimPrefix(err.Error(), cutoffs.ErrRuleNotFound.Error()+": ")
		return c.t("cutoffs.errors.rule_not_found", map[string]interface{}{"detail": detail})
	}

	c.logger.Error("Cut-off command failed", "error", err)
	return c.t("common.internal_error", nil)
}

func (c *CutoffsCommand) t(key string, params map[string]interface{}) string {
	return c.localizer.Get(c.lang, key, params)
}

// splitTier reads the tier from the head of fields, joining "Tier" "1".
func splitTier(fields []string) (cutoffs.Tier, []string, bool) {
	if len(fields) == 0 {
		return "", nil, false
	}
	if len(fields) > 1 && strings.EqualFold(fields[0], "tier") {
		return cutoffs.ParseTier(fields[0] + " " + fields[1]), fields[2:], true
	}
	return cutoffs.ParseTier(fields[0]), fields[1:], true
}

// parseNumbers returns the first token that is not a number, if any.
func parseNumbers(fields []string) ([]float64, string) {
	nums := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
		if err != nil {
			return nil, f
		}
		nums = append(nums, v)
	}
	return nums, ""
}

func feeParams(r *cutoffs.FeeRule) map[string]interface{} {
	return map[string]interface{}{
		"id":    r.ID,
		"start": num(r.PriceRangeStart),
		"end":   num(r.PriceRangeEnd),
		"admin": num(r.AdminCutPercent),
		"gym":   num(r.GymCutPercent),
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

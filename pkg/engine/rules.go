package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// RuleResolution 规则解析结果
type RuleResolution struct {
	Rule       *model.ExplicitRule
	Candidates []uuid.UUID // 命中选择器后仍合格的候选员工
	Reason     string      // 分配理由文本
}

// ResolveRule 解析任务绑定的显式规则
// 主选择器优先，依次尝试回退选择器，首个产生至少一名合格候选人的选择器生效。
// 规则只缩小候选池并提供理由文本，不绕过技能与容量校验（eligible 即校验结果）。
// 解析失败的规则视为配置错误：记录后跳过，返回 nil。
func ResolveRule(task *model.Task, weekday time.Weekday, rules []*model.ExplicitRule, members []*model.Member, eligible map[uuid.UUID]bool, onInvalid func(taskID, reason string)) *RuleResolution {
	var rule *model.ExplicitRule
	for _, r := range rules {
		if r.TaskID != task.ID {
			continue
		}
		if r.ExcludesWeekday(weekday) {
			continue
		}
		rule = r
		break
	}
	if rule == nil {
		return nil
	}

	selectors, err := rule.Selectors()
	if err != nil {
		if onInvalid != nil {
			onInvalid(task.ID.String(), err.Error())
		}
		return nil
	}

	for _, sel := range selectors {
		pool := sel.ResolveCandidates(members)
		candidates := pool[:0:0]
		for _, id := range pool {
			if eligible[id] {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		return &RuleResolution{
			Rule:       rule,
			Candidates: candidates,
			Reason:     renderReason(rule.ReasonTemplate, task, sel),
		}
	}

	return nil
}

// renderReason 渲染分配理由
// 模板支持 {task} 与 {selector} 占位符，未配置模板时使用默认文案
func renderReason(template string, task *model.Task, sel model.Selector) string {
	if template == "" {
		return fmt.Sprintf("按规则分配（%s）", sel.Describe())
	}
	reason := strings.ReplaceAll(template, "{task}", task.Name)
	reason = strings.ReplaceAll(reason, "{selector}", sel.Describe())
	return reason
}

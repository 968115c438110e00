package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/paigong/paigong/pkg/errors"
)

// 多日生成的最大跨度
const maxRangeDays = 31

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
		"fields":  err.Fields,
	})
}

// respondAnyError 返回任意错误，非AppError按内部错误处理
func respondAnyError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		respondError(w, appErr)
		return
	}
	respondError(w, errors.Wrap(err, errors.CodeInternal, "处理请求失败"))
}

// datesInRange 展开日期区间为逐日列表，endDate为空时仅返回startDate
func datesInRange(startDate, endDate string) ([]string, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("开始日期无效: %w", err)
	}
	if endDate == "" {
		return []string{startDate}, nil
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("结束日期无效: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("结束日期早于开始日期")
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
		if len(dates) > maxRangeDays {
			return nil, fmt.Errorf("日期跨度超过%d天", maxRangeDays)
		}
	}
	return dates, nil
}

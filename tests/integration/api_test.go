package integration

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// TestAssignAPI_GenerateRequest 测试派工API请求格式
func TestAssignAPI_GenerateRequest(t *testing.T) {
	taskID := uuid.New()

	request := map[string]interface{}{
		"date":        "2026-08-24",
		"end_date":    "2026-08-30",
		"order_hints": []string{taskID.String()},
		"persist":     true,
	}

	body, err := json.Marshal(request)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/v1/assignments/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if parsed["date"] != "2026-08-24" {
		t.Error("date mismatch")
	}
	if parsed["persist"] != true {
		t.Error("persist mismatch")
	}

	t.Log("Assignment API request format validated")
}

// TestPlannerAPI_AutoFillRequest 测试自动补班API请求格式
func TestPlannerAPI_AutoFillRequest(t *testing.T) {
	request := map[string]interface{}{
		"start_date": "2026-08-24",
		"end_date":   "2026-08-30",
		"persist":    false,
	}

	body, err := json.Marshal(request)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/v1/planner/autofill", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if parsed["start_date"] != "2026-08-24" {
		t.Error("start_date mismatch")
	}

	t.Log("Planner API request format validated")
}

// TestAssignmentModel_JSONRoundTrip 测试分配记录的JSON序列化
func TestAssignmentModel_JSONRoundTrip(t *testing.T) {
	a := &model.Assignment{
		BaseModel: model.NewBaseModel(),
		TaskID:    uuid.New(),
		MemberID:  uuid.New(),
		Date:      "2026-08-24",
		StartTime: "09:00",
		EndTime:   "09:30",
		Duration:  30,
		Reason:    "按技能与负载均衡分配",
		Status:    model.StatusAssigned,
	}

	body, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Failed to marshal assignment: %v", err)
	}

	var decoded model.Assignment
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal assignment: %v", err)
	}

	if decoded.TaskID != a.TaskID || decoded.Date != a.Date || decoded.Duration != a.Duration {
		t.Error("assignment round trip mismatch")
	}
}

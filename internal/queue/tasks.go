package queue

import (
	"encoding/json"
	"fmt"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderRefresh 订单视图刷新任务
	TaskOrderRefresh = constants.TaskOrderRefresh
)

// OrderRefreshPayload 订单刷新任务载荷
type OrderRefreshPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderRefreshTask 创建订单刷新任务
func NewOrderRefreshTask(payload OrderRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderRefresh, body), nil
}

// ParseOrderRefreshPayload 解析订单刷新任务载荷
func ParseOrderRefreshPayload(task *asynq.Task) (OrderRefreshPayload, error) {
	var payload OrderRefreshPayload
	if task == nil {
		return payload, fmt.Errorf("task is nil")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

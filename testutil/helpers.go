// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
// 上下文与断言辅助，供各包测试共享
//
// 使用方法:
//
//	ctx := testutil.TestContext(t)
//	testutil.AssertErrorCode(t, err, types.ErrValidation)
// =============================================================================
package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/framelens/types"
)

// =============================================================================
// 🎯 上下文辅助
// =============================================================================

// TestContext 返回 30 秒超时的上下文，测试结束时取消
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// =============================================================================
// 🔍 断言辅助
// =============================================================================

// AssertErrorCode 断言 err 携带 code
func AssertErrorCode(t *testing.T, err error, code types.ErrorCode) {
	t.Helper()
	if !assert.Error(t, err, "expected error with code %s", code) {
		return
	}
	assert.Equal(t, code, types.GetErrorCode(err), "error: %v", err)
}

// AssertOutcomeOrder 断言批量结果按输入 Agent 顺序排列
func AssertOutcomeOrder(t *testing.T, specs []types.AgentSpec, result types.BatchResult) {
	t.Helper()
	if !assert.Len(t, result, len(specs), "outcome count") {
		return
	}
	for i := range specs {
		assert.Equal(t, specs[i].AgentID, result[i].AgentID, "outcome[%d]", i)
	}
}

// AssertJSONEqual 比较两个值的线上 JSON 形态
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()
	want, err := json.Marshal(expected)
	require.NoError(t, err)
	got, err := json.Marshal(actual)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

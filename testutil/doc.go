// Copyright (c) FrameLens Authors.
// Licensed under the MIT License.

/*
Package testutil 提供 FrameLens 测试的共享工具和辅助函数。

# 概述

testutil 包为各包的单元测试提供统一的辅助能力，避免重复实现
相似的测试基础设施。

# 核心能力

  - 上下文辅助: TestContext（自动注册 Cleanup）/ CancelledContext
  - 断言工具: AssertErrorCode / AssertOutcomeOrder / AssertJSONEqual，
    基于 testify 实现

# 子包

  - testutil/mocks: MockProvider（llm.Provider），支持按 Agent 编排
    响应、错误、延迟与 panic，并记录调用与最大并发数
  - testutil/fixtures: 确定性的 PNG/JPEG/GIF 图像、数据 URI、
    AgentSpec 与 Provider 响应样例

# 使用示例

	ctx := testutil.TestContext(t)
	provider := mocks.NewMockProvider().WithAgentError("B", errors.New("quota exceeded"))
	result, err := dispatcher.DispatchBatch(ctx, fixtures.PNG(64, 64), fixtures.BusinessAndFilmSpecs())
	require.NoError(t, err)
	testutil.AssertOutcomeOrder(t, fixtures.BusinessAndFilmSpecs(), result)
*/
package testutil

/*
包 dispatch 将同一帧图像（或同一段文本上下文）并发分发给多个独立配置的 Agent。

# 批量分发

DispatchBatch 在调用 Provider 之前完成全部批次级校验：帧必须是 PNG 或 JPEG，
Agent 列表非空，agentId 非空且唯一，历史轮次角色合法。任何一项失败都会
中止整个批次且不产生部分结果。

校验通过后输入帧以 Preserve 模式归一化一次，并以只读方式共享给所有 Agent。
每个 Agent 在独立的 goroutine 中执行，错误与 panic 只影响该 Agent 自己的
结果；结果按输入顺序返回，与完成顺序无关。

# 超时

每个 Agent 调用受 Config.AgentTimeout 约束，超时只产生该 Agent 的失败结果。
AgentTimeout 为 0 时不设上限。

# 单图与文本

  - DispatchImage：单个 Agent，输入帧以 Compact 模式归一化，错误直接返回
  - DispatchText：无图像，单次调用，返回文本
*/
package dispatch

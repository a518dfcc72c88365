/*
包 observability 基于 OpenTelemetry 为分发器提供追踪与指标。

# 概述

每次批量分发产生一个 dispatch.batch Span，每个 Agent 调用产生一个
dispatch.agent 子 Span。同时通过 Meter 记录 Agent 调用次数、失败次数、
调用延迟与活跃调用数。

未初始化 OpenTelemetry SDK 时使用全局 no-op Provider，开销可忽略。

# 核心接口

  - Metrics：StartBatch / EndBatch / StartAgent / EndAgent
*/
package observability

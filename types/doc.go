// Copyright (c) FrameLens Authors.
// Licensed under the MIT License.

/*
Package types 提供 FrameLens 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 llm、api、client、analysis
等上层模块提供统一的数据契约，避免循环依赖。

# 核心类型

  - ConversationTurn：对话轮次（role ∈ user / model + 文本内容）
  - AgentSpec：单个 Agent 在一次分发中的配置（系统提示词 + 历史 + 模型）
  - ImageAsset：归一化后的图像（字节 + MIME，归一化后恒为 JPEG）
  - AgentOutcome：单个 Agent 的结果（成功 / 失败二选一，按 agentId 标识）
  - BatchResult：一次批量分发的结果，顺序与输入一致
  - Error / ErrorCode：结构化错误体系，含 HTTP 状态码与 Retryable 标记

# 错误分类

  - CONFIG_ERROR：凭证缺失等启动期致命错误
  - VALIDATION_ERROR：输入格式错误，不会调用 Provider
  - DECODE_ERROR：图像字节无法解码
  - PROVIDER_ERROR：上游生成调用失败，在批量分发中按 Agent 隔离
*/
package types

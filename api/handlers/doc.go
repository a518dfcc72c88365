// Copyright (c) FrameLens Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 FrameLens HTTP API 的请求处理器实现。

# 概述

handlers 包实现帧分析端点与健康检查端点的请求处理逻辑，
以及统一的响应/错误处理。所有 Handler 均遵循标准 net/http 接口。

# 核心类型

  - GeminiHandler：/api/gemini/batch-images、/images、/text
  - HealthHandler：服务健康检查（/health, /healthz, /ready, /version）
  - Engine：Handler 依赖的分发接口，由 dispatch.Dispatcher 实现
  - ResponseWriter：包装 http.ResponseWriter 以捕获状态码
  - HealthCheck：可插拔健康检查接口

# 主要能力

  - 统一响应格式：{success, data} 或 {success:false, error, code}
  - 请求验证：DecodeJSONBody（请求体上限 + 严格模式）、ValidateContentType
  - ErrorCode → HTTP 状态码映射（校验/解码 400，Provider 502，超时 504）
  - 批次级错误整体失败，Agent 级错误作为数据返回
*/
package handlers

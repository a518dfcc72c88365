// Copyright (c) FrameLens Authors.
// Licensed under the MIT License.

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖 HTTP、
Agent 调用、分发批次与图像归一化四个维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制。所有指标按 namespace 隔离。

# 主要能力

  - HTTP 指标：请求总数、耗时、请求/响应体大小，状态码归类为 2xx/3xx/4xx/5xx；
    限流拒绝计数。
  - Agent 指标：按 model/status 分组的调用次数与耗时，实现 dispatch.Recorder。
  - 批次指标：批次数、每批 Agent 数、失败结果数、批次耗时。
  - 图像指标：按 mode/status 分组的转码次数与耗时，实现 image.Observer。
*/
package metrics

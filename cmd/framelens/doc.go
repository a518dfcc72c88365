// Copyright (c) FrameLens Authors.
// Licensed under the MIT License.

/*
Package main 提供 FrameLens 服务端与命令行入口。

# 概述

cmd/framelens 是帧分析引擎的可执行入口：serve 子命令启动 HTTP API，
把一帧画面并发分发给多个 Agent；analyze/report 子命令作为调用方，
基于内置 Agent 目录组装提示词并通过 client 包访问服务。

# 核心类型

  - Server：主服务器，管理 API 与 Metrics 双端口、配置热重载及优雅关闭
  - Middleware：HTTP 中间件函数签名 func(http.Handler) http.Handler

# 主要能力

  - 子命令：serve、analyze、report、health、version
  - 中间件链：Recovery、RequestID、SecurityHeaders、OTelTracing、
    RequestLogger、MetricsMiddleware、CORS、RateLimiter（基于 IP）
  - 配置热重载：config.Watcher 轮询配置文件，日志级别即时生效
  - Metrics 服务器：独立端口暴露 /metrics（Prometheus）
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main

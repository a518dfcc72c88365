// Copyright (c) FrameLens Authors.
// Licensed under the MIT License.

/*
# 概述

包 gemini 基于 google.golang.org/genai 提供 Gemini 生成模型的 Provider 实现。

# 核心结构体

  - Provider：持有 Config 与懒加载的 genai.Client；首次调用时创建客户端，
    之后所有并发调用共享同一实例
  - Config：API Key、可选 BaseURL / APIVersion 覆盖、请求超时

# 构造函数

  - New(cfg, logger)：API Key 为空时返回 CONFIG_ERROR，进程应在启动前退出

# 安全策略

所有请求携带固定的安全设置：骚扰、仇恨言论、色情、危险内容、公民诚信
五个类别均为 BLOCK_NONE，不可配置。

# 响应解析

取第一个候选：按顺序拼接全部文本分片，捕获第一个内联数据分片作为图像。
调用失败或无候选时返回 PROVIDER_ERROR，上游错误消息原样透传。
*/
package gemini

/*
包 llm 提供生成模型接入层的核心抽象。

# 概述

本包定义 [Provider] 接口以及请求、响应与对话的数据模型，屏蔽具体模型
服务商的协议差异。上层的分发器只依赖这里的类型。

# 子包

  - llm/image: 图像解码、缩放与 JPEG 归一化
  - llm/conversation: 将提示词与历史组装为 [Conversation]
  - llm/providers/gemini: 基于 google.golang.org/genai 的 Provider 实现
  - llm/dispatch: 批量、单图与纯文本分发
  - llm/retry: 调用方重试策略
*/
package llm
